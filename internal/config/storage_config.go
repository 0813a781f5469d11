package config

import "path/filepath"

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetStorageNamespace() string
	GetDataFolder() string
	GetSQLitePath() string
	GetRedisAddr() string
}

var _ StorageConfig = EnvVars{}

func (e EnvVars) GetStorageDriver() string {
	return e.StorageDriver
}

// GetStorageNamespace prefixes every persisted credential key
func (e EnvVars) GetStorageNamespace() string {
	return e.StorageNamespace
}

func (e EnvVars) GetDataFolder() string {
	return e.DataFolder
}

func (e EnvVars) GetSQLitePath() string {
	return filepath.Join(e.DataFolder, "credentials.db")
}

func (e EnvVars) GetRedisAddr() string {
	return e.RedisAddr
}
