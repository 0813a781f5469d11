package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	StubConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
}

var _ Config = mainConfig{}

// New loads a .env file when present and then reads the process environment.
func New() (Config, error) {
	_ = godotenv.Load()

	var vars EnvVars
	if err := cleanenv.ReadEnv(&vars); err != nil {
		return nil, fmt.Errorf("[config.New] failed to read environment: %w", err)
	}
	return mainConfig{EnvVars: vars}, nil
}

// FromVars builds a Config from explicit values, filling anything unset with the defaults.
func FromVars(vars EnvVars) Config {
	defaults := Defaults()
	if vars.AppName == "" {
		vars.AppName = defaults.AppName
	}
	if vars.Env == "" {
		vars.Env = defaults.Env
	}
	if vars.LogLevel == "" {
		vars.LogLevel = defaults.LogLevel
	}
	if vars.APIBaseURL == "" {
		vars.APIBaseURL = defaults.APIBaseURL
	}
	if vars.RequestTimeout == 0 {
		vars.RequestTimeout = defaults.RequestTimeout
	}
	if vars.LoginEntryPoint == "" {
		vars.LoginEntryPoint = defaults.LoginEntryPoint
	}
	if vars.StorageDriver == "" {
		vars.StorageDriver = defaults.StorageDriver
	}
	if vars.StorageNamespace == "" {
		vars.StorageNamespace = defaults.StorageNamespace
	}
	if vars.DataFolder == "" {
		vars.DataFolder = defaults.DataFolder
	}
	if vars.RedisAddr == "" {
		vars.RedisAddr = defaults.RedisAddr
	}
	if vars.StubPort == "" {
		vars.StubPort = defaults.StubPort
	}
	if vars.StubSigningKey == "" {
		vars.StubSigningKey = defaults.StubSigningKey
	}
	if vars.StubAccessTokenExpiry == 0 {
		vars.StubAccessTokenExpiry = defaults.StubAccessTokenExpiry
	}
	if vars.StubRefreshTokenExpiry == 0 {
		vars.StubRefreshTokenExpiry = defaults.StubRefreshTokenExpiry
	}
	return mainConfig{EnvVars: vars}
}
