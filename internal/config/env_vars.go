package config

import (
	"strings"
	"time"
)

// EnvVars is the environment-backed configuration. Field defaults mirror Defaults().
type EnvVars struct {
	AppName  string `env:"STUDYGROUP_APP_NAME" env-default:"Study Group"`
	Env      string `env:"ENV" env-default:"DEV"`
	LogLevel string `env:"STUDYGROUP_LOG_LEVEL" env-default:"info"`

	APIBaseURL      string        `env:"STUDYGROUP_API_BASE_URL" env-default:"http://localhost:8000/api"`
	RequestTimeout  time.Duration `env:"STUDYGROUP_REQUEST_TIMEOUT" env-default:"15s"`
	LoginEntryPoint string        `env:"STUDYGROUP_LOGIN_PATH" env-default:"/login"`

	StorageDriver    string `env:"STUDYGROUP_STORAGE" env-default:"sqlite"`
	StorageNamespace string `env:"STUDYGROUP_STORAGE_NAMESPACE" env-default:"studygroup"`
	DataFolder       string `env:"FOLDER" env-default:"./data"`
	RedisAddr        string `env:"REDIS_ADDR" env-default:"localhost:6379"`

	StubPort               string        `env:"PORT" env-default:"8000"`
	StubSigningKey         string        `env:"STUB_SIGNING_KEY" env-default:"stub-signing-key"`
	StubAccessTokenExpiry  time.Duration `env:"STUB_ACCESS_TOKEN_EXPIRY" env-default:"5m"`
	StubRefreshTokenExpiry time.Duration `env:"STUB_REFRESH_TOKEN_EXPIRY" env-default:"168h"`
}

var _ EnvConfig = EnvVars{}

// Defaults returns the values used when nothing is set in the environment.
func Defaults() EnvVars {
	return EnvVars{
		AppName:                "Study Group",
		Env:                    "DEV",
		LogLevel:               "info",
		APIBaseURL:             "http://localhost:8000/api",
		RequestTimeout:         15 * time.Second,
		LoginEntryPoint:        "/login",
		StorageDriver:          StorageSQLite,
		StorageNamespace:       "studygroup",
		DataFolder:             "./data",
		RedisAddr:              "localhost:6379",
		StubPort:               "8000",
		StubSigningKey:         "stub-signing-key",
		StubAccessTokenExpiry:  5 * time.Minute,
		StubRefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}
