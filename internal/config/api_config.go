package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetLoginEntryPoint() string
}

var _ APIConfig = EnvVars{}

// GetAPIBaseURL returns the backend base URL without a trailing slash (e.g. "http://localhost:8000/api")
func (e EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(e.APIBaseURL, "/")
}

func (e EnvVars) GetRequestTimeout() time.Duration {
	return e.RequestTimeout
}

// GetLoginEntryPoint is where the client is sent when its credentials can no longer be refreshed
func (e EnvVars) GetLoginEntryPoint() string {
	return e.LoginEntryPoint
}
