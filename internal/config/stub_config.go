package config

import (
	"fmt"
	"strings"
	"time"
)

// StubConfig configures the in-process reference backend used by tests and local development.
type StubConfig interface {
	GetPort() string
	GetStubSigningKey() string
	GetStubAccessTokenExpiry() time.Duration
	GetStubRefreshTokenExpiry() time.Duration
}

var _ StubConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.StubPort
	if port == "" {
		port = "8000"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetStubSigningKey() string {
	return e.StubSigningKey
}

func (e EnvVars) GetStubAccessTokenExpiry() time.Duration {
	return e.StubAccessTokenExpiry
}

func (e EnvVars) GetStubRefreshTokenExpiry() time.Duration {
	return e.StubRefreshTokenExpiry
}
