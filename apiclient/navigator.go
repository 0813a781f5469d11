package apiclient

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Navigator sends the user back to the login entry point once credentials are unrecoverable.
type Navigator interface {
	ToLogin(ctx context.Context, cause error)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, cause error)

func (f NavigatorFunc) ToLogin(ctx context.Context, cause error) {
	f(ctx, cause)
}

// LoginRedirector is the default Navigator. It records the redirect and hands the login entry
// point to OnRedirect, which is expected to reset all in-memory state.
type LoginRedirector struct {
	EntryPoint string
	OnRedirect func(entryPoint string, cause error)

	mu        sync.Mutex
	redirects int
}

var _ Navigator = (*LoginRedirector)(nil)

func NewLoginRedirector(entryPoint string, onRedirect func(entryPoint string, cause error)) *LoginRedirector {
	return &LoginRedirector{EntryPoint: entryPoint, OnRedirect: onRedirect}
}

func (l *LoginRedirector) ToLogin(_ context.Context, cause error) {
	l.mu.Lock()
	l.redirects++
	l.mu.Unlock()

	log.Warn().Err(cause).Str("entry_point", l.EntryPoint).Msg("Credentials rejected, returning to login")
	if l.OnRedirect != nil {
		l.OnRedirect(l.EntryPoint, cause)
	}
}

// Redirects returns how many times the client was sent back to login.
func (l *LoginRedirector) Redirects() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.redirects
}
