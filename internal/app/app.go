// Package app assembles the client stack from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/studygroup-client/apiclient"
	"github.com/jrsteele09/studygroup-client/auth"
	"github.com/jrsteele09/studygroup-client/credentials"
	"github.com/jrsteele09/studygroup-client/credentials/redisrepo"
	credentialsrepofake "github.com/jrsteele09/studygroup-client/credentials/repofake"
	"github.com/jrsteele09/studygroup-client/credentials/sqliterepo"
	"github.com/jrsteele09/studygroup-client/groups"
	"github.com/jrsteele09/studygroup-client/internal/config"
	"github.com/jrsteele09/studygroup-client/sessions"
	"github.com/jrsteele09/studygroup-client/state"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// App holds one wired instance of every client component.
type App struct {
	Config      config.Config
	Credentials *credentials.Store
	Client      *apiclient.Client
	State       *state.Store
	Redirector  *apiclient.LoginRedirector
	Auth        *auth.Service
	Groups      *groups.Service
	Sessions    *sessions.Service

	closers []func() error
}

// Option defines a function type to modify how the App is built.
type Option func(*options)

type options struct {
	repo       credentials.Repo
	httpClient *http.Client
	onRedirect func(entryPoint string, cause error)
}

// WithRepo uses repo instead of the configured storage driver.
func WithRepo(repo credentials.Repo) Option {
	return func(o *options) {
		o.repo = repo
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithRedirectHook is called after state has been reset by a redirect to login.
func WithRedirectHook(fn func(entryPoint string, cause error)) Option {
	return func(o *options) {
		o.onRedirect = fn
	}
}

// New builds the stack and loads persisted credentials into state.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := &options{httpClient: &http.Client{Timeout: cfg.GetRequestTimeout()}}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{Config: cfg, State: state.NewStore(state.State{})}

	repo := o.repo
	if repo == nil {
		var closer func() error
		var err error
		if repo, closer, err = OpenRepo(ctx, cfg); err != nil {
			return nil, err
		}
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}
	a.Credentials = credentials.NewStore(repo, cfg.GetStorageNamespace())

	// A redirect to login drops every slice, the equivalent of a full reload.
	a.Redirector = apiclient.NewLoginRedirector(cfg.GetLoginEntryPoint(), func(entryPoint string, cause error) {
		a.State.Dispatch(state.Reset{})
		if o.onRedirect != nil {
			o.onRedirect(entryPoint, cause)
		}
	})

	var err error
	a.Client, err = apiclient.New(cfg.GetAPIBaseURL(), a.Credentials,
		apiclient.WithHTTPClient(o.httpClient),
		apiclient.WithNavigator(a.Redirector),
	)
	if err != nil {
		return nil, a.closeWith(err)
	}
	if a.Auth, err = auth.NewService(a.Client, a.Credentials, a.State); err != nil {
		return nil, a.closeWith(err)
	}
	if a.Groups, err = groups.NewService(a.Client, a.State); err != nil {
		return nil, a.closeWith(err)
	}
	if a.Sessions, err = sessions.NewService(a.Client, a.State); err != nil {
		return nil, a.closeWith(err)
	}

	if err := a.Auth.Rehydrate(ctx); err != nil {
		return nil, a.closeWith(err)
	}
	return a, nil
}

// OpenRepo opens the credential repo selected by the storage driver. The returned closer may
// be nil.
func OpenRepo(ctx context.Context, cfg config.StorageConfig) (credentials.Repo, func() error, error) {
	switch cfg.GetStorageDriver() {
	case config.StorageMemory:
		return credentialsrepofake.NewFakeCredentialsRepo(), nil, nil
	case config.StorageSQLite:
		repo, err := sqliterepo.Open(cfg.GetSQLitePath())
		if err != nil {
			return nil, nil, fmt.Errorf("[OpenRepo] sqlite: %w", err)
		}
		return repo, repo.Close, nil
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("[OpenRepo] redis %s: %w", cfg.GetRedisAddr(), err)
		}
		return redisrepo.New(client, ""), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("[OpenRepo] unknown storage driver %q", cfg.GetStorageDriver())
	}
}

// Close releases the credential repo.
func (a *App) Close() error {
	var firstErr error
	for _, closer := range a.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) closeWith(err error) error {
	if cerr := a.Close(); cerr != nil {
		log.Err(cerr).Msg("Failed to close credential storage")
	}
	return err
}
