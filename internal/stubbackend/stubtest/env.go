// Package stubtest wires a client stack against an in-process stub backend for tests.
package stubtest

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/studygroup-client/apiclient"
	"github.com/jrsteele09/studygroup-client/credentials"
	credentialsrepofake "github.com/jrsteele09/studygroup-client/credentials/repofake"
	"github.com/jrsteele09/studygroup-client/internal/config"
	"github.com/jrsteele09/studygroup-client/internal/stubbackend"
	"github.com/jrsteele09/studygroup-client/state"
	"github.com/stretchr/testify/require"
)

const Namespace = "test"

// Env is a complete client stack talking to a stub backend over real HTTP.
type Env struct {
	Backend    *stubbackend.Server
	Repo       *credentialsrepofake.FakeCredentialsRepo
	Creds      *credentials.Store
	State      *state.Store
	Redirector *apiclient.LoginRedirector
	Client     *apiclient.Client
}

// New starts a stub backend and builds the client stack against it. A redirect to login
// resets the state store.
func New(t *testing.T, options ...stubbackend.ServerOption) *Env {
	t.Helper()

	backend := stubbackend.New(config.FromVars(config.EnvVars{Env: "TEST", StubSigningKey: "stubtest"}), options...)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	env := &Env{
		Backend: backend,
		Repo:    credentialsrepofake.NewFakeCredentialsRepo(),
		State:   state.NewStore(state.State{}),
	}
	env.Creds = credentials.NewStore(env.Repo, Namespace)
	env.Redirector = apiclient.NewLoginRedirector("/login", func(string, error) {
		env.State.Dispatch(state.Reset{})
	})

	client, err := apiclient.New(srv.URL+"/api", env.Creds,
		apiclient.WithHTTPClient(srv.Client()),
		apiclient.WithNavigator(env.Redirector),
	)
	require.NoError(t, err)
	env.Client = client
	return env
}

// User registers a user directly on the backend.
func (e *Env) User(t *testing.T, username, email, password string) {
	t.Helper()
	_, fields, err := e.Backend.CreateUser(username, email, password)
	require.NoError(t, err)
	require.Nil(t, fields)
}

// Login obtains tokens for the user over HTTP and stores them, without touching state.
func (e *Env) Login(t *testing.T, username, password string) {
	t.Helper()
	ctx := context.Background()
	tokens, err := apiclient.SendJSON[struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}](ctx, e.Client, apiclient.NewRequest("POST", apiclient.RouteAuthLogin, map[string]string{
		"username": username,
		"password": password,
	}))
	require.NoError(t, err)
	require.NoError(t, e.Creds.Save(ctx, tokens.Access, tokens.Refresh, nil, nil))
}
