package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/studygroup-client/apiclient"
	"github.com/jrsteele09/studygroup-client/credentials"
	credentialsrepofake "github.com/jrsteele09/studygroup-client/credentials/repofake"
	apierrors "github.com/jrsteele09/studygroup-client/internal/errors"
	"github.com/jrsteele09/studygroup-client/internal/stubbackend"
	"github.com/jrsteele09/studygroup-client/internal/stubbackend/stubtest"
	"github.com/jrsteele09/studygroup-client/models"
	"github.com/stretchr/testify/require"
)

const (
	staleToken   = "stale-access"
	freshToken   = "fresh-access"
	testRefresh  = "refresh-1"
	thingsPath   = "/things/"
	refreshRoute = "/api" + apiclient.RouteAuthRefresh
)

// fakeBackend accepts exactly one access token and counts every call it sees.
type fakeBackend struct {
	mu           sync.Mutex
	validToken   string
	failRefresh  bool
	alwaysReject bool
	refreshDelay time.Duration
	authHeaders  []string
	requestIDs   []string
	refreshCalls atomic.Int32
	thingCalls   atomic.Int32
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case refreshRoute:
		b.refreshCalls.Add(1)
		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}
		var body struct {
			Refresh string `json:"refresh"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failRefresh || body.Refresh != testRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
			return
		}
		b.validToken = freshToken
		_ = json.NewEncoder(w).Encode(map[string]string{"access": freshToken})
	case "/api" + thingsPath:
		b.thingCalls.Add(1)
		b.mu.Lock()
		b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
		b.requestIDs = append(b.requestIDs, r.Header.Get("X-Request-ID"))
		valid := b.validToken
		reject := b.alwaysReject
		b.mu.Unlock()

		if reject || r.Header.Get("Authorization") != "Bearer "+valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Authentication credentials were not provided."}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	case "/api/public/":
		b.mu.Lock()
		b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
		b.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	case "/api/broken/":
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"name":["This field is required."]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) seenAuth() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.authHeaders...)
}

func (b *fakeBackend) seenRequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestIDs...)
}

type fixture struct {
	backend    *fakeBackend
	repo       *credentialsrepofake.FakeCredentialsRepo
	store      *credentials.Store
	redirector *apiclient.LoginRedirector
	client     *apiclient.Client
}

func setupFixture(t *testing.T, backend *fakeBackend) *fixture {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	repo := credentialsrepofake.NewFakeCredentialsRepo()
	store := credentials.NewStore(repo, "studygroup")
	redirector := apiclient.NewLoginRedirector("/login", nil)

	client, err := apiclient.New(srv.URL+"/api", store,
		apiclient.WithHTTPClient(srv.Client()),
		apiclient.WithNavigator(redirector),
	)
	require.NoError(t, err)

	return &fixture{backend: backend, repo: repo, store: store, redirector: redirector, client: client}
}

func (f *fixture) login(t *testing.T, access, refresh string) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), access, refresh,
		&models.User{Username: "alice"}, models.Profile{"email": "alice@example.com"}))
}

func getThings() *apiclient.Request {
	return apiclient.NewRequest(http.MethodGet, thingsPath, nil)
}

func TestNewRequiresBaseURLAndStore(t *testing.T) {
	_, err := apiclient.New("", credentials.NewStore(credentialsrepofake.NewFakeCredentialsRepo(), ""))
	require.Error(t, err)

	_, err = apiclient.New("http://localhost", nil)
	require.Error(t, err)
}

func TestBearerAttachedWhenTokenStored(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken})
	f.login(t, freshToken, testRefresh)

	resp, err := f.client.Do(context.Background(), getThings())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, []string{"Bearer " + freshToken}, f.backend.seenAuth())
	require.Zero(t, f.backend.refreshCalls.Load())
}

func TestNoBearerWithoutStoredToken(t *testing.T) {
	f := setupFixture(t, &fakeBackend{})

	resp, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/public/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.Equal(t, []string{""}, f.backend.seenAuth())
}

func TestRefreshesOnceAndRetriesOnce(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken})
	f.login(t, staleToken, testRefresh)

	out, err := apiclient.DoJSON[map[string]bool](context.Background(), f.client, getThings())
	require.NoError(t, err)
	require.True(t, out["ok"])

	require.EqualValues(t, 1, f.backend.refreshCalls.Load())
	require.EqualValues(t, 2, f.backend.thingCalls.Load())
	require.Equal(t, []string{"Bearer " + staleToken, "Bearer " + freshToken}, f.backend.seenAuth())

	access, err := f.store.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, freshToken, access)
	require.Zero(t, f.redirector.Redirects())
}

func TestRetryKeepsRequestID(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken})
	f.login(t, staleToken, testRefresh)

	_, err := f.client.Do(context.Background(), getThings())
	require.NoError(t, err)
	ids := f.backend.seenRequestIDs()
	require.Len(t, ids, 2)
	require.NotEmpty(t, ids[0])
	require.Equal(t, ids[0], ids[1])
}

func TestRefreshFailureClearsCredentials(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken, failRefresh: true})
	f.login(t, staleToken, testRefresh)

	_, err := f.client.Do(context.Background(), getThings())
	require.Error(t, err)

	var refreshErr *apiclient.RefreshError
	require.ErrorAs(t, err, &refreshErr)
	require.ErrorIs(t, err, apierrors.ErrRefreshFailed)
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
	require.Equal(t, "Token is invalid or expired", apiclient.Message(err))

	require.Empty(t, f.repo.Keys())
	require.Equal(t, 1, f.redirector.Redirects())
	require.EqualValues(t, 1, f.backend.thingCalls.Load())
}

func TestRetriedCallIsNotRefreshedAgain(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken})
	f.login(t, staleToken, testRefresh)

	_, err := f.client.Dispatch(context.Background(), &apiclient.Call{Request: getThings(), Retried: true})
	require.Error(t, err)
	require.True(t, apiclient.IsUnauthorized(err))
	require.Zero(t, f.backend.refreshCalls.Load())
	require.EqualValues(t, 1, f.backend.thingCalls.Load())
}

func TestSecond401AfterRefreshPropagates(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken, alwaysReject: true})
	f.login(t, staleToken, testRefresh)

	_, err := f.client.Do(context.Background(), getThings())
	require.Error(t, err)
	require.True(t, apiclient.IsUnauthorized(err))
	require.EqualValues(t, 1, f.backend.refreshCalls.Load())
	require.EqualValues(t, 2, f.backend.thingCalls.Load())
	require.Zero(t, f.redirector.Redirects())
}

func TestMissingRefreshTokenGoesToLogin(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken})
	f.login(t, staleToken, "")

	_, err := f.client.Do(context.Background(), getThings())
	require.Error(t, err)
	require.True(t, apiclient.IsUnauthorized(err))
	require.Equal(t, "Authentication credentials were not provided.", apiclient.Message(err))
	require.Zero(t, f.backend.refreshCalls.Load())
	require.Equal(t, 1, f.redirector.Redirects())
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken, refreshDelay: 50 * time.Millisecond})
	f.login(t, staleToken, testRefresh)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.client.Do(context.Background(), getThings())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, f.backend.refreshCalls.Load())
}

func TestNonAuthErrorsPropagateUnchanged(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken})
	f.login(t, freshToken, testRefresh)

	_, err := f.client.Do(context.Background(), apiclient.NewRequest(http.MethodPost, "/broken/", map[string]string{}))
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, apiclient.StatusCode(err))
	require.Equal(t, "name: This field is required.", apiclient.Message(err))
	require.Zero(t, f.backend.refreshCalls.Load())

	_, err = f.client.Do(context.Background(), apiclient.NewRequest(http.MethodGet, "/missing/", nil))
	require.ErrorIs(t, err, apierrors.ErrNotFound)
	require.Equal(t, "Error: 404 Not Found", apiclient.Message(err))
}

func TestNetworkErrorIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := apiclient.New(url, credentials.NewStore(credentialsrepofake.NewFakeCredentialsRepo(), ""))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), getThings())
	require.ErrorIs(t, err, apierrors.ErrNetwork)
	require.Equal(t, "Network error. Please check your connection.", apiclient.Message(err))
}

func TestSendSkipsTokenStages(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken})
	f.login(t, staleToken, testRefresh)

	_, err := f.client.Send(context.Background(), getThings())
	require.True(t, apiclient.IsUnauthorized(err))
	require.Zero(t, f.backend.refreshCalls.Load())
	require.Equal(t, []string{""}, f.backend.seenAuth())

	req := getThings()
	req.Header = http.Header{"Authorization": []string{"Bearer " + freshToken}}
	_, err = f.client.Send(context.Background(), req)
	require.NoError(t, err)
}

func TestExtraMiddlewareRunsOutermost(t *testing.T) {
	backend := &fakeBackend{validToken: freshToken}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	var seen []bool
	recordRetried := func(next apiclient.Handler) apiclient.Handler {
		return func(ctx context.Context, call *apiclient.Call) (*apiclient.Response, error) {
			resp, err := next(ctx, call)
			seen = append(seen, call.Retried)
			return resp, err
		}
	}

	store := credentials.NewStore(credentialsrepofake.NewFakeCredentialsRepo(), "")
	require.NoError(t, store.Save(context.Background(), staleToken, testRefresh, nil, nil))

	client, err := apiclient.New(srv.URL+"/api", store, apiclient.WithMiddleware(recordRetried))
	require.NoError(t, err)

	_, err = client.Do(context.Background(), getThings())
	require.NoError(t, err)
	require.Equal(t, []bool{true}, seen)
}

func TestNilRequestIsRejected(t *testing.T) {
	f := setupFixture(t, &fakeBackend{validToken: freshToken})

	_, err := f.client.Do(context.Background(), nil)
	require.ErrorIs(t, err, apiclient.ErrNilRequest)
	_, err = f.client.Dispatch(context.Background(), &apiclient.Call{})
	require.ErrorIs(t, err, apiclient.ErrNilRequest)
	_, err = f.client.Send(context.Background(), nil)
	require.ErrorIs(t, err, apiclient.ErrNilRequest)
	require.Zero(t, f.backend.thingCalls.Load())
}

func TestRotatedRefreshTokenIsStored(t *testing.T) {
	env := stubtest.New(t, stubbackend.WithRotatingRefreshTokens())
	env.User(t, "alice", "alice@example.com", "secret")
	env.Login(t, "alice", "secret")
	ctx := context.Background()
	profile := func() error {
		_, err := env.Client.Do(ctx, apiclient.NewRequest(http.MethodGet, apiclient.RouteProfile, nil))
		return err
	}

	first, err := env.Creds.RefreshToken(ctx)
	require.NoError(t, err)

	env.Backend.ExpireAccessTokens()
	require.NoError(t, profile())
	second, err := env.Creds.RefreshToken(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
	require.Equal(t, 1, env.Backend.RefreshCalls())

	// the old refresh token was revoked, so the next refresh only works with the stored one
	env.Backend.ExpireAccessTokens()
	require.NoError(t, profile())
	third, err := env.Creds.RefreshToken(ctx)
	require.NoError(t, err)
	require.NotEqual(t, second, third)
	require.Equal(t, 2, env.Backend.RefreshCalls())

	env.Backend.ExpireAccessTokens()
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = profile()
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 3, env.Backend.RefreshCalls())
	require.Zero(t, env.Redirector.Redirects())
}
