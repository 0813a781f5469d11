package stubbackend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/studygroup-client/internal/config"
	"github.com/jrsteele09/studygroup-client/internal/stubbackend"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, options ...stubbackend.ServerOption) *stubbackend.Server {
	t.Helper()
	srv := stubbackend.New(config.FromVars(config.EnvVars{Env: "TEST", StubSigningKey: "test-key"}), options...)
	_, fields, err := srv.CreateUser("alice", "alice@example.com", "secret")
	require.NoError(t, err)
	require.Nil(t, fields)
	return srv
}

func call(t *testing.T, srv http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api"+path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func login(t *testing.T, srv http.Handler) (string, string) {
	t.Helper()
	status, body := call(t, srv, http.MethodPost, "/auth/login/", "", map[string]string{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	return body["access"].(string), body["refresh"].(string)
}

func TestLoginAndProfile(t *testing.T) {
	srv := newServer(t)
	access, refresh := login(t, srv)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	status, profile := call(t, srv, http.MethodGet, "/profile/", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "alice@example.com", profile["email"])
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newServer(t)
	status, body := call(t, srv, http.MethodPost, "/auth/login/", "", map[string]string{"username": "alice", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "No active account found with the given credentials", body["detail"])
}

func TestRegisterDuplicate(t *testing.T) {
	srv := newServer(t)
	status, body := call(t, srv, http.MethodPost, "/auth/register/", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "username")
}

func TestExpireAccessTokensAndRefresh(t *testing.T) {
	srv := newServer(t)
	access, refresh := login(t, srv)

	srv.ExpireAccessTokens()
	status, _ := call(t, srv, http.MethodGet, "/profile/", access, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := call(t, srv, http.MethodPost, "/auth/refresh/", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, srv.RefreshCalls())

	status, _ = call(t, srv, http.MethodGet, "/profile/", body["access"].(string), nil)
	require.Equal(t, http.StatusOK, status)
}

func TestFailRefresh(t *testing.T) {
	srv := newServer(t)
	_, refresh := login(t, srv)

	srv.FailRefresh(true)
	status, body := call(t, srv, http.MethodPost, "/auth/refresh/", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Token is invalid or expired", body["detail"])
}

func TestRotatingRefreshTokens(t *testing.T) {
	srv := newServer(t, stubbackend.WithRotatingRefreshTokens())
	_, refresh := login(t, srv)

	status, body := call(t, srv, http.MethodPost, "/auth/refresh/", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body["refresh"])
	require.NotEqual(t, refresh, body["refresh"])

	status, _ = call(t, srv, http.MethodPost, "/auth/refresh/", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestNestedProfile(t *testing.T) {
	srv := newServer(t, stubbackend.WithNestedProfile())
	access, _ := login(t, srv)

	_, profile := call(t, srv, http.MethodGet, "/profile/", access, nil)
	require.NotContains(t, profile, "email")
	require.Equal(t, "alice@example.com", profile["user"].(map[string]any)["email"])
}

func TestGroupMembershipAndSessions(t *testing.T) {
	srv := newServer(t)
	_, fields, err := srv.CreateUser("bob", "bob@example.com", "pw")
	require.NoError(t, err)
	require.Nil(t, fields)

	aliceToken, _ := login(t, srv)
	status, body := call(t, srv, http.MethodPost, "/auth/login/", "", map[string]string{"username": "bob", "password": "pw"})
	require.Equal(t, http.StatusOK, status)
	bobToken := body["access"].(string)

	status, created := call(t, srv, http.MethodPost, "/groups/", aliceToken, map[string]string{"name": "Go"})
	require.Equal(t, http.StatusCreated, status)
	groupID := int64(created["id"].(float64))
	require.Equal(t, "alice", created["owner"])

	status, _ = call(t, srv, http.MethodPost, "/sessions/", bobToken, map[string]any{"group": groupID, "title": "Intro"})
	require.Equal(t, http.StatusForbidden, status)

	status, joined := call(t, srv, http.MethodPost, "/groups/"+jsonNumber(groupID)+"/join/", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 2, joined["participants"])

	status, _ = call(t, srv, http.MethodPost, "/groups/"+jsonNumber(groupID)+"/join/", bobToken, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, session := call(t, srv, http.MethodPost, "/sessions/", bobToken, map[string]any{"group": groupID, "title": "Intro", "date": "2026-01-02"})
	require.Equal(t, http.StatusCreated, status)
	sessionPath := "/sessions/" + jsonNumber(int64(session["id"].(float64))) + "/"

	status, _ = call(t, srv, http.MethodDelete, sessionPath, bobToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, srv, http.MethodDelete, sessionPath, aliceToken, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = call(t, srv, http.MethodGet, sessionPath, aliceToken, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestMissingBearer(t *testing.T) {
	srv := newServer(t)
	status, body := call(t, srv, http.MethodGet, "/groups/", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Authentication credentials were not provided.", body["detail"])
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestConcurrentProfileReadsAndWrites(t *testing.T) {
	srv := newServer(t)
	access, _ := login(t, srv)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/api/profile/", nil)
			req.Header.Set("Authorization", "Bearer "+access)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("GET /profile/ = %d", rec.Code)
			}
		}()
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPut, "/api/profile/", bytes.NewBufferString(`{"bio":"busy"}`))
			req.Header.Set("Authorization", "Bearer "+access)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("PUT /profile/ = %d", rec.Code)
			}
		}()
	}
	wg.Wait()

	status, profile := call(t, srv, http.MethodGet, "/profile/", access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "busy", profile["bio"])
}
