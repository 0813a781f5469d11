package stubbackend

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const contextKeyUserID contextKey = "user_id"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.CountingMiddleware,
	}
	return append(chained, mw...)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.env == "DEV" {
			logRoute(r.Method, r.URL.Path)
		}
		next(w, r)
	}
}

// CountingMiddleware records every request by "METHOD /path" (prefix stripped) for Calls.
func (s *Server) CountingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.faultsLock.Lock()
		s.calls[r.Method+" "+strings.TrimPrefix(r.URL.Path, s.prefix)]++
		s.faultsLock.Unlock()
		next(w, r)
	}
}

// RequireAuth validates the bearer access token and puts the user id in the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}

			userID, err := s.issuer.Verify(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]any{
					"detail": "Given token not valid for any token type",
					"code":   "token_not_valid",
				})
				return
			}
			if _, ok := s.data.user(userID); !ok {
				writeDetail(w, http.StatusUnauthorized, "User not found")
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), contextKeyUserID, userID)))
		}
	}
}

func userIDFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(contextKeyUserID).(int64)
	return id
}
