package stubbackend

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/studygroup-client/internal/config"
	"github.com/rs/zerolog/log"
)

// Server is an in-memory implementation of the study group REST backend. It exists for tests
// and local development and keeps everything in process memory.
type Server struct {
	env    string
	prefix string
	mux    *http.ServeMux
	routes []string

	issuer  *TokenIssuer
	refresh *RefreshManager
	data    *memoryData

	nestedProfile bool
	failRefresh   bool
	calls         map[string]int
	faultsLock    sync.Mutex
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithPrefix mounts every route under prefix (default "/api").
func WithPrefix(prefix string) ServerOption {
	return func(s *Server) {
		s.prefix = strings.TrimRight(prefix, "/")
	}
}

// WithNestedProfile serves the email only as profile.user.email, like older backends did.
func WithNestedProfile() ServerOption {
	return func(s *Server) {
		s.nestedProfile = true
	}
}

// WithRotatingRefreshTokens issues a new refresh token on every refresh and revokes the old one.
func WithRotatingRefreshTokens() ServerOption {
	return func(s *Server) {
		s.refresh.rotate = true
	}
}

func New(cfg config.Config, options ...ServerOption) *Server {
	s := &Server{
		env:     cfg.GetEnv(),
		prefix:  "/api",
		mux:     http.NewServeMux(),
		issuer:  NewTokenIssuer([]byte(cfg.GetStubSigningKey()), cfg.GetStubAccessTokenExpiry()),
		refresh: NewRefreshManager(cfg.GetStubRefreshTokenExpiry()),
		data:    newMemoryData(),
		calls:   make(map[string]int),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	full := method + " " + s.prefix + path
	s.routes = append(s.routes, full)
	if strings.HasSuffix(full, "/") {
		full += "{$}" // exact match, not subtree
	}
	s.mux.HandleFunc(full, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
