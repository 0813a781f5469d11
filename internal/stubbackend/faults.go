package stubbackend

// CreateUser registers a user directly, bypassing HTTP. Field errors are returned for
// duplicate usernames or emails.
func (s *Server) CreateUser(username, email, password string) (*User, map[string][]string, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	user := &User{Username: username, Email: email, PasswordHash: hash}
	if fields := s.data.addUser(user); fields != nil {
		return nil, fields, nil
	}
	return user, nil, nil
}

// ExpireAccessTokens makes every access token issued so far fail authentication with 401.
func (s *Server) ExpireAccessTokens() {
	s.issuer.RevokeAll()
}

// FailRefresh makes the refresh endpoint reject every token while enabled.
func (s *Server) FailRefresh(fail bool) {
	s.faultsLock.Lock()
	s.failRefresh = fail
	s.faultsLock.Unlock()
}

// Calls returns how many requests hit route, e.g. "POST /auth/refresh/".
func (s *Server) Calls(route string) int {
	s.faultsLock.Lock()
	defer s.faultsLock.Unlock()
	return s.calls[route]
}

// RefreshCalls returns how many times the refresh endpoint was called.
func (s *Server) RefreshCalls() int {
	return s.Calls("POST " + RouteAuthRefresh)
}

// ResetCalls zeroes the request counters.
func (s *Server) ResetCalls() {
	s.faultsLock.Lock()
	defer s.faultsLock.Unlock()
	clear(s.calls)
}
