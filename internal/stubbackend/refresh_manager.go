package stubbackend

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const refreshTokenLength = 32

// StoredRefreshToken represents a refresh token held by the backend.
type StoredRefreshToken struct {
	Token  string
	UserID int64
	Iat    time.Time
}

// RefreshManager handles refresh token creation, validation, and rotation.
type RefreshManager struct {
	lock   sync.Mutex
	tokens map[string]*StoredRefreshToken
	expiry time.Duration
	rotate bool
}

func NewRefreshManager(expiry time.Duration) *RefreshManager {
	return &RefreshManager{
		tokens: make(map[string]*StoredRefreshToken),
		expiry: expiry,
	}
}

// Create generates a new refresh token for the user. Earlier tokens of the user stay valid so
// several clients can be logged in at once.
func (m *RefreshManager) Create(userID int64) (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	m.lock.Lock()
	m.tokens[tokenStr] = &StoredRefreshToken{Token: tokenStr, UserID: userID, Iat: NowTimeFunc()}
	m.lock.Unlock()
	return tokenStr, nil
}

// Get returns a stored, unexpired refresh token.
func (m *RefreshManager) Get(token string) (*StoredRefreshToken, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	rt, ok := m.tokens[token]
	if !ok {
		return nil, false
	}
	if m.IsExpired(rt) {
		delete(m.tokens, token)
		return nil, false
	}
	return rt, true
}

func (m *RefreshManager) Delete(token string) {
	m.lock.Lock()
	delete(m.tokens, token)
	m.lock.Unlock()
}

func (m *RefreshManager) IsExpired(rt *StoredRefreshToken) bool {
	return m.expiry > 0 && NowTimeFunc().Sub(rt.Iat) > m.expiry
}
