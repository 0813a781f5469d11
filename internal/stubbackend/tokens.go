package stubbackend

import (
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenIssuer creates and verifies HS256 access tokens.
type TokenIssuer struct {
	key    []byte
	expiry time.Duration

	lock       sync.RWMutex
	generation int64
}

func NewTokenIssuer(key []byte, expiry time.Duration) *TokenIssuer {
	if len(key) == 0 {
		key = []byte(uuid.NewString())
	}
	return &TokenIssuer{key: key, expiry: expiry}
}

// CreateAccessToken signs an access token for the user.
func (t *TokenIssuer) CreateAccessToken(user *User) (string, error) {
	t.lock.RLock()
	generation := t.generation
	t.lock.RUnlock()

	claims := jwtlib.MapClaims{
		"sub":        fmt.Sprint(user.ID),
		"user_id":    user.ID,
		"username":   user.Username,
		"token_type": "access",
		"gen":        generation,
		"iat":        NowTimeFunc().Unix(),
		"exp":        NowTimeFunc().Add(t.expiry).Unix(),
		"jti":        uuid.New().String(),
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and generation and returns the user id.
func (t *TokenIssuer) Verify(raw string) (int64, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(token *jwtlib.Token) (any, error) {
		return t.key, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}

	gen, _ := claims["gen"].(float64)
	t.lock.RLock()
	current := t.generation
	t.lock.RUnlock()
	if int64(gen) < current {
		return 0, fmt.Errorf("token revoked")
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("missing user_id claim")
	}
	return int64(id), nil
}

// RevokeAll invalidates every access token issued so far.
func (t *TokenIssuer) RevokeAll() {
	t.lock.Lock()
	t.generation++
	t.lock.Unlock()
}
