package credentials

import (
	"context"
	"encoding/json"
	"fmt"

	apierrors "github.com/jrsteele09/studygroup-client/internal/errors"
	"github.com/jrsteele09/studygroup-client/models"
	"github.com/rs/zerolog/log"
)

// Snapshot is the stored session state. Empty strings and nil values mean "absent".
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
	Profile      models.Profile
}

// IsAuthenticated reports whether an access token is present.
func (s Snapshot) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// Store persists access token, refresh token and the cached user and profile.
type Store struct {
	repo Repo
	keys Keys
}

// NewStore creates a credential store writing into repo under namespace.
func NewStore(repo Repo, namespace string) *Store {
	return &Store{
		repo: repo,
		keys: NamespacedKeys(namespace),
	}
}

// Keys returns the storage keys this store writes.
func (s *Store) Keys() Keys {
	return s.keys
}

// Save writes every provided field. Empty tokens and nil user/profile leave the stored value untouched.
func (s *Store) Save(ctx context.Context, access, refresh string, user *models.User, profile models.Profile) error {
	if access != "" {
		if err := s.repo.Set(ctx, s.keys.AccessToken, access); err != nil {
			return fmt.Errorf("failed to save access token: %w", err)
		}
	}
	if refresh != "" {
		if err := s.repo.Set(ctx, s.keys.RefreshToken, refresh); err != nil {
			return fmt.Errorf("failed to save refresh token: %w", err)
		}
	}
	if user != nil {
		if err := s.setJSON(ctx, s.keys.User, user); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
	}
	if profile != nil {
		if err := s.setJSON(ctx, s.keys.Profile, profile); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
	}
	return nil
}

// SaveAccessToken replaces only the access token.
func (s *Store) SaveAccessToken(ctx context.Context, access string) error {
	return s.Save(ctx, access, "", nil, nil)
}

// SaveRefreshToken replaces only the refresh token, for backends that rotate it on refresh.
func (s *Store) SaveRefreshToken(ctx context.Context, refresh string) error {
	return s.Save(ctx, "", refresh, nil, nil)
}

// UpdateProfile overwrites the cached profile and keeps everything else.
func (s *Store) UpdateProfile(ctx context.Context, profile models.Profile) error {
	return s.Save(ctx, "", "", nil, profile)
}

// Load returns the current snapshot. A cached JSON field that does not parse is reported as
// absent and its key is removed; the other fields are unaffected.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.AccessToken, err = s.get(ctx, s.keys.AccessToken); err != nil {
		return Snapshot{}, err
	}
	if snap.RefreshToken, err = s.get(ctx, s.keys.RefreshToken); err != nil {
		return Snapshot{}, err
	}

	var user models.User
	ok, err := s.getJSON(ctx, s.keys.User, &user)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		snap.User = &user
	}

	var profile models.Profile
	ok, err = s.getJSON(ctx, s.keys.Profile, &profile)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		snap.Profile = profile
	}
	return snap, nil
}

// Clear removes all four fields.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Remove(ctx, s.keys.All()...); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, s.keys.AccessToken)
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, s.keys.RefreshToken)
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	value, _, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, key, string(b))
}

// getJSON decodes key into v. A corrupt value is logged, removed and reported as not found.
func (s *Store) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Err(apierrors.Wrapf(apierrors.ErrCorruptCache, "%s: %s", key, err)).Msg("Discarding corrupt cached value")
		if rmErr := s.repo.Remove(ctx, key); rmErr != nil {
			log.Err(rmErr).Str("key", key).Msg("Failed to remove corrupt cached value")
		}
		return false, nil
	}
	return true, nil
}
