package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/studygroup-client/apiclient"
	"github.com/jrsteele09/studygroup-client/credentials"
	apierrors "github.com/jrsteele09/studygroup-client/internal/errors"
	"github.com/jrsteele09/studygroup-client/internal/validation"
	"github.com/jrsteele09/studygroup-client/models"
	"github.com/jrsteele09/studygroup-client/state"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LoginResult is what a successful register or login leaves behind.
type LoginResult struct {
	Access  string
	Refresh string
	User    *models.User
	Profile models.Profile
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Service runs the multi-step auth flows and publishes their outcome to the state store.
// Each action goes pending -> fulfilled or pending -> rejected.
type Service struct {
	client   *apiclient.Client
	creds    *credentials.Store
	store    *state.Store
	validate *validation.Validator
}

// NewService initializes the auth action layer with its required collaborators.
func NewService(client *apiclient.Client, creds *credentials.Store, store *state.Store) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	if creds == nil {
		return nil, errors.New("[NewService] credential store is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] state store is required")
	}
	return &Service{
		client:   client,
		creds:    creds,
		store:    store,
		validate: validation.New(),
	}, nil
}

// Register creates the account, logs in with the same credentials and fetches the profile.
// The first failing step's error is returned.
func (s *Service) Register(ctx context.Context, username, email, password string) (*LoginResult, error) {
	s.store.Dispatch(state.AuthPending{Op: state.OpRegister})

	result, err := s.register(ctx, RegisterInput{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, s.reject(state.OpRegister, err)
	}
	s.fulfill(state.OpRegister, result)
	return result, nil
}

func (s *Service) register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	if err := s.validate.Check(in); err != nil {
		return nil, err
	}

	if _, err := s.client.Send(ctx, apiclient.NewRequest(http.MethodPost, apiclient.RouteAuthRegister, in)); err != nil {
		return nil, errors.Wrap(err, "[Register] registration failed")
	}

	tokens, profile, err := s.authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: in.Username, Email: in.Email}
	if err := s.creds.Save(ctx, tokens.Access, tokens.Refresh, user, profile); err != nil {
		return nil, errors.Wrap(err, "[Register] failed to persist credentials")
	}
	return &LoginResult{Access: tokens.Access, Refresh: tokens.Refresh, User: user, Profile: profile}, nil
}

// Login authenticates, fetches the profile and persists everything. The cached user is the
// login username plus whichever email the profile exposes.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	s.store.Dispatch(state.AuthPending{Op: state.OpLogin})

	result, err := s.login(ctx, LoginInput{Username: username, Password: password})
	if err != nil {
		return nil, s.reject(state.OpLogin, err)
	}
	s.fulfill(state.OpLogin, result)
	return result, nil
}

func (s *Service) login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := s.validate.Check(in); err != nil {
		return nil, err
	}

	tokens, profile, err := s.authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: in.Username, Email: profile.Email()}
	if err := s.creds.Save(ctx, tokens.Access, tokens.Refresh, user, profile); err != nil {
		return nil, errors.Wrap(err, "[Login] failed to persist credentials")
	}
	return &LoginResult{Access: tokens.Access, Refresh: tokens.Refresh, User: user, Profile: profile}, nil
}

// authenticate exchanges username/password for tokens and reads the profile with the new
// access token. Nothing is stored yet, so both calls skip the refresh stage.
func (s *Service) authenticate(ctx context.Context, username, password string) (tokenPair, models.Profile, error) {
	tokens, err := apiclient.SendJSON[tokenPair](ctx, s.client,
		apiclient.NewRequest(http.MethodPost, apiclient.RouteAuthLogin, LoginInput{Username: username, Password: password}))
	if err != nil {
		return tokenPair{}, nil, errors.Wrap(err, "[Login] login failed")
	}
	if tokens.Access == "" {
		return tokenPair{}, nil, apierrors.Wrapf(apierrors.ErrInvalidResponse, "login response has no access token")
	}

	profileReq := apiclient.NewRequest(http.MethodGet, apiclient.RouteProfile, nil)
	profileReq.Header = http.Header{"Authorization": []string{"Bearer " + tokens.Access}}
	profile, err := apiclient.SendJSON[models.Profile](ctx, s.client, profileReq)
	if err != nil {
		return tokenPair{}, nil, errors.Wrap(err, "[Login] profile fetch failed")
	}
	if profile == nil {
		profile = models.Profile{}
	}
	return tokens, profile, nil
}

// Logout is local only: stored credentials are cleared and the auth slice is reset.
// The slice is reset even if clearing storage fails.
func (s *Service) Logout(ctx context.Context) error {
	err := s.creds.Clear(ctx)
	if err != nil {
		log.Err(err).Msg("Logout: failed to clear stored credentials")
	}
	s.store.Dispatch(state.Logout{})
	return err
}

// FetchProfile reads the profile through the authenticated client and caches it.
func (s *Service) FetchProfile(ctx context.Context) (models.Profile, error) {
	s.store.Dispatch(state.AuthPending{Op: state.OpFetchProfile})

	profile, err := apiclient.DoJSON[models.Profile](ctx, s.client, apiclient.NewRequest(http.MethodGet, apiclient.RouteProfile, nil))
	if err != nil {
		return nil, s.reject(state.OpFetchProfile, err)
	}
	if err := s.creds.UpdateProfile(ctx, profile); err != nil {
		return nil, s.reject(state.OpFetchProfile, errors.Wrap(err, "[FetchProfile] failed to cache profile"))
	}
	s.store.Dispatch(state.ProfileFulfilled{Op: state.OpFetchProfile, Profile: profile})
	return profile, nil
}

// UpdateProfile writes data to the profile and caches what the backend returns.
func (s *Service) UpdateProfile(ctx context.Context, data models.Profile) (models.Profile, error) {
	s.store.Dispatch(state.AuthPending{Op: state.OpUpdateProfile})

	profile, err := apiclient.DoJSON[models.Profile](ctx, s.client, apiclient.NewRequest(http.MethodPut, apiclient.RouteProfile, data))
	if err != nil {
		return nil, s.reject(state.OpUpdateProfile, err)
	}
	if err := s.creds.UpdateProfile(ctx, profile); err != nil {
		return nil, s.reject(state.OpUpdateProfile, errors.Wrap(err, "[UpdateProfile] failed to cache profile"))
	}
	s.store.Dispatch(state.ProfileFulfilled{Op: state.OpUpdateProfile, Profile: profile})
	return profile, nil
}

// Rehydrate loads persisted credentials into the auth slice, e.g. at startup.
func (s *Service) Rehydrate(ctx context.Context) error {
	snap, err := s.creds.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "[Rehydrate] failed to load credentials")
	}
	s.store.Dispatch(state.Rehydrate{
		AccessToken:  snap.AccessToken,
		RefreshToken: snap.RefreshToken,
		User:         snap.User,
		Profile:      snap.Profile,
	})
	return nil
}

// ClearError drops the last auth error from state.
func (s *Service) ClearError() {
	s.store.Dispatch(state.ClearAuthError{})
}

func (s *Service) fulfill(op string, r *LoginResult) {
	s.store.Dispatch(state.AuthFulfilled{
		Op:      op,
		Access:  r.Access,
		Refresh: r.Refresh,
		User:    r.User,
		Profile: r.Profile,
	})
}

func (s *Service) reject(op string, err error) error {
	log.Err(err).Str("op", op).Msg("Auth action failed")
	s.store.Dispatch(state.AuthRejected{
		Op:  op,
		Err: &state.ActionError{Op: op, Message: apiclient.Message(err), Err: err},
	})
	return err
}
