package state

import (
	"github.com/jrsteele09/studygroup-client/models"
)

// Auth operations, used as the Op of pending/rejected actions.
const (
	OpRegister      = "auth/register"
	OpLogin         = "auth/login"
	OpFetchProfile  = "auth/fetchProfile"
	OpUpdateProfile = "auth/updateProfile"
)

type AuthState struct {
	IsAuthenticated bool
	User            *models.User
	Profile         models.Profile
	AccessToken     string
	RefreshToken    string
	Loading         bool
	Error           *ActionError
}

type AuthPending struct{ Op string }

// AuthFulfilled settles a register or login.
type AuthFulfilled struct {
	Op      string
	Access  string
	Refresh string
	User    *models.User
	Profile models.Profile
}

// ProfileFulfilled settles a profile fetch or update.
type ProfileFulfilled struct {
	Op      string
	Profile models.Profile
}

type AuthRejected struct {
	Op  string
	Err *ActionError
}

type Logout struct{}

type ClearAuthError struct{}

// Rehydrate loads persisted credentials into the auth slice.
type Rehydrate struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
	Profile      models.Profile
}

func (a AuthPending) Type() string      { return a.Op + "/pending" }
func (a AuthFulfilled) Type() string    { return a.Op + "/fulfilled" }
func (a ProfileFulfilled) Type() string { return a.Op + "/fulfilled" }
func (a AuthRejected) Type() string     { return a.Op + "/rejected" }
func (Logout) Type() string             { return "auth/logout" }
func (ClearAuthError) Type() string     { return "auth/clearError" }
func (Rehydrate) Type() string          { return "auth/rehydrate" }

// ReduceAuth is the auth slice reducer. A rejection never changes IsAuthenticated.
func ReduceAuth(s AuthState, a Action) AuthState {
	switch a := a.(type) {
	case AuthPending:
		s.Loading = true
		s.Error = nil
	case AuthFulfilled:
		s.Loading = false
		s.User = a.User
		s.Profile = a.Profile.Clone()
		s.AccessToken = a.Access
		s.RefreshToken = a.Refresh
		s.IsAuthenticated = true
		s.Error = nil
	case ProfileFulfilled:
		s.Loading = false
		s.Profile = a.Profile.Clone()
		s.Error = nil
	case AuthRejected:
		s.Loading = false
		s.Error = a.Err
	case Logout, Reset:
		return AuthState{}
	case ClearAuthError:
		s.Error = nil
	case Rehydrate:
		s.User = a.User
		s.Profile = a.Profile.Clone()
		s.AccessToken = a.AccessToken
		s.RefreshToken = a.RefreshToken
		s.IsAuthenticated = a.AccessToken != ""
	}
	return s
}
