package state

import (
	"slices"

	"github.com/jrsteele09/studygroup-client/models"
)

const (
	OpFetchSessions = "sessions/fetchSessions"
	OpFetchSession  = "sessions/fetchSession"
	OpCreateSession = "sessions/createSession"
	OpDeleteSession = "sessions/deleteSession"
)

type SessionsState struct {
	Sessions []models.Session
	Selected *models.Session
	Loading  bool
	Error    *ActionError
}

type SessionsPending struct{ Op string }

type SessionsRejected struct {
	Op  string
	Err *ActionError
}

type SessionsLoaded struct{ Sessions []models.Session }
type SessionLoaded struct{ Session models.Session }
type SessionCreated struct{ Session models.Session }
type SessionDeleted struct{ ID int64 }
type SetSelectedSession struct{ Session *models.Session }
type ClearSessions struct{}
type ClearSessionsError struct{}

func (a SessionsPending) Type() string  { return a.Op + "/pending" }
func (a SessionsRejected) Type() string { return a.Op + "/rejected" }
func (SessionsLoaded) Type() string     { return OpFetchSessions + "/fulfilled" }
func (SessionLoaded) Type() string      { return OpFetchSession + "/fulfilled" }
func (SessionCreated) Type() string     { return OpCreateSession + "/fulfilled" }
func (SessionDeleted) Type() string     { return OpDeleteSession + "/fulfilled" }
func (SetSelectedSession) Type() string { return "sessions/setSelectedSession" }
func (ClearSessions) Type() string      { return "sessions/clearSessions" }
func (ClearSessionsError) Type() string { return "sessions/clearError" }

func ReduceSessions(s SessionsState, a Action) SessionsState {
	switch a := a.(type) {
	case SessionsPending:
		s.Loading = true
		s.Error = nil
	case SessionsRejected:
		s.Loading = false
		s.Error = a.Err
	case SessionsLoaded:
		s.Loading = false
		s.Sessions = slices.Clone(a.Sessions)
	case SessionLoaded:
		s.Loading = false
		session := a.Session
		s.Selected = &session
	case SessionCreated:
		s.Loading = false
		s.Sessions = append(slices.Clone(s.Sessions), a.Session)
	case SessionDeleted:
		s.Loading = false
		s.Sessions = slices.DeleteFunc(slices.Clone(s.Sessions), func(sess models.Session) bool {
			return sess.ID == a.ID
		})
		if s.Selected != nil && s.Selected.ID == a.ID {
			s.Selected = nil
		}
	case SetSelectedSession:
		s.Selected = a.Session
	case ClearSessions:
		s.Sessions = nil
		s.Selected = nil
	case ClearSessionsError:
		s.Error = nil
	case Reset:
		return SessionsState{}
	}
	return s
}
