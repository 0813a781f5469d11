package sessions

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/studygroup-client/apiclient"
	"github.com/jrsteele09/studygroup-client/internal/validation"
	"github.com/jrsteele09/studygroup-client/models"
	"github.com/jrsteele09/studygroup-client/state"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service manages study sessions. Deleting is restricted to group admins by the backend.
type Service struct {
	client   *apiclient.Client
	store    *state.Store
	validate *validation.Validator
}

func NewService(client *apiclient.Client, store *state.Store) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] state store is required")
	}
	return &Service{
		client:   client,
		store:    store,
		validate: validation.New(),
	}, nil
}

// List fetches the sessions visible to the user, narrowed by filter.
func (s *Service) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	s.store.Dispatch(state.SessionsPending{Op: state.OpFetchSessions})

	req := apiclient.NewRequest(http.MethodGet, apiclient.RouteSessions, nil)
	req.Query = filterQuery(filter)
	sessions, err := apiclient.DoJSON[[]models.Session](ctx, s.client, req)
	if err != nil {
		return nil, s.reject(state.OpFetchSessions, err)
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	s.store.Dispatch(state.SessionsLoaded{Sessions: sessions})
	return sessions, nil
}

func filterQuery(filter models.SessionFilter) url.Values {
	q := url.Values{}
	if filter.GroupID != 0 {
		q.Set("group", strconv.FormatInt(filter.GroupID, 10))
	}
	if filter.Date != "" {
		q.Set("date", filter.Date)
	}
	return q
}

// Get fetches one session and selects it.
func (s *Service) Get(ctx context.Context, id int64) (*models.Session, error) {
	s.store.Dispatch(state.SessionsPending{Op: state.OpFetchSession})
	session, err := apiclient.DoJSON[models.Session](ctx, s.client, apiclient.NewRequest(http.MethodGet, apiclient.RouteSessionDetail(id), nil))
	if err != nil {
		return nil, s.reject(state.OpFetchSession, err)
	}
	s.store.Dispatch(state.SessionLoaded{Session: session})
	return &session, nil
}

func (s *Service) Create(ctx context.Context, in models.NewSession) (*models.Session, error) {
	s.store.Dispatch(state.SessionsPending{Op: state.OpCreateSession})
	if err := s.validate.Check(in); err != nil {
		return nil, s.reject(state.OpCreateSession, err)
	}

	session, err := apiclient.DoJSON[models.Session](ctx, s.client, apiclient.NewRequest(http.MethodPost, apiclient.RouteSessions, in))
	if err != nil {
		return nil, s.reject(state.OpCreateSession, err)
	}
	s.store.Dispatch(state.SessionCreated{Session: session})
	return &session, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	s.store.Dispatch(state.SessionsPending{Op: state.OpDeleteSession})
	if _, err := s.client.Do(ctx, apiclient.NewRequest(http.MethodDelete, apiclient.RouteSessionDetail(id), nil)); err != nil {
		return s.reject(state.OpDeleteSession, err)
	}
	s.store.Dispatch(state.SessionDeleted{ID: id})
	return nil
}

func (s *Service) Select(session *models.Session) {
	s.store.Dispatch(state.SetSelectedSession{Session: session})
}

func (s *Service) Clear() {
	s.store.Dispatch(state.ClearSessions{})
}

func (s *Service) ClearError() {
	s.store.Dispatch(state.ClearSessionsError{})
}

func (s *Service) reject(op string, err error) error {
	log.Err(err).Str("op", op).Msg("Sessions action failed")
	s.store.Dispatch(state.SessionsRejected{
		Op:  op,
		Err: &state.ActionError{Op: op, Message: apiclient.Message(err), Err: err},
	})
	return err
}
