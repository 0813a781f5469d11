package groups

import (
	"context"
	"net/http"

	"github.com/jrsteele09/studygroup-client/apiclient"
	"github.com/jrsteele09/studygroup-client/internal/validation"
	"github.com/jrsteele09/studygroup-client/models"
	"github.com/jrsteele09/studygroup-client/state"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service loads and changes study groups through the authenticated client and mirrors the
// results into the groups slice.
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

// FetchExplore lists groups the user has not joined yet.
func (s *Service) FetchExplore(ctx context.Context) ([]models.Group, error) {
	groups, err := s.list(ctx, state.OpFetchGroups, apiclient.RouteGroups)
	if err != nil {
		return nil, err
	}
	s.store.Dispatch(state.ExploreGroupsLoaded{Groups: groups})
	return groups, nil
}

// FetchJoined lists groups the user is a member of.
func (s *Service) FetchJoined(ctx context.Context) ([]models.Group, error) {
	groups, err := s.list(ctx, state.OpFetchJoinedGroups, apiclient.RouteMyGroups)
	if err != nil {
		return nil, err
	}
	s.store.Dispatch(state.JoinedGroupsLoaded{Groups: groups})
	return groups, nil
}

// FetchAdmin lists groups the user owns.
func (s *Service) FetchAdmin(ctx context.Context) ([]models.Group, error) {
	groups, err := s.list(ctx, state.OpFetchAdminGroups, apiclient.RouteMyAdminGroups)
	if err != nil {
		return nil, err
	}
	s.store.Dispatch(state.AdminGroupsLoaded{Groups: groups})
	return groups, nil
}

func (s *Service) list(ctx context.Context, op, route string) ([]models.Group, error) {
	s.store.Dispatch(state.GroupsPending{Op: op})
	groups, err := apiclient.DoJSON[[]models.Group](ctx, s.client, apiclient.NewRequest(http.MethodGet, route, nil))
	if err != nil {
		return nil, s.reject(op, err)
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// Create makes a new group owned by the user.
func (s *Service) Create(ctx context.Context, in models.NewGroup) (*models.Group, error) {
	s.store.Dispatch(state.GroupsPending{Op: state.OpCreateGroup})
	if err := s.validate.Check(in); err != nil {
		return nil, s.reject(state.OpCreateGroup, err)
	}

	group, err := apiclient.DoJSON[models.Group](ctx, s.client, apiclient.NewRequest(http.MethodPost, apiclient.RouteGroups, in))
	if err != nil {
		return nil, s.reject(state.OpCreateGroup, err)
	}
	s.store.Dispatch(state.GroupCreated{Group: group})
	return &group, nil
}

// Join adds the user to the group; on success the group moves from Explore to Joined.
func (s *Service) Join(ctx context.Context, id int64) error {
	s.store.Dispatch(state.GroupsPending{Op: state.OpJoinGroup})
	if _, err := s.client.Do(ctx, apiclient.NewRequest(http.MethodPost, apiclient.RouteGroupJoin(id), nil)); err != nil {
		return s.reject(state.OpJoinGroup, err)
	}
	s.store.Dispatch(state.GroupJoined{ID: id})
	return nil
}

// Leave removes the user from the group; on success the group moves from Joined to Explore.
func (s *Service) Leave(ctx context.Context, id int64) error {
	s.store.Dispatch(state.GroupsPending{Op: state.OpLeaveGroup})
	if _, err := s.client.Do(ctx, apiclient.NewRequest(http.MethodPost, apiclient.RouteGroupLeave(id), nil)); err != nil {
		return s.reject(state.OpLeaveGroup, err)
	}
	s.store.Dispatch(state.GroupLeft{ID: id})
	return nil
}

func (s *Service) Select(g *models.Group) {
	s.store.Dispatch(state.SetSelectedGroup{Group: g})
}

func (s *Service) Clear() {
	s.store.Dispatch(state.ClearGroups{})
}

func (s *Service) ClearError() {
	s.store.Dispatch(state.ClearGroupsError{})
}

func (s *Service) reject(op string, err error) error {
	log.Err(err).Str("op", op).Msg("Groups action failed")
	s.store.Dispatch(state.GroupsRejected{
		Op:  op,
		Err: &state.ActionError{Op: op, Message: apiclient.Message(err), Err: err},
	})
	return err
}
