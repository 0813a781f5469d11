package sessions_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/studygroup-client/apiclient"
	"github.com/jrsteele09/studygroup-client/groups"
	apierrors "github.com/jrsteele09/studygroup-client/internal/errors"
	"github.com/jrsteele09/studygroup-client/internal/stubbackend/stubtest"
	"github.com/jrsteele09/studygroup-client/models"
	"github.com/jrsteele09/studygroup-client/sessions"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env      *stubtest.Env
	groups   *groups.Service
	sessions *sessions.Service
	groupID  int64
}

// setup creates a group owned by alice that bob has joined; alice is logged in.
func setup(t *testing.T) *fixture {
	t.Helper()
	env := stubtest.New(t)
	env.User(t, "alice", "alice@example.com", "secret")
	env.User(t, "bob", "bob@example.com", "secret")

	groupsSvc, err := groups.NewService(env.Client, env.State)
	require.NoError(t, err)
	sessionsSvc, err := sessions.NewService(env.Client, env.State)
	require.NoError(t, err)

	env.Login(t, "alice", "secret")
	g, err := groupsSvc.Create(context.Background(), models.NewGroup{Name: "Databases"})
	require.NoError(t, err)

	env.Login(t, "bob", "secret")
	require.NoError(t, groupsSvc.Join(context.Background(), g.ID))

	env.Login(t, "alice", "secret")
	return &fixture{env: env, groups: groupsSvc, sessions: sessionsSvc, groupID: g.ID}
}

func TestCreateListAndFilter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.sessions.Create(ctx, models.NewSession{GroupID: f.groupID, Title: "Indexes", Date: "2026-03-01", Time: "18:00"})
	require.NoError(t, err)
	_, err = f.sessions.Create(ctx, models.NewSession{GroupID: f.groupID, Title: "Joins", Date: "2026-03-08"})
	require.NoError(t, err)
	require.Len(t, f.env.State.Snapshot().Sessions.Sessions, 2)

	all, err := f.sessions.List(ctx, models.SessionFilter{GroupID: f.groupID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Indexes", all[0].Title)
	require.Equal(t, "alice", all[0].CreatedBy)

	byDate, err := f.sessions.List(ctx, models.SessionFilter{Date: "2026-03-08"})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	require.Equal(t, "Joins", byDate[0].Title)
	require.Equal(t, byDate, f.env.State.Snapshot().Sessions.Sessions)
}

func TestCreateRequiresTitle(t *testing.T) {
	f := setup(t)
	_, err := f.sessions.Create(context.Background(), models.NewSession{GroupID: f.groupID})
	require.ErrorIs(t, err, apierrors.ErrInvalidInput)
	require.Zero(t, f.env.Backend.Calls("POST "+apiclient.RouteSessions))
	require.Equal(t, "title: This field is required.", f.env.State.Snapshot().Sessions.Error.Message)

	_, err = f.sessions.Create(context.Background(), models.NewSession{})
	require.Error(t, err)
	require.Equal(t, "group: This field is required.; title: This field is required.", f.env.State.Snapshot().Sessions.Error.Message)
}

func TestGetSelectsSession(t *testing.T) {
	f := setup(t)
	created, err := f.sessions.Create(context.Background(), models.NewSession{GroupID: f.groupID, Title: "Indexes"})
	require.NoError(t, err)

	got, err := f.sessions.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Title, got.Title)
	require.Equal(t, created.ID, f.env.State.Snapshot().Sessions.Selected.ID)

	_, err = f.sessions.Get(context.Background(), 424242)
	require.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
}

func TestDeleteIsAdminOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.sessions.Create(ctx, models.NewSession{GroupID: f.groupID, Title: "Indexes"})
	require.NoError(t, err)
	_, err = f.sessions.Get(ctx, created.ID)
	require.NoError(t, err)

	f.env.Login(t, "bob", "secret")
	err = f.sessions.Delete(ctx, created.ID)
	require.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))
	require.Equal(t, "You do not have permission to perform this action.", f.env.State.Snapshot().Sessions.Error.Message)
	require.Len(t, f.env.State.Snapshot().Sessions.Sessions, 1)

	f.env.Login(t, "alice", "secret")
	require.NoError(t, f.sessions.Delete(ctx, created.ID))
	ss := f.env.State.Snapshot().Sessions
	require.Empty(t, ss.Sessions)
	require.Nil(t, ss.Selected)
	require.Nil(t, ss.Error)
}

func TestListWithoutCredentialsRedirects(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.env.Creds.Clear(context.Background()))

	_, err := f.sessions.List(context.Background(), models.SessionFilter{})
	require.True(t, apiclient.IsUnauthorized(err))
	require.Equal(t, 1, f.env.Redirector.Redirects())
	require.Zero(t, f.env.Backend.RefreshCalls())
}
