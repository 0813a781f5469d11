package sqliterepo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/studygroup-client/credentials"
	"github.com/jrsteele09/studygroup-client/credentials/sqliterepo"
	"github.com/jrsteele09/studygroup-client/models"
	"github.com/stretchr/testify/require"
)

func TestRepoGetSetRemove(t *testing.T) {
	ctx := context.Background()
	repo, err := sqliterepo.Open(filepath.Join(t.TempDir(), "creds", "credentials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	_, ok, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Set(ctx, "k", "v1"))
	require.NoError(t, repo.Set(ctx, "k", "v2"))

	v, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)

	require.NoError(t, repo.Remove(ctx, "k", "missing"))
	_, ok, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCredentialsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	repo, err := sqliterepo.Open(path)
	require.NoError(t, err)
	store := credentials.NewStore(repo, "studygroup")
	require.NoError(t, store.Save(ctx, "a1", "r1", &models.User{Username: "erin"}, models.Profile{"email": "erin@x.io"}))
	require.NoError(t, repo.Close())

	reopened, err := sqliterepo.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	snap, err := credentials.NewStore(reopened, "studygroup").Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "a1", snap.AccessToken)
	require.Equal(t, "r1", snap.RefreshToken)
	require.Equal(t, "erin", snap.User.Username)
	require.Equal(t, "erin@x.io", snap.Profile.Email())
}
