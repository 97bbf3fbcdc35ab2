package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/storage/sqlite"
)

func sandboxFixture(id string, port int) model.Sandbox {
	return model.Sandbox{
		ID:        id,
		Port:      port,
		BaseDir:   filepath.Join("/tmp/sandboxes", id),
		Status:    model.SandboxStatusDeployed,
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestNewRepositoryRequiresPath(t *testing.T) {
	_, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{})
	assert.Error(t, err)
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	sb := sandboxFixture("id-1", 3310)
	require.NoError(t, repo.CreateSandbox(ctx, sb))

	got, err := repo.GetSandbox(ctx, 3310)
	require.NoError(t, err)
	assert.Equal(t, sb, *got)

	started := time.Unix(1700000100, 0).UTC()
	sb.Status = model.SandboxStatusRunning
	sb.StartedAt = &started
	require.NoError(t, repo.UpdateSandbox(ctx, sb))

	got, err = repo.GetSandbox(ctx, 3310)
	require.NoError(t, err)
	assert.Equal(t, model.SandboxStatusRunning, got.Status)
	require.NotNil(t, got.StartedAt)
	assert.Equal(t, started, *got.StartedAt)
	assert.Nil(t, got.StoppedAt)

	require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-0", 3300)))
	all, err := repo.ListSandboxes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 3300, all[0].Port)
	assert.Equal(t, 3310, all[1].Port)

	require.NoError(t, repo.DeleteSandbox(ctx, 3310))
	_, err = repo.GetSandbox(ctx, 3310)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryConstraints(t *testing.T) {
	tests := map[string]struct {
		run    func(ctx context.Context, repo *sqlite.Repository) error
		expErr error
	}{
		"A duplicated port should fail.": {
			run: func(ctx context.Context, repo *sqlite.Repository) error {
				if err := repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)); err != nil {
					return err
				}
				return repo.CreateSandbox(ctx, sandboxFixture("id-2", 3310))
			},
			expErr: model.ErrAlreadyExists,
		},

		"A duplicated ID should fail.": {
			run: func(ctx context.Context, repo *sqlite.Repository) error {
				if err := repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)); err != nil {
					return err
				}
				return repo.CreateSandbox(ctx, sandboxFixture("id-1", 3320))
			},
			expErr: model.ErrAlreadyExists,
		},

		"An invalid sandbox should fail.": {
			run: func(ctx context.Context, repo *sqlite.Repository) error {
				sb := sandboxFixture("id-1", 3310)
				sb.Status = "lost"
				return repo.CreateSandbox(ctx, sb)
			},
			expErr: model.ErrNotValid,
		},

		"Updating a missing sandbox should fail.": {
			run: func(ctx context.Context, repo *sqlite.Repository) error {
				return repo.UpdateSandbox(ctx, sandboxFixture("id-1", 3310))
			},
			expErr: model.ErrNotFound,
		},

		"Deleting a missing sandbox should fail.": {
			run: func(ctx context.Context, repo *sqlite.Repository) error {
				return repo.DeleteSandbox(ctx, 3310)
			},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			err := test.run(context.Background(), repo)
			assert.ErrorIs(t, err, test.expErr)
		})
	}
}

func TestRepositoryPersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "registry.db")

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)))
	require.NoError(t, repo.Close())

	repo, err = sqlite.NewRepository(ctx, sqlite.RepositoryConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.GetSandbox(ctx, 3310)
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
}
