package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dbsandbox/internal/log"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/storage/memory"
)

func sandboxFixture(id string, port int) model.Sandbox {
	return model.Sandbox{
		ID:        id,
		Port:      port,
		BaseDir:   "/tmp/sandboxes/" + id,
		Status:    model.SandboxStatusDeployed,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRepositoryCRUD(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  error
	}{
		"Creating a sandbox should work.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)))

				got, err := repo.GetSandbox(ctx, 3310)
				require.NoError(t, err)
				assert.Equal(t, "id-1", got.ID)
				assert.Equal(t, model.SandboxStatusDeployed, got.Status)
				return nil
			},
		},

		"Creating a sandbox on a used port should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)))
				return repo.CreateSandbox(ctx, sandboxFixture("id-2", 3310))
			},
			expErr: model.ErrAlreadyExists,
		},

		"Creating a sandbox with a used ID should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)))
				return repo.CreateSandbox(ctx, sandboxFixture("id-1", 3320))
			},
			expErr: model.ErrAlreadyExists,
		},

		"Creating an invalid sandbox should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.CreateSandbox(ctx, sandboxFixture("id-1", 9000))
			},
			expErr: model.ErrNotValid,
		},

		"Getting a missing sandbox should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				_, err := repo.GetSandbox(ctx, 3310)
				return err
			},
			expErr: model.ErrNotFound,
		},

		"Listing sandboxes should return them ordered by port.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-3", 3330)))
				require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)))
				require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-2", 3320)))

				all, err := repo.ListSandboxes(ctx)
				require.NoError(t, err)
				require.Len(t, all, 3)
				assert.Equal(t, 3310, all[0].Port)
				assert.Equal(t, 3320, all[1].Port)
				assert.Equal(t, 3330, all[2].Port)
				return nil
			},
		},

		"Updating a sandbox should store the new status.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				sb := sandboxFixture("id-1", 3310)
				require.NoError(t, repo.CreateSandbox(ctx, sb))

				now := time.Now().UTC()
				sb.Status = model.SandboxStatusRunning
				sb.StartedAt = &now
				require.NoError(t, repo.UpdateSandbox(ctx, sb))

				got, err := repo.GetSandbox(ctx, 3310)
				require.NoError(t, err)
				assert.Equal(t, model.SandboxStatusRunning, got.Status)
				require.NotNil(t, got.StartedAt)
				return nil
			},
		},

		"Updating a missing sandbox should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.UpdateSandbox(ctx, sandboxFixture("id-1", 3310))
			},
			expErr: model.ErrNotFound,
		},

		"Deleting a sandbox should remove it.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)))
				require.NoError(t, repo.DeleteSandbox(ctx, 3310))

				_, err := repo.GetSandbox(ctx, 3310)
				assert.True(t, errors.Is(err, model.ErrNotFound))
				return nil
			},
		},

		"Deleting a missing sandbox should fail.": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.DeleteSandbox(ctx, 3310)
			},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
			require.NoError(t, err)

			err = test.actions(context.Background(), t, repo)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	require.NoError(t, repo.CreateSandbox(ctx, sandboxFixture("id-1", 3310)))

	got, err := repo.GetSandbox(ctx, 3310)
	require.NoError(t, err)
	got.Status = model.SandboxStatusKilled

	again, err := repo.GetSandbox(ctx, 3310)
	require.NoError(t, err)
	assert.Equal(t, model.SandboxStatusDeployed, again.Status)
}
