//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"authgate/internal/domain/entity"
	"authgate/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("authgate"),
		tcpostgres.WithUsername("authgate"),
		tcpostgres.WithPassword("authgate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, sqlDB))

	return db
}

func TestUserRepository_Postgres(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &entity.User{Username: "Jane", Email: "Jane@Example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, int64(1), user.Version)

	t.Run("lookups", func(t *testing.T) {
		byID, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane", byID.Username)
		assert.Nil(t, byID.EmailConfirmation)

		_, err = repo.FindByUsername(ctx, "jane")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)

		byEmail, err := repo.FindByEmail(ctx, "jane@example.COM")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("duplicates", func(t *testing.T) {
		err := repo.Create(ctx, &entity.User{Username: "Jane", Email: "other@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, repository.ErrDuplicateUser)

		err = repo.Create(ctx, &entity.User{Username: "john", Email: "JANE@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, repository.ErrDuplicateUser)
	})

	t.Run("save round-trips codes and bumps version", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)

		issuedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
		loaded.PasswordReset = &entity.VerificationCode{Hash: "digest", IssuedAt: issuedAt}
		require.NoError(t, repo.Save(ctx, loaded))
		assert.Equal(t, int64(2), loaded.Version)

		stored, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.PasswordReset)
		assert.Equal(t, "digest", stored.PasswordReset.Hash)
		assert.WithinDuration(t, issuedAt, stored.PasswordReset.IssuedAt, 0)
		assert.Equal(t, int64(2), stored.Version)

		stored.PasswordReset = nil
		require.NoError(t, repo.Save(ctx, stored))

		cleared, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, cleared.PasswordReset)
	})

	t.Run("stale save conflicts", func(t *testing.T) {
		first, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, first))
		assert.ErrorIs(t, repo.Save(ctx, second), repository.ErrConflict)

		ghost := &entity.User{ID: uuid.New(), Username: "ghost", Email: "ghost@example.com", Version: 1}
		assert.ErrorIs(t, repo.Save(ctx, ghost), repository.ErrUserNotFound)
	})

	t.Run("concurrent saves have one winner", func(t *testing.T) {
		const writers = 8
		readers := make([]*entity.User, writers)
		for i := range readers {
			loaded, err := repo.FindByID(ctx, user.ID)
			require.NoError(t, err)
			readers[i] = loaded
		}

		errs := make([]error, writers)
		var wg sync.WaitGroup
		for i := range readers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.Save(ctx, readers[i])
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, repository.ErrConflict)
			}
		}
		assert.Equal(t, 1, winners)
	})
}
