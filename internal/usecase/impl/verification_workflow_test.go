package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"authgate/internal/domain/entity"
	"authgate/internal/domain/repository"
	"authgate/internal/infra/auth"
	"authgate/internal/infra/persistence/memory"
	mockRepo "authgate/internal/mocks/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testMaxAge = 4 * time.Hour

type workflowFixtures struct {
	workflow *VerificationWorkflow
	users    repository.UserRepository
	clock    *fakeClock
	user     *entity.User
}

func createTestWorkflow(t *testing.T, slot CodeSlot) workflowFixtures {
	t.Helper()

	users := memory.NewUserRepository()
	clock := newFakeClock()
	user := &entity.User{Username: "jane", Email: "jane@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(context.Background(), user))

	return workflowFixtures{
		workflow: NewVerificationWorkflow(
			entity.CodePurposePasswordReset,
			slot,
			testMaxAge,
			users,
			auth.NewCodeGenerator(newTestConfig()),
			clock,
		),
		users: users,
		clock: clock,
		user:  user,
	}
}

func (fx workflowFixtures) stored(t *testing.T) *entity.User {
	t.Helper()

	user, err := fx.users.FindByID(context.Background(), fx.user.ID)
	require.NoError(t, err)

	return user
}

func TestVerificationWorkflow_IssueStoresDigestOnly(t *testing.T) {
	fx := createTestWorkflow(t, entity.PasswordResetSlot)

	code, err := fx.workflow.Issue(context.Background(), fx.user)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	stored := fx.stored(t)
	require.NotNil(t, stored.PasswordReset)
	assert.NotEqual(t, code, stored.PasswordReset.Hash)
	assert.NotContains(t, stored.PasswordReset.Hash, code)
	assert.Equal(t, fx.clock.Now(), stored.PasswordReset.IssuedAt)
	assert.Nil(t, stored.EmailConfirmation, "other slot untouched")
	assert.Equal(t, stored.Version, fx.user.Version, "caller's copy reflects the stored record")
}

func TestVerificationWorkflow_ReissueReplacesOutstandingCode(t *testing.T) {
	fx := createTestWorkflow(t, entity.PasswordResetSlot)
	ctx := context.Background()

	first, err := fx.workflow.Issue(ctx, fx.user)
	require.NoError(t, err)
	second, err := fx.workflow.Issue(ctx, fx.user)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	user := fx.stored(t)
	check, err := fx.workflow.ValidateAndConsume(ctx, user, first, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeMismatch, check)

	check, err = fx.workflow.ValidateAndConsume(ctx, user, second, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeAccepted, check)
}

func TestVerificationWorkflow_ExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    CodeCheck
	}{
		{name: "fresh", elapsed: 0, want: CodeAccepted},
		{name: "exactly max age", elapsed: testMaxAge, want: CodeAccepted},
		{name: "just past max age", elapsed: testMaxAge + time.Nanosecond, want: CodeExpired},
		{name: "long expired", elapsed: 30 * 24 * time.Hour, want: CodeExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestWorkflow(t, entity.PasswordResetSlot)
			ctx := context.Background()

			code, err := fx.workflow.Issue(ctx, fx.user)
			require.NoError(t, err)

			fx.clock.Advance(tt.elapsed)
			check, err := fx.workflow.ValidateAndConsume(ctx, fx.user, code, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, check)
		})
	}
}

func TestVerificationWorkflow_RejectionLeavesRecordUntouched(t *testing.T) {
	fx := createTestWorkflow(t, entity.PasswordResetSlot)
	ctx := context.Background()

	_, err := fx.workflow.Issue(ctx, fx.user)
	require.NoError(t, err)
	before := fx.stored(t)

	mutated := false
	check, err := fx.workflow.ValidateAndConsume(ctx, fx.user, "not-the-code", func(*entity.User) {
		mutated = true
	})
	require.NoError(t, err)
	assert.Equal(t, CodeMismatch, check)
	assert.False(t, mutated)
	assert.Equal(t, before, fx.stored(t))
	assert.NotNil(t, fx.user.PasswordReset)
}

func TestVerificationWorkflow_MissingCode(t *testing.T) {
	fx := createTestWorkflow(t, entity.PasswordResetSlot)

	check, err := fx.workflow.ValidateAndConsume(context.Background(), fx.user, "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, CodeMissing, check)
	assert.False(t, check.Accepted())
}

func TestVerificationWorkflow_CodeIsSingleUse(t *testing.T) {
	fx := createTestWorkflow(t, entity.PasswordResetSlot)
	ctx := context.Background()

	code, err := fx.workflow.Issue(ctx, fx.user)
	require.NoError(t, err)

	check, err := fx.workflow.ValidateAndConsume(ctx, fx.user, code, func(u *entity.User) {
		u.PasswordHash = "new-hash"
	})
	require.NoError(t, err)
	require.Equal(t, CodeAccepted, check)

	stored := fx.stored(t)
	assert.Nil(t, stored.PasswordReset, "hash and timestamp cleared together")
	assert.Equal(t, "new-hash", stored.PasswordHash, "mutation lands in the same save")

	check, err = fx.workflow.ValidateAndConsume(ctx, fx.user, code, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeMissing, check)
}

func TestVerificationWorkflow_StaleReadIsSuperseded(t *testing.T) {
	fx := createTestWorkflow(t, entity.PasswordResetSlot)
	ctx := context.Background()

	code, err := fx.workflow.Issue(ctx, fx.user)
	require.NoError(t, err)
	stale := fx.stored(t)

	check, err := fx.workflow.ValidateAndConsume(ctx, fx.user, code, nil)
	require.NoError(t, err)
	require.Equal(t, CodeAccepted, check)

	check, err = fx.workflow.ValidateAndConsume(ctx, stale, code, nil)
	require.NoError(t, err)
	assert.Equal(t, CodeSuperseded, check)
}

func TestVerificationWorkflow_ConcurrentConsumptionHasOneWinner(t *testing.T) {
	defer goleak.VerifyNone(t)

	fx := createTestWorkflow(t, entity.EmailConfirmationSlot)
	ctx := context.Background()

	code, err := fx.workflow.Issue(ctx, fx.user)
	require.NoError(t, err)

	const attempts = 16
	readers := make([]*entity.User, attempts)
	for i := range readers {
		readers[i] = fx.stored(t)
	}

	results := make([]CodeCheck, attempts)
	var wg sync.WaitGroup
	for i := range readers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = fx.workflow.ValidateAndConsume(ctx, readers[i], code, nil)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, check := range results {
		if check == CodeAccepted {
			accepted++
		} else {
			assert.Equal(t, CodeSuperseded, check)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Nil(t, fx.stored(t).EmailConfirmation)
}

func TestVerificationWorkflow_IssueRetriesOnConflict(t *testing.T) {
	users := mockRepo.NewMockUserRepository(t)
	clock := newFakeClock()
	ctx := context.Background()

	user := &entity.User{ID: uuid.New(), Username: "jane", Version: 1}
	fresh := &entity.User{ID: user.ID, Username: "jane", Email: "new@example.com", Version: 2}

	users.EXPECT().
		Save(ctx, mock.MatchedBy(func(u *entity.User) bool { return u.Version == 1 })).
		Return(repository.ErrConflict).
		Once()
	users.EXPECT().FindByID(ctx, user.ID).Return(fresh, nil).Once()
	users.EXPECT().
		Save(ctx, mock.MatchedBy(func(u *entity.User) bool { return u.Version == 2 })).
		Run(func(_ context.Context, u *entity.User) { u.Version++ }).
		Return(nil).
		Once()

	workflow := NewVerificationWorkflow(
		entity.CodePurposeEmailConfirmation,
		entity.EmailConfirmationSlot,
		testMaxAge,
		users,
		auth.NewCodeGenerator(newTestConfig()),
		clock,
	)

	code, err := workflow.Issue(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, int64(3), user.Version)
	assert.Equal(t, "new@example.com", user.Email, "concurrent write is kept")
	require.NotNil(t, user.EmailConfirmation)
}

func TestVerificationWorkflow_StorageFaultIsReported(t *testing.T) {
	users := mockRepo.NewMockUserRepository(t)
	clock := newFakeClock()
	ctx := context.Background()
	codes := auth.NewCodeGenerator(newTestConfig())

	code, digest, err := codes.Generate()
	require.NoError(t, err)
	user := &entity.User{
		ID:            uuid.New(),
		Version:       1,
		PasswordReset: &entity.VerificationCode{Hash: digest, IssuedAt: clock.Now()},
	}

	dbErr := errors.New("connection reset")
	users.EXPECT().Save(ctx, mock.AnythingOfType("*entity.User")).Return(dbErr)

	workflow := NewVerificationWorkflow(
		entity.CodePurposePasswordReset,
		entity.PasswordResetSlot,
		testMaxAge,
		users,
		codes,
		clock,
	)

	check, err := workflow.ValidateAndConsume(ctx, user, code, nil)
	require.ErrorIs(t, err, dbErr)
	assert.Equal(t, CodeUnchecked, check)
	assert.NotNil(t, user.PasswordReset, "caller's copy untouched on failure")

	_, err = workflow.Issue(ctx, user)
	assert.ErrorIs(t, err, dbErr)
}

func TestCodeCheck_String(t *testing.T) {
	assert.Equal(t, "accepted", CodeAccepted.String())
	assert.Equal(t, "superseded", CodeSuperseded.String())
	assert.Equal(t, "unchecked", CodeUnchecked.String())
	assert.Equal(t, "unknown", CodeCheck(42).String())
}
