package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"authgate/config"
	"authgate/internal/domain/entity"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"
	"authgate/internal/infra/auth"
	"authgate/internal/infra/persistence/memory"
	mockSvc "authgate/internal/mocks/service"
	"authgate/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{
			Access:  "access-secret-for-tests-only",
			Refresh: "refresh-secret-for-tests-only",
		},
		Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost},
	}
	cfg.ApplyDefaults()

	return cfg
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// noticeRecorder captures every notice handed to the mock notifier.
type noticeRecorder struct {
	mu      sync.Mutex
	notices []*service.VerificationNotice
}

func (r *noticeRecorder) record(_ context.Context, notice *service.VerificationNotice) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, notice)
}

func (r *noticeRecorder) last(t *testing.T) *service.VerificationNotice {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.notices, "no verification notice was published")

	return r.notices[len(r.notices)-1]
}

func (r *noticeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.notices)
}

// authFixtures wires the gateway against the in-memory store with real token,
// hashing and code implementations.
type authFixtures struct {
	service  usecase.AuthUsecase
	users    repository.UserRepository
	hasher   service.PasswordHasher
	tokens   service.TokenService
	codes    service.VerificationCodeGenerator
	clock    *fakeClock
	notifier *mockSvc.MockVerificationNotifier
	notices  *noticeRecorder
	cfg      *config.Config
}

func createTestAuthService(t *testing.T) authFixtures {
	t.Helper()

	cfg := newTestConfig()
	clock := newFakeClock()
	users := memory.NewUserRepository()
	tokens, err := auth.NewJWTService(cfg, clock)
	require.NoError(t, err)

	notices := &noticeRecorder{}
	notifier := mockSvc.NewMockVerificationNotifier(t)
	notifier.EXPECT().
		NotifyVerificationCode(mock.Anything, mock.AnythingOfType("*service.VerificationNotice")).
		Run(notices.record).
		Return(nil).
		Maybe()

	fx := authFixtures{
		users:    users,
		hasher:   auth.NewBcryptHasher(cfg),
		tokens:   tokens,
		codes:    auth.NewCodeGenerator(cfg),
		clock:    clock,
		notifier: notifier,
		notices:  notices,
		cfg:      cfg,
	}
	fx.service = NewAuthService(AuthServiceParams{
		UserRepo:     fx.users,
		Hasher:       fx.hasher,
		TokenService: fx.tokens,
		Codes:        fx.codes,
		Notifier:     fx.notifier,
		Clock:        fx.clock,
		Config:       cfg,
		Logger:       newDiscardLogger(),
	})

	return fx
}

// seedUser stores a user with the given password and returns the stored record.
func (fx authFixtures) seedUser(t *testing.T, username, email, password string) *entity.User {
	t.Helper()

	hash, err := fx.hasher.Hash(password)
	require.NoError(t, err)

	user := &entity.User{Username: username, Email: email, PasswordHash: hash}
	require.NoError(t, fx.users.Create(context.Background(), user))

	return user
}

func (fx authFixtures) reload(t *testing.T, user *entity.User) *entity.User {
	t.Helper()

	stored, err := fx.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)

	return stored
}
