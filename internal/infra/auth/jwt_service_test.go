package auth

import (
	"sync"
	"testing"
	"time"

	"authgate/config"
	"authgate/internal/domain/entity"
	"authgate/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func newTestJWTConfig() *config.Config {
	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{
			Access:  "test_access_secret_key_very_long_for_testing",
			Refresh: "test_refresh_secret_key_very_long_for_testing",
		},
	}
	cfg.ApplyDefaults()

	return cfg
}

func newTestJWTService(t *testing.T) (service.TokenService, *stubClock) {
	t.Helper()

	clock := &stubClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := NewJWTService(newTestJWTConfig(), clock)
	require.NoError(t, err)

	return svc, clock
}

func newTestUser() *entity.User {
	return &entity.User{ID: uuid.New(), Username: "jane", Email: "jane@example.com"}
}

func TestJWTService_GenerateAndVerifyTokens(t *testing.T) {
	svc, clock := newTestJWTService(t)
	user := newTestUser()

	accessToken, refreshToken, err := svc.GenerateTokens(user)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	access := svc.Verify(service.TokenKindAccess, accessToken)
	require.True(t, access.Valid())
	assert.Equal(t, user.ID, access.Claims.UserID)
	assert.Equal(t, "jane", access.Claims.Username)
	assert.Equal(t, "yarras.apps.griffithnet.com", access.Claims.Issuer)
	assert.WithinDuration(t, clock.Now().Add(time.Hour), access.Claims.ExpiresAt.Time, 0)

	refresh := svc.Verify(service.TokenKindRefresh, refreshToken)
	require.True(t, refresh.Valid())
	assert.Equal(t, user.ID, refresh.Claims.UserID)
	assert.WithinDuration(t, clock.Now().Add(24*time.Hour), refresh.Claims.ExpiresAt.Time, 0)
}

func TestJWTService_CrossKindRejected(t *testing.T) {
	svc, _ := newTestJWTService(t)

	accessToken, refreshToken, err := svc.GenerateTokens(newTestUser())
	require.NoError(t, err)

	asAccess := svc.Verify(service.TokenKindAccess, refreshToken)
	assert.False(t, asAccess.Valid())
	assert.Equal(t, service.RejectSignature, asAccess.Reason)

	asRefresh := svc.Verify(service.TokenKindRefresh, accessToken)
	assert.False(t, asRefresh.Valid())
	assert.Equal(t, service.RejectSignature, asRefresh.Reason)
}

func TestJWTService_ExpiryHasNoLeeway(t *testing.T) {
	svc, clock := newTestJWTService(t)

	token, err := svc.Issue(service.TokenKindAccess, newTestUser())
	require.NoError(t, err)

	clock.Advance(time.Hour - time.Second)
	assert.True(t, svc.Verify(service.TokenKindAccess, token).Valid(), "one second before exp")

	clock.Advance(time.Second)
	atExp := svc.Verify(service.TokenKindAccess, token)
	assert.False(t, atExp.Valid(), "at exp")
	assert.Equal(t, service.RejectExpired, atExp.Reason)

	clock.Advance(time.Minute)
	assert.Equal(t, service.RejectExpired, svc.Verify(service.TokenKindAccess, token).Reason)
}

func TestJWTService_MalformedTokens(t *testing.T) {
	svc, _ := newTestJWTService(t)

	for _, token := range []string{"", "   ", "clearly-not-a-jwt-token-format", "a.b.c"} {
		got := svc.Verify(service.TokenKindAccess, token)
		assert.False(t, got.Valid(), token)
		assert.Equal(t, service.RejectMalformed, got.Reason, token)
	}
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	svc, clock := newTestJWTService(t)

	claims := service.Claims{
		UserID:   uuid.New(),
		Username: "mallory",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "yarras.apps.griffithnet.com",
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.False(t, svc.Verify(service.TokenKindAccess, unsigned).Valid())
}

func TestJWTService_RejectsMissingExpiry(t *testing.T) {
	svc, _ := newTestJWTService(t)
	cfg := newTestJWTConfig()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{UserID: uuid.New()}).
		SignedString([]byte(cfg.SecretKey.Access))
	require.NoError(t, err)

	assert.False(t, svc.Verify(service.TokenKindAccess, token).Valid())
}

func TestJWTService_ClaimPayloadShape(t *testing.T) {
	svc, _ := newTestJWTService(t)

	token, err := svc.Issue(service.TokenKindAccess, newTestUser())
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"id", "username", "iss", "exp"}, keys)
	assert.IsType(t, float64(0), claims["exp"])
}

func TestJWTService_ConfigErrors(t *testing.T) {
	clock := &stubClock{now: time.Now()}

	_, err := NewJWTService(&config.Config{}, clock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secrets must be provided")

	shared := newTestJWTConfig()
	shared.SecretKey.Refresh = shared.SecretKey.Access
	_, err = NewJWTService(shared, clock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")

	noAuth := newTestJWTConfig()
	noAuth.Auth = nil
	_, err = NewJWTService(noAuth, clock)
	assert.Error(t, err)
}
