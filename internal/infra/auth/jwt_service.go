// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authgate/config"
	"authgate/internal/domain/entity"
	"authgate/internal/domain/service"
	"authgate/internal/errors"
)

// signingDomain is the secret and lifetime of one token kind.
type signingDomain struct {
	secret []byte
	ttl    time.Duration
}

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	issuer  string
	access  signingDomain
	refresh signingDomain
	clock   service.Clock
	parser  *jwt.Parser
}

// NewJWTService is the constructor for jwtService.
// It expects cfg to have passed ApplyDefaults.
func NewJWTService(cfg *config.Config, clock service.Clock) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}
	if cfg.SecretKey.Access == cfg.SecretKey.Refresh {
		return nil, errors.New("jwt secrets must differ between access and refresh tokens")
	}
	if cfg.Auth == nil {
		return nil, errors.New("auth configuration must be provided")
	}

	s := &jwtService{
		issuer:  cfg.Auth.Issuer,
		access:  signingDomain{secret: []byte(cfg.SecretKey.Access), ttl: cfg.Auth.AccessTokenTTL},
		refresh: signingDomain{secret: []byte(cfg.SecretKey.Refresh), ttl: cfg.Auth.RefreshTokenTTL},
		clock:   clock,
	}
	// No leeway: a token is rejected from its exp second onwards.
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(clock.Now),
	)

	return s, nil
}

func (s *jwtService) domain(kind service.TokenKind) (signingDomain, error) {
	switch kind {
	case service.TokenKindAccess:
		return s.access, nil
	case service.TokenKindRefresh:
		return s.refresh, nil
	default:
		return signingDomain{}, errors.Errorf("unknown token kind %d", kind)
	}
}

// Issue signs {id, username, iss, exp} with kind's secret.
func (s *jwtService) Issue(kind service.TokenKind, user *entity.User) (string, error) {
	d, err := s.domain(kind)
	if err != nil {
		return "", err
	}

	claims := service.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(d.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign %s token", kind)
	}

	return signed, nil
}

// GenerateTokens creates a new access token and refresh token for a given user.
func (s *jwtService) GenerateTokens(user *entity.User) (accessToken string, refreshToken string, err error) {
	accessToken, err = s.Issue(service.TokenKindAccess, user)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.Issue(service.TokenKindRefresh, user)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// Verify decodes token under kind's secret and reports why it was rejected, if it was.
func (s *jwtService) Verify(kind service.TokenKind, token string) service.TokenVerification {
	token = strings.TrimSpace(token)
	if token == "" {
		return service.TokenVerification{Reason: service.RejectMalformed}
	}

	d, err := s.domain(kind)
	if err != nil {
		return service.TokenVerification{Reason: service.RejectMalformed}
	}

	claims := &service.Claims{}
	_, err = s.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return d.secret, nil
	})
	if err != nil {
		return service.TokenVerification{Reason: rejectReason(err)}
	}

	return service.TokenVerification{Claims: claims}
}

func rejectReason(err error) service.RejectReason {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return service.RejectSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.RejectExpired
	default:
		return service.RejectMalformed
	}
}
