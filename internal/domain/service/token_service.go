package service

import (
	"authgate/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind selects the signing domain of a token. Kinds never share a secret,
// so a token minted for one kind cannot verify as the other.
type TokenKind int

const (
	TokenKindAccess TokenKind = iota
	TokenKindRefresh
)

func (k TokenKind) String() string {
	switch k {
	case TokenKindAccess:
		return "access"
	case TokenKindRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Claims is the full token payload: {id, username, iss, exp}.
// It deliberately carries no token kind.
type Claims struct {
	UserID   uuid.UUID `json:"id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// RejectReason explains why a token failed verification.
type RejectReason string

const (
	RejectMalformed RejectReason = "malformed"
	RejectSignature RejectReason = "signature"
	RejectExpired   RejectReason = "expired"
)

// TokenVerification is the outcome of Verify: either Claims or a Reason.
type TokenVerification struct {
	Claims *Claims
	Reason RejectReason
}

// Valid reports whether the token was accepted.
func (v TokenVerification) Valid() bool {
	return v.Claims != nil
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue signs a token of the given kind for user.
	Issue(kind TokenKind, user *entity.User) (string, error)

	// Verify checks signature and expiry under kind's secret. Failures are reported
	// through the returned value, never as an error.
	Verify(kind TokenKind, token string) TokenVerification

	// GenerateTokens issues an access and refresh token pair for user.
	GenerateTokens(user *entity.User) (accessToken string, refreshToken string, err error)
}
