// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"authgate/internal/domain/entity"

	"github.com/google/uuid"
)

// Messages returned in successful payloads.
const (
	MsgLoggedIn           = "You are logged in."
	MsgTokenRefreshed     = "Token Refreshed"
	MsgEmailConfirmed     = "Email confirmed!  You are logged in"
	MsgPasswordReset      = "Password reset!  You are logged in"
	MsgResetRequested     = "An email has been sent to the username or email that you submitted"
	MsgAuthenticated      = "Yep! You are logged in!"
	MsgRegistered         = "Welcome! Please confirm your email"
	MsgConfirmationResent = "A confirmation email has been sent"
)

// --- Input DTOs ---

// LoginInput identifies the user by username or email.
type LoginInput struct {
	Login    string
	Password string
}

// RefreshTokenInput carries the refresh token presented by the client.
type RefreshTokenInput struct {
	RefreshToken string
}

// ConfirmEmailInput carries the user id and the code from the confirmation email.
type ConfirmEmailInput struct {
	UserID string
	Code   string
}

// RequestPasswordResetInput identifies the user by username or email.
type RequestPasswordResetInput struct {
	Login string
}

// ResetPasswordInput sets a new password using a reset code. An empty
// PasswordConfirmation is not compared.
type ResetPasswordInput struct {
	Login                string
	Code                 string
	Password             string
	PasswordConfirmation string
}

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

// --- Output DTOs ---

// TokenOutput is the payload of every operation that logs the user in.
type TokenOutput struct {
	Message      string
	Username     string
	AccessToken  string
	RefreshToken string
}

// MessageOutput is an acknowledgement without tokens.
type MessageOutput struct {
	Message string
}

// Principal is the authenticated caller resolved by the request gate.
type Principal struct {
	UserID   uuid.UUID
	Username string
	User     *entity.User
}

// AuthUsecase defines the authentication operations exposed to the delivery layer.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*TokenOutput, error)
	Login(ctx context.Context, input *LoginInput) (*TokenOutput, error)
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*TokenOutput, error)
	ConfirmEmail(ctx context.Context, input *ConfirmEmailInput) (*TokenOutput, error)
	RequestPasswordReset(ctx context.Context, input *RequestPasswordResetInput) (*MessageOutput, error)
	ResetPassword(ctx context.Context, input *ResetPasswordInput) (*TokenOutput, error)

	// RequestEmailConfirmation issues a fresh confirmation code to the principal.
	RequestEmailConfirmation(ctx context.Context, principal *Principal) (*MessageOutput, error)

	// IsAuthenticated acknowledges a principal that already passed the gate.
	IsAuthenticated(ctx context.Context, principal *Principal) (*MessageOutput, error)

	// Authenticate resolves a bearer access token to a principal, or returns ErrNotLoggedIn.
	Authenticate(ctx context.Context, accessToken string) (*Principal, error)
}
