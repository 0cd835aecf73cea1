// Package response renders the JSON bodies of the authentication endpoints.
package response

import (
	"net/http"

	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/errors"
	"authgate/internal/usecase"

	"github.com/labstack/echo/v4"
)

// TokenResponse is the body of every operation that logs the user in
type TokenResponse struct {
	Msg          string `json:"msg"`
	Username     string `json:"username"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// AckResponse acknowledges an operation without issuing tokens
type AckResponse struct {
	Msg string `json:"msg"`
}

// MessageResponse is used by the authentication gate and the is-authenticated query
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the rejection body. Messages is omitted unless the error
// carries per-field messages; an empty set still renders as {}.
type ErrorResponse struct {
	Error    string `json:"error"`
	Messages any    `json:"messages,omitempty"`
}

// Tokens renders a token payload
func Tokens(c echo.Context, statusCode int, out *usecase.TokenOutput) error {
	return c.JSON(statusCode, TokenResponse{
		Msg:          out.Message,
		Username:     out.Username,
		Token:        out.AccessToken,
		RefreshToken: out.RefreshToken,
	})
}

// Ack renders {msg}
func Ack(c echo.Context, out *usecase.MessageOutput) error {
	return c.JSON(http.StatusOK, AckResponse{Msg: out.Message})
}

// Message renders {message}
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageResponse{Message: message})
}

// Error renders {error[, messages]}
func Error(c echo.Context, statusCode int, message string, fields map[string][]string) error {
	body := ErrorResponse{Error: message}
	if fields != nil {
		body.Messages = fields
	}

	return c.JSON(statusCode, body)
}

// InternalServerError returns a 500 error
func InternalServerError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "Internal server error", nil)
}

// Unauthenticated renders the gate's rejection
func Unauthenticated(c echo.Context) error {
	return Message(c, domainerrors.ErrNotLoggedIn.HTTPCode(), domainerrors.ErrNotLoggedIn.Message())
}

// HandleAppError renders domain errors and hands anything else to the echo error handler
func HandleAppError(c echo.Context, err error) error {
	if errors.Is(err, domainerrors.ErrNotLoggedIn) {
		return Unauthenticated(c)
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode() < http.StatusInternalServerError {
		return Error(c, appErr.HTTPCode(), appErr.Message(), appErr.Fields())
	}

	return errors.WithStack(err)
}
