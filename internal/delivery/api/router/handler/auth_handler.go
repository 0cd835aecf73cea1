package handler

import (
	"log/slog"
	"net/http"

	"authgate/internal/delivery/api/response"
	"authgate/internal/delivery/api/validator"
	deliverycontext "authgate/internal/delivery/context"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/errors"
	"authgate/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler serves the session and recovery endpoints.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// LoginRequest identifies the user by username or email in the username field
type LoginRequest struct {
	Username string `json:"username" query:"username" form:"username"`
	Password string `json:"password" query:"password" form:"password"`
}

// RefreshTokenRequest carries a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" query:"refresh_token" form:"refresh_token"`
}

// ConfirmEmailRequest carries the values from the confirmation email
type ConfirmEmailRequest struct {
	UID  string `json:"uid" query:"uid" form:"uid"`
	Code string `json:"code" query:"code" form:"code"`
}

// RequestPasswordResetRequest identifies the user by username or email
type RequestPasswordResetRequest struct {
	Username string `json:"username" query:"username" form:"username"`
}

// ResetPasswordRequest sets a new password with a reset code
type ResetPasswordRequest struct {
	Username             string `json:"username" query:"username" form:"username"`
	Code                 string `json:"code" query:"code" form:"code"`
	Password             string `json:"password" query:"password" form:"password"`
	PasswordConfirmation string `json:"password_confirmation" query:"password_confirmation" form:"password_confirmation"`
}

// RegisterRequest represents the request body for registering a user
type RegisterRequest struct {
	Username             string `json:"username" form:"username" validate:"required,max=100"`
	Email                string `json:"email" form:"email" validate:"required,email,max=255"`
	Password             string `json:"password" form:"password" validate:"required,max=72"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" validate:"required,eqfield=Password"`
}

// bindRequest reads query parameters and then the body, so a POST carrying
// its values in the query string binds the same as a GET.
func bindRequest(c echo.Context, dst any) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindQueryParams(c, dst); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(binder.BindBody(c, dst))
}

func (h *AuthHandler) logBindFailure(c echo.Context, err error) {
	deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Debug("Failed to bind request",
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
}

// bindFailed renders the operation's own rejection for input that would not bind.
func (h *AuthHandler) bindFailed(c echo.Context, err error, rejection error) error {
	h.logBindFailure(c, err)

	return response.HandleAppError(c, rejection)
}

// Login handles username-or-email and password login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindRequest(c, &req); err != nil {
		return h.bindFailed(c, err, domainerrors.ErrInvalidCredentials.WithFields(nil))
	}

	out, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Login:    req.Username,
		Password: req.Password,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Tokens(c, http.StatusOK, out)
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := bindRequest(c, &req); err != nil {
		return h.bindFailed(c, err, domainerrors.ErrTokenRejected)
	}

	out, err := h.authUC.RefreshToken(c.Request().Context(), &usecase.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Tokens(c, http.StatusOK, out)
}

// ConfirmEmail consumes an email-confirmation code and logs the user in
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	var req ConfirmEmailRequest
	if err := bindRequest(c, &req); err != nil {
		return h.bindFailed(c, err, domainerrors.ErrConfirmationRejected)
	}

	out, err := h.authUC.ConfirmEmail(c.Request().Context(), &usecase.ConfirmEmailInput{
		UserID: req.UID,
		Code:   req.Code,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Tokens(c, http.StatusOK, out)
}

// RequestPasswordReset acknowledges every request alike
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req RequestPasswordResetRequest
	if err := bindRequest(c, &req); err != nil {
		h.logBindFailure(c, err)

		return response.Ack(c, &usecase.MessageOutput{Message: usecase.MsgResetRequested})
	}

	out, err := h.authUC.RequestPasswordReset(c.Request().Context(), &usecase.RequestPasswordResetInput{
		Login: req.Username,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Ack(c, out)
}

// ResetPassword consumes a password-reset code and sets the new password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindRequest(c, &req); err != nil {
		return h.bindFailed(c, err, domainerrors.ErrNewPasswordRejected)
	}

	out, err := h.authUC.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Login:                req.Username,
		Code:                 req.Code,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Tokens(c, http.StatusOK, out)
}

// IsAuthenticated answers for callers that passed the gate
func (h *AuthHandler) IsAuthenticated(c echo.Context) error {
	principal, _ := deliverycontext.GetPrincipal(c)

	out, err := h.authUC.IsAuthenticated(c.Request().Context(), principal)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Message(c, http.StatusOK, out.Message)
}

// Register creates a user and sends the first confirmation code
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return h.bindFailed(c, err, domainerrors.ErrRegistrationRejected.WithFields(nil))
	}

	if err := c.Validate(&req); err != nil {
		fields := validator.FieldMessages(err)
		if fields == nil {
			return errors.WithStack(err)
		}

		return response.HandleAppError(c, domainerrors.ErrRegistrationRejected.WithFields(fields))
	}

	out, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Tokens(c, http.StatusCreated, out)
}

// RequestEmailConfirmation sends a fresh confirmation code to the caller
func (h *AuthHandler) RequestEmailConfirmation(c echo.Context) error {
	principal, _ := deliverycontext.GetPrincipal(c)

	out, err := h.authUC.RequestEmailConfirmation(c.Request().Context(), principal)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Ack(c, out)
}
