// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	"authgate/config"
	deliverycontext "authgate/internal/delivery/context"
	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"
	"authgate/internal/errors"
	"authgate/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo          repository.UserRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	notifier          service.VerificationNotifier
	clock             service.Clock
	emailConfirmation *VerificationWorkflow
	passwordReset     *VerificationWorkflow
	logger            *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Codes        service.VerificationCodeGenerator
	Notifier     service.VerificationNotifier
	Clock        service.Clock
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. Both verification workflows
// are built here from the configured max ages.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	verification := params.Config.Verification

	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		notifier:     params.Notifier,
		clock:        params.Clock,
		emailConfirmation: NewVerificationWorkflow(
			entity.CodePurposeEmailConfirmation,
			entity.EmailConfirmationSlot,
			verification.EmailConfirmationMaxAge,
			params.UserRepo,
			params.Codes,
			params.Clock,
		),
		passwordReset: NewVerificationWorkflow(
			entity.CodePurposePasswordReset,
			entity.PasswordResetSlot,
			verification.PasswordResetMaxAge,
			params.UserRepo,
			params.Codes,
			params.Clock,
		),
		logger: params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a user, issues an email-confirmation code and logs the user in.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.TokenOutput, error) {
	if fields := registrationFieldErrors(input); len(fields) > 0 {
		return nil, domainerrors.ErrRegistrationRejected.WithFields(fields)
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrRegistrationRejected.WithFields(map[string][]string{
			"password": {"is invalid"},
		})
	}

	user := &entity.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
	}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, domainerrors.ErrUserAlreadyExists
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	srv.log(ctx).Info("User registered", slog.String("userID", user.ID.String()))

	srv.issueAndNotify(ctx, srv.emailConfirmation, user)

	return srv.tokenOutput(user, usecase.MsgRegistered)
}

func registrationFieldErrors(input *usecase.RegisterInput) map[string][]string {
	fields := map[string][]string{}
	if strings.TrimSpace(input.Username) == "" {
		fields["username"] = append(fields["username"], "can't be blank")
	}
	if strings.TrimSpace(input.Email) == "" {
		fields["email"] = append(fields["email"], "can't be blank")
	}
	if input.Password == "" {
		fields["password"] = append(fields["password"], "can't be blank")
	}
	if input.PasswordConfirmation != "" && input.PasswordConfirmation != input.Password {
		fields["password_confirmation"] = append(fields["password_confirmation"], "doesn't match Password")
	}

	return fields
}

// Login verifies a username-or-email and password pair.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.TokenOutput, error) {
	user, err := srv.findByLogin(ctx, input.Login)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Debug("Login rejected: unknown user")

		return nil, domainerrors.ErrInvalidCredentials.WithFields(nil)
	}
	if err != nil {
		return nil, err
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Debug("Login rejected: password mismatch", slog.String("userID", user.ID.String()))

		return nil, domainerrors.ErrInvalidCredentials.WithFields(nil)
	}

	return srv.tokenOutput(user, usecase.MsgLoggedIn)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (srv *authService) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.TokenOutput, error) {
	verification := srv.tokenService.Verify(service.TokenKindRefresh, input.RefreshToken)
	if !verification.Valid() {
		srv.log(ctx).Debug("Refresh rejected", slog.String("reason", string(verification.Reason)))

		return nil, domainerrors.ErrTokenRejected
	}

	user, err := srv.userRepo.FindByID(ctx, verification.Claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrTokenRejected
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for refresh")
	}

	return srv.tokenOutput(user, usecase.MsgTokenRefreshed)
}

// ConfirmEmail consumes an email-confirmation code and marks the address confirmed.
func (srv *authService) ConfirmEmail(ctx context.Context, input *usecase.ConfirmEmailInput) (*usecase.TokenOutput, error) {
	userID, err := uuid.Parse(strings.TrimSpace(input.UserID))
	if err != nil {
		return nil, domainerrors.ErrConfirmationRejected
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrConfirmationRejected
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for confirmation")
	}

	confirmedAt := srv.clock.Now()
	check, err := srv.emailConfirmation.ValidateAndConsume(ctx, user, input.Code, func(u *entity.User) {
		u.EmailConfirmedAt = &confirmedAt
	})
	if err != nil {
		return nil, err
	}
	if !check.Accepted() {
		srv.log(ctx).Info("Email confirmation rejected",
			slog.String("userID", user.ID.String()),
			slog.String("reason", check.String()),
		)

		return nil, domainerrors.ErrConfirmationRejected
	}

	return srv.tokenOutput(user, usecase.MsgEmailConfirmed)
}

// RequestPasswordReset issues a reset code when the login resolves. The answer is
// the same whether or not it does.
func (srv *authService) RequestPasswordReset(ctx context.Context, input *usecase.RequestPasswordResetInput) (*usecase.MessageOutput, error) {
	ack := &usecase.MessageOutput{Message: usecase.MsgResetRequested}

	user, err := srv.findByLogin(ctx, input.Login)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Debug("Password reset requested for unknown login")

		return ack, nil
	}
	if err != nil {
		return nil, err
	}

	srv.issueAndNotify(ctx, srv.passwordReset, user)

	return ack, nil
}

// ResetPassword consumes a reset code and replaces the password hash in the same save.
func (srv *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) (*usecase.TokenOutput, error) {
	user, err := srv.findByLogin(ctx, input.Login)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrNewPasswordRejected
	}
	if err != nil {
		return nil, err
	}

	if input.Password == "" {
		return nil, domainerrors.ErrNewPasswordRejected
	}
	if input.PasswordConfirmation != "" && input.PasswordConfirmation != input.Password {
		srv.log(ctx).Info("Password reset rejected: confirmation mismatch", slog.String("userID", user.ID.String()))

		return nil, domainerrors.ErrNewPasswordRejected
	}

	// Hash before consuming so a hashing failure cannot burn the code.
	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Info("Password reset rejected: password not hashable", slog.Any("error", err))

		return nil, domainerrors.ErrNewPasswordRejected.WithDetails("password not hashable")
	}

	check, err := srv.passwordReset.ValidateAndConsume(ctx, user, input.Code, func(u *entity.User) {
		u.PasswordHash = hash
	})
	if err != nil {
		return nil, err
	}
	if !check.Accepted() {
		srv.log(ctx).Info("Password reset rejected",
			slog.String("userID", user.ID.String()),
			slog.String("reason", check.String()),
		)

		return nil, domainerrors.ErrNewPasswordRejected
	}

	return srv.tokenOutput(user, usecase.MsgPasswordReset)
}

// RequestEmailConfirmation issues a fresh confirmation code to the principal.
func (srv *authService) RequestEmailConfirmation(ctx context.Context, principal *usecase.Principal) (*usecase.MessageOutput, error) {
	if principal == nil || principal.User == nil {
		return nil, domainerrors.ErrNotLoggedIn
	}

	srv.issueAndNotify(ctx, srv.emailConfirmation, principal.User.Clone())

	return &usecase.MessageOutput{Message: usecase.MsgConfirmationResent}, nil
}

// IsAuthenticated acknowledges a principal that already passed the gate.
func (srv *authService) IsAuthenticated(_ context.Context, principal *usecase.Principal) (*usecase.MessageOutput, error) {
	if principal == nil {
		return nil, domainerrors.ErrNotLoggedIn
	}

	return &usecase.MessageOutput{Message: usecase.MsgAuthenticated}, nil
}

// Authenticate resolves an access token to the user it was issued for.
func (srv *authService) Authenticate(ctx context.Context, accessToken string) (*usecase.Principal, error) {
	verification := srv.tokenService.Verify(service.TokenKindAccess, accessToken)
	if !verification.Valid() {
		srv.log(ctx).Debug("Access token rejected", slog.String("reason", string(verification.Reason)))

		return nil, domainerrors.ErrNotLoggedIn
	}

	user, err := srv.userRepo.FindByID(ctx, verification.Claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrNotLoggedIn
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load authenticated user")
	}

	return &usecase.Principal{
		UserID:   user.ID,
		Username: user.Username,
		User:     user,
	}, nil
}

// findByLogin tries the exact username first, then the lower-cased input as an email.
func (srv *authService) findByLogin(ctx context.Context, login string) (*entity.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, repository.ErrUserNotFound
	}

	user, err := srv.userRepo.FindByUsername(ctx, login)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to find user by username")
	}

	user, err = srv.userRepo.FindByEmail(ctx, strings.ToLower(login))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	return user, nil
}

// issueAndNotify issues a code and hands it to the notifier. Failures are logged
// and never reach the caller.
func (srv *authService) issueAndNotify(ctx context.Context, workflow *VerificationWorkflow, user *entity.User) {
	logger := srv.log(ctx).With(
		slog.String("purpose", string(workflow.Purpose())),
		slog.String("userID", user.ID.String()),
	)

	code, err := workflow.Issue(ctx, user)
	if err != nil {
		logger.Error("Failed to issue verification code", slog.Any("error", err))

		return
	}

	notice := &service.VerificationNotice{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		Purpose:   workflow.Purpose(),
		UserID:    user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Code:      code,
	}
	if err := srv.notifier.NotifyVerificationCode(ctx, notice); err != nil {
		logger.Warn("Failed to publish verification notice", slog.Any("error", err))

		return
	}

	logger.Info("Verification code issued")
}

func (srv *authService) tokenOutput(user *entity.User, message string) (*usecase.TokenOutput, error) {
	accessToken, refreshToken, err := srv.tokenService.GenerateTokens(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	return &usecase.TokenOutput{
		Message:      message,
		Username:     user.Username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
