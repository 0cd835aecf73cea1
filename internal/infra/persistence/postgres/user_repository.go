// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// reader pins lookups to the primary. Every Save compares versions, so a
// lagging replica would only turn reads into spurious conflicts.
func (repo *userRepository) reader(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Clauses(dbresolver.Write)
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "find user by id", "id = ?", id)
}

// FindByUsername retrieves a user by exact username.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return repo.findOne(ctx, "find user by username", "username = ?", username)
}

// FindByEmail matches against the lower(email) index.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "find user by email", "LOWER(email) = LOWER(?)", email)
}

func (repo *userRepository) findOne(ctx context.Context, op string, query string, args ...any) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.reader(ctx).Where(query, args...).Take(&userM).Error; err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to "+op)
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toUserDomain(&userM), nil
}

// Create persists a new user entity.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate user id")
		}
		user.ID = id
	}

	userM := fromUserDomain(user)
	userM.Version = 1

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateUser
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.Version = userM.Version
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Save writes every mutable column in one conditional UPDATE keyed on id and version.
func (repo *userRepository) Save(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	now := time.Now()

	// A map keeps nil code columns in the statement; struct updates skip zero values.
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ? AND version = ?", user.ID, user.Version).
		Updates(map[string]any{
			"username":                     userM.Username,
			"email":                        userM.Email,
			"password_hash":                userM.PasswordHash,
			"email_confirmation_hash":      userM.EmailConfirmationHash,
			"email_confirmation_issued_at": userM.EmailConfirmationIssuedAt,
			"password_reset_hash":          userM.PasswordResetHash,
			"password_reset_issued_at":     userM.PasswordResetIssuedAt,
			"email_confirmed_at":           userM.EmailConfirmedAt,
			"version":                      gorm.Expr("version + 1"),
			"updated_at":                   now,
		})
	if err := result.Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateUser
		}
		if isCheckConstraintViolation(err) {
			return errors.Wrap(err, "verification code columns out of step")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to save user")
	}

	if result.RowsAffected == 0 {
		return repo.missedSave(ctx, user.ID)
	}

	user.Version++
	user.UpdatedAt = now

	return nil
}

// missedSave tells a stale version apart from a missing row.
func (repo *userRepository) missedSave(ctx context.Context, id uuid.UUID) error {
	var count int64
	err := repo.reader(ctx).Model(&model.UserModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to check user existence")
	}
	if count == 0 {
		return repository.ErrUserNotFound
	}

	return repository.ErrConflict
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:                data.ID,
		Username:          data.Username,
		Email:             data.Email,
		PasswordHash:      data.PasswordHash,
		EmailConfirmation: toVerificationCode(data.EmailConfirmationHash, data.EmailConfirmationIssuedAt),
		PasswordReset:     toVerificationCode(data.PasswordResetHash, data.PasswordResetIssuedAt),
		EmailConfirmedAt:  data.EmailConfirmedAt,
		Version:           data.Version,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	userM := &model.UserModel{
		ID:               data.ID,
		Username:         data.Username,
		Email:            data.Email,
		PasswordHash:     data.PasswordHash,
		EmailConfirmedAt: data.EmailConfirmedAt,
		Version:          data.Version,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
	userM.EmailConfirmationHash, userM.EmailConfirmationIssuedAt = fromVerificationCode(data.EmailConfirmation)
	userM.PasswordResetHash, userM.PasswordResetIssuedAt = fromVerificationCode(data.PasswordReset)

	return userM
}

// toVerificationCode only yields a code when both columns are set.
func toVerificationCode(hash *string, issuedAt *time.Time) *entity.VerificationCode {
	if hash == nil || issuedAt == nil {
		return nil
	}

	return &entity.VerificationCode{Hash: *hash, IssuedAt: *issuedAt}
}

func fromVerificationCode(code *entity.VerificationCode) (*string, *time.Time) {
	if code == nil {
		return nil, nil
	}

	hash := code.Hash
	issuedAt := code.IssuedAt

	return &hash, &issuedAt
}
