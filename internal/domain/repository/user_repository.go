// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"authgate/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrConflict is returned by Save when the stored record changed since it was read.
	ErrConflict = errors.New("user was modified concurrently")

	// ErrDuplicateUser is returned by Create when the username or email is already registered.
	ErrDuplicateUser = errors.New("username or email already registered")
)

// UserRepository is the credential store the authentication core reads and mutates.
// Implementations must make each Save atomic: concurrent readers see either the
// previous record or the saved one, never a mix.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUsername retrieves a user by exact, case-sensitive username.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByEmail retrieves a user by email address, ignoring letter case.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user. It returns ErrDuplicateUser when the username or email is taken.
	Create(ctx context.Context, user *entity.User) error

	// Save persists every mutable field of user provided the stored Version still
	// equals user.Version. On success user.Version is advanced; otherwise the
	// stored record is untouched and ErrConflict or ErrUserNotFound is returned.
	Save(ctx context.Context, user *entity.User) error
}
