// Package memory holds an in-process credential store for tests and local runs.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"authgate/internal/domain/entity"
	"authgate/internal/domain/repository"

	"github.com/google/uuid"
)

// userRepository keeps users in maps guarded by one mutex. Records are copied
// on the way in and out so callers never share state with the store.
type userRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*entity.User
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
	now        func() time.Time
}

// NewUserRepository returns an empty in-memory UserRepository.
func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:       make(map[uuid.UUID]*entity.User),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
		now:        time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user.Clone(), nil
}

func (r *userRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return r.byID[id].Clone(), nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return r.byID[id].Clone(), nil
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return repository.ErrDuplicateUser
	}
	if _, taken := r.byEmail[emailKey(user.Email)]; taken {
		return repository.ErrDuplicateUser
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, taken := r.byID[user.ID]; taken {
		return repository.ErrDuplicateUser
	}

	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Version = 1

	r.byID[user.ID] = user.Clone()
	r.byUsername[user.Username] = user.ID
	r.byEmail[emailKey(user.Email)] = user.ID

	return nil
}

func (r *userRepository) Save(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if stored.Version != user.Version {
		return repository.ErrConflict
	}

	if stored.Username != user.Username {
		if _, taken := r.byUsername[user.Username]; taken {
			return repository.ErrDuplicateUser
		}
	}
	if emailKey(stored.Email) != emailKey(user.Email) {
		if _, taken := r.byEmail[emailKey(user.Email)]; taken {
			return repository.ErrDuplicateUser
		}
	}

	delete(r.byUsername, stored.Username)
	delete(r.byEmail, emailKey(stored.Email))

	user.Version++
	user.UpdatedAt = r.now()
	r.byID[user.ID] = user.Clone()
	r.byUsername[user.Username] = user.ID
	r.byEmail[emailKey(user.Email)] = user.ID

	return nil
}
