// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record every authentication operation resolves to.
type User struct {
	ID                uuid.UUID         // Stable unique identifier, carried in token claims.
	Username          string            // Unique, compared case-sensitively.
	Email             string            // Unique, compared case-insensitively.
	PasswordHash      string            // bcrypt digest of the current password.
	EmailConfirmation *VerificationCode // Outstanding email-confirmation code, nil when none.
	PasswordReset     *VerificationCode // Outstanding password-reset code, nil when none.
	EmailConfirmedAt  *time.Time        // Set once the email address has been confirmed.
	Version           int64             // Optimistic concurrency token, bumped by every successful save.
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// VerificationCode is the at-rest form of an out-of-band code: only its digest
// and the instant it was issued. A nil *VerificationCode means no code is outstanding,
// so the digest and timestamp can never be set independently.
type VerificationCode struct {
	Hash     string
	IssuedAt time.Time
}

// Age reports how long ago the code was issued relative to now.
func (c *VerificationCode) Age(now time.Time) time.Duration {
	return now.Sub(c.IssuedAt)
}

// IsEmailConfirmed reports whether the user has confirmed their email address.
func (u *User) IsEmailConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

// Clone returns a copy of the user that shares no mutable state with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	cloned := *u
	if u.EmailConfirmation != nil {
		code := *u.EmailConfirmation
		cloned.EmailConfirmation = &code
	}
	if u.PasswordReset != nil {
		code := *u.PasswordReset
		cloned.PasswordReset = &code
	}
	if u.EmailConfirmedAt != nil {
		confirmedAt := *u.EmailConfirmedAt
		cloned.EmailConfirmedAt = &confirmedAt
	}

	return &cloned
}
