package impl

import (
	"context"
	"time"

	"authgate/internal/domain/entity"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"
	"authgate/internal/errors"

	"github.com/sethvargo/go-retry"
)

const (
	issueMaxRetries = 3
	issueRetryDelay = 10 * time.Millisecond
)

// CodeCheck is the outcome of validating a supplied verification code.
type CodeCheck int

const (
	// CodeUnchecked is returned alongside a storage error; no verdict was reached.
	CodeUnchecked CodeCheck = iota
	CodeAccepted
	// CodeMissing means no code is outstanding.
	CodeMissing
	// CodeExpired means the outstanding code is older than the workflow's max age.
	CodeExpired
	// CodeMismatch means the supplied code does not hash to the stored digest.
	CodeMismatch
	// CodeSuperseded means the record changed between read and save, so another
	// request consumed or replaced the code first.
	CodeSuperseded
)

func (c CodeCheck) String() string {
	switch c {
	case CodeUnchecked:
		return "unchecked"
	case CodeAccepted:
		return "accepted"
	case CodeMissing:
		return "missing"
	case CodeExpired:
		return "expired"
	case CodeMismatch:
		return "mismatch"
	case CodeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Accepted reports whether the code was consumed.
func (c CodeCheck) Accepted() bool {
	return c == CodeAccepted
}

// CodeSlot addresses the code field a workflow owns on a user.
type CodeSlot func(*entity.User) **entity.VerificationCode

// VerificationWorkflow issues and consumes single-use, time-boxed codes stored
// in one slot of the user record. Email confirmation and password reset are
// two instances that differ only in slot and max age.
type VerificationWorkflow struct {
	purpose entity.CodePurpose
	slot    CodeSlot
	maxAge  time.Duration
	users   repository.UserRepository
	codes   service.VerificationCodeGenerator
	clock   service.Clock
}

// NewVerificationWorkflow builds a workflow for one code purpose.
func NewVerificationWorkflow(
	purpose entity.CodePurpose,
	slot CodeSlot,
	maxAge time.Duration,
	users repository.UserRepository,
	codes service.VerificationCodeGenerator,
	clock service.Clock,
) *VerificationWorkflow {
	return &VerificationWorkflow{
		purpose: purpose,
		slot:    slot,
		maxAge:  maxAge,
		users:   users,
		codes:   codes,
		clock:   clock,
	}
}

// Purpose names the workflow.
func (w *VerificationWorkflow) Purpose() entity.CodePurpose {
	return w.purpose
}

// Issue stores the digest of a fresh code on user, replacing any outstanding one,
// and returns the plaintext. A concurrent write to the same record is resolved by
// reloading and reissuing, so the last issuance always wins. On success *user
// reflects the stored record.
func (w *VerificationWorkflow) Issue(ctx context.Context, user *entity.User) (string, error) {
	code, digest, err := w.codes.Generate()
	if err != nil {
		return "", errors.Wrapf(err, "generate %s code", w.purpose)
	}

	current := user.Clone()
	backoff := retry.WithMaxRetries(issueMaxRetries, retry.NewConstant(issueRetryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		updated := current.Clone()
		*w.slot(updated) = &entity.VerificationCode{Hash: digest, IssuedAt: w.clock.Now()}

		saveErr := w.users.Save(ctx, updated)
		if errors.Is(saveErr, repository.ErrConflict) {
			fresh, findErr := w.users.FindByID(ctx, current.ID)
			if findErr != nil {
				return errors.Wrap(findErr, "reload user after conflict")
			}
			current = fresh

			return retry.RetryableError(saveErr)
		}
		if saveErr != nil {
			return saveErr
		}

		current = updated

		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "store %s code", w.purpose)
	}

	*user = *current

	return code, nil
}

// ValidateAndConsume checks code against the outstanding one and, when it is
// accepted, clears the slot and applies mutate in the same Save. Rejections
// leave both user and the stored record untouched. The error is reserved for
// storage faults.
func (w *VerificationWorkflow) ValidateAndConsume(
	ctx context.Context,
	user *entity.User,
	code string,
	mutate func(*entity.User),
) (CodeCheck, error) {
	outstanding := *w.slot(user)
	if outstanding == nil {
		return CodeMissing, nil
	}
	if outstanding.Age(w.clock.Now()) > w.maxAge {
		return CodeExpired, nil
	}
	if !w.codes.Matches(code, outstanding.Hash) {
		return CodeMismatch, nil
	}

	updated := user.Clone()
	*w.slot(updated) = nil
	if mutate != nil {
		mutate(updated)
	}

	// Save compares versions, so of two requests holding the same code only one clears it.
	err := w.users.Save(ctx, updated)
	if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrUserNotFound) {
		return CodeSuperseded, nil
	}
	if err != nil {
		return CodeUnchecked, errors.Wrapf(err, "consume %s code", w.purpose)
	}

	*user = *updated

	return CodeAccepted, nil
}
