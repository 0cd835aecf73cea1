package service

import (
	"context"

	"authgate/internal/domain/entity"
)

// VerificationNotice carries a freshly issued code to whatever delivers it out-of-band.
type VerificationNotice struct {
	RequestID string             `json:"request_id,omitempty"` // For distributed tracing
	Purpose   entity.CodePurpose `json:"purpose"`
	UserID    string             `json:"user_id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	Code      string             `json:"code"`
}

// VerificationNotifier hands verification codes off for email delivery.
// Delivery is fire-and-forget: a nil error only means the notice was accepted.
type VerificationNotifier interface {
	// NotifyVerificationCode publishes a notice for asynchronous delivery
	NotifyVerificationCode(ctx context.Context, notice *VerificationNotice) error

	// Close releases any resources held by the notifier
	Close() error
}
