package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. Each verification code is a nullable
// hash/issued-at column pair; the migration's check constraints keep the pair
// either fully set or fully null.
type UserModel struct {
	ID                        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username                  string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email                     string    `gorm:"type:varchar(255);not null"`
	PasswordHash              string    `gorm:"type:varchar(255);not null"`
	EmailConfirmationHash     *string   `gorm:"type:varchar(128)"`
	EmailConfirmationIssuedAt *time.Time
	PasswordResetHash         *string `gorm:"type:varchar(128)"`
	PasswordResetIssuedAt     *time.Time
	EmailConfirmedAt          *time.Time
	Version                   int64 `gorm:"not null;default:1"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
