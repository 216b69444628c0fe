package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Writers may create, update and delete tools and manage
// other user accounts; readers only browse.
const (
	RoleReader = "reader"
	RoleWriter = "writer"
)

// User represents an account. Password and the password-reset fields
// carry `json:"-"` so they can never appear in a serialized response,
// regardless of which handler produced it.
type User struct {
	ID                   string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name                 string     `json:"name" validate:"required,min=2,max=100"`
	Email                string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password             string     `json:"-" gorm:"type:varchar(255)" validate:"required,min=8"`
	Role                 string     `json:"role" gorm:"type:varchar(16);default:reader" validate:"omitempty,oneof=reader writer"`
	Active               bool       `json:"-" gorm:"default:true"`
	PasswordChangedAt    time.Time  `json:"-"`
	PasswordResetToken   string     `json:"-" gorm:"type:varchar(64)"`
	PasswordResetExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a UUID and the default role when missing.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleReader
	}
	return nil
}

// ChangedPasswordAfter reports whether the password was changed after
// the given token issue time. Tokens issued before the change are stale.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	// JWT iat has second precision, so compare at that granularity.
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt)
}
