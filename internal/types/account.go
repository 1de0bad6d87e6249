package types

import (
	"time"

	"github.com/google/uuid"
)

type AccountRole string

const (
	RoleUser  AccountRole = "user"
	RoleAdmin AccountRole = "admin"
)

// Account is the identity root. PasswordHash is nil for SSO-only accounts;
// an account with no password and no linked providers is only ever a
// transient state inside the creating transaction.
type Account struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string        `gorm:"uniqueIndex:idx_account_email;not null;column:email" json:"email"`
	PasswordHash *string       `gorm:"column:password_hash" json:"-"`
	Role         AccountRole   `gorm:"type:varchar(16);not null;default:user" json:"role"`
	IsActive     bool          `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Profile      *Profile      `gorm:"foreignKey:AccountID" json:"profile,omitempty"`
	Providers    []SSOProvider `gorm:"foreignKey:AccountID" json:"-"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}

func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}
