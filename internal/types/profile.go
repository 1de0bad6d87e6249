package types

import (
	"time"

	"github.com/google/uuid"
)

// Profile is 1:1 with Account and owns the public-facing handle. The handle
// unique index is the last line of defense against concurrent allocation.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_profile_account;not null;column:account_id" json:"-"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`
	Handle    string    `gorm:"uniqueIndex:idx_profile_handle;not null;column:handle" json:"handle"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}
