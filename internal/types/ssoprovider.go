package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
	ProviderApple  AuthProvider = "apple"
)

// SSOProvider links one external identity to an account. (provider,
// provider_id) is globally unique; AccountID is nullable so a row whose
// owner was deleted without cascading can be detected and purged instead of
// blocking that external identity forever.
type SSOProvider struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Provider     AuthProvider   `gorm:"type:varchar(16);not null;uniqueIndex:idx_provider_subject;column:provider" json:"provider"`
	ProviderID   string         `gorm:"not null;uniqueIndex:idx_provider_subject;column:provider_id" json:"provider_id"`
	AccessToken  *string        `gorm:"column:access_token" json:"-"`
	RefreshToken *string        `gorm:"column:refresh_token" json:"-"`
	TokenExpiry  *time.Time     `gorm:"column:token_expiry" json:"token_expiry,omitempty"`
	Metadata     datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	AccountID    *uuid.UUID     `gorm:"type:uuid;column:account_id;index" json:"-"`
	Account      *Account       `gorm:"foreignKey:AccountID" json:"-"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (SSOProvider) TableName() string {
	return "sso_provider"
}

// Orphaned reports a row left behind by a partial failure: it still claims
// the (provider, provider_id) pair but no longer belongs to any account.
func (p *SSOProvider) Orphaned() bool {
	return p.AccountID == nil
}
