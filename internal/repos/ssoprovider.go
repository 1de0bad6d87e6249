package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/types"
)

type SSOProviderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, providers []*types.SSOProvider) ([]*types.SSOProvider, error)
	GetBySubject(ctx context.Context, tx *gorm.DB, provider types.AuthProvider, providerID string) (*types.SSOProvider, error)
	GetByAccountAndProvider(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, provider types.AuthProvider) (*types.SSOProvider, error)
	GetByAccountIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.SSOProvider, error)
	UpdateTokens(ctx context.Context, tx *gorm.DB, providerRowID uuid.UUID, accessToken, refreshToken *string, tokenExpiry *time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, providers []*types.SSOProvider) error
	DeleteByAccountAndProvider(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, provider types.AuthProvider) error
	CountForAccount(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (int64, error)
}

type ssoProviderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSSOProviderRepo(db *gorm.DB, baseLog *logger.Logger) SSOProviderRepo {
	repoLog := baseLog.With("repo", "SSOProviderRepo")
	return &ssoProviderRepo{db: db, log: repoLog}
}

func (sr *ssoProviderRepo) Create(ctx context.Context, tx *gorm.DB, providers []*types.SSOProvider) ([]*types.SSOProvider, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(providers) == 0 {
		return []*types.SSOProvider{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&providers).Error; err != nil {
		return nil, err
	}

	return providers, nil
}

// GetBySubject loads the link row for one external identity with its owning
// account and that account's profile, so the common returning-user path is
// a single query.
func (sr *ssoProviderRepo) GetBySubject(ctx context.Context, tx *gorm.DB, provider types.AuthProvider, providerID string) (*types.SSOProvider, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.SSOProvider
	if err := transaction.WithContext(ctx).
		Preload("Account").
		Preload("Account.Profile").
		Where("provider = ? AND provider_id = ?", provider, providerID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (sr *ssoProviderRepo) GetByAccountAndProvider(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, provider types.AuthProvider) (*types.SSOProvider, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.SSOProvider
	if err := transaction.WithContext(ctx).
		Where("account_id = ? AND provider = ?", accountID, provider).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (sr *ssoProviderRepo) GetByAccountIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.SSOProvider, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.SSOProvider
	if len(accountIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("account_id IN ?", accountIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateTokens touches only the token columns. A whole-row save here could
// null the account reference when the loaded struct is partially populated,
// which is exactly how orphan rows are born.
func (sr *ssoProviderRepo) UpdateTokens(ctx context.Context, tx *gorm.DB, providerRowID uuid.UUID, accessToken, refreshToken *string, tokenExpiry *time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.SSOProvider{}).
		Where("id = ?", providerRowID).
		Updates(map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"token_expiry":  tokenExpiry,
		}).Error
}

func (sr *ssoProviderRepo) Delete(ctx context.Context, tx *gorm.DB, providers []*types.SSOProvider) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(providers) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ids = append(ids, p.ID)
		}
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.SSOProvider{}).Error
}

func (sr *ssoProviderRepo) DeleteByAccountAndProvider(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, provider types.AuthProvider) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Where("account_id = ? AND provider = ?", accountID, provider).
		Delete(&types.SSOProvider{}).Error
}

func (sr *ssoProviderRepo) CountForAccount(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.SSOProvider{}).
		Where("account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
