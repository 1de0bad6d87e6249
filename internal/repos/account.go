package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/types"
)

type AccountRepo interface {
	Create(ctx context.Context, tx *gorm.DB, accounts []*types.Account) ([]*types.Account, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.Account, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Account, error)
	GetWithProfile(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Account, error)
	GetWithProviders(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Account, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	repoLog := baseLog.With("repo", "AccountRepo")
	return &accountRepo{db: db, log: repoLog}
}

func (ar *accountRepo) Create(ctx context.Context, tx *gorm.DB, accounts []*types.Account) ([]*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if len(accounts) == 0 {
		return []*types.Account{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&accounts).Error; err != nil {
		return nil, err
	}

	return accounts, nil
}

func (ar *accountRepo) GetByIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Account

	if len(accountIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", accountIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *accountRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Account
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *accountRepo) GetWithProfile(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Account
	if err := transaction.WithContext(ctx).
		Preload("Profile").
		Where("id = ?", accountID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (ar *accountRepo) GetWithProviders(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Account
	if err := transaction.WithContext(ctx).
		Preload("Providers").
		Where("id = ?", accountID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (ar *accountRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Account{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
