package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/types"
)

type ProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profiles []*types.Profile) ([]*types.Profile, error)
	GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Profile, error)
	HandleExists(ctx context.Context, tx *gorm.DB, handle string) (bool, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, fields map[string]interface{}) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(ctx context.Context, tx *gorm.DB, profiles []*types.Profile) ([]*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(profiles) == 0 {
		return []*types.Profile{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&profiles).Error; err != nil {
		return nil, err
	}

	return profiles, nil
}

func (pr *profileRepo) GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Profile
	if err := transaction.WithContext(ctx).
		Where("account_id = ?", accountID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (pr *profileRepo) HandleExists(ctx context.Context, tx *gorm.DB, handle string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Profile{}).
		Where("handle = ?", handle).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields applies a narrow column update. Profile rows are never saved
// whole, so a partially loaded struct cannot wipe unrelated columns.
func (pr *profileRepo) UpdateFields(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(fields) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Profile{}).
		Where("id = ?", profileID).
		Updates(fields).Error
}
