package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/normalization"
	"github.com/kilbertusrobin/joynt-backend/internal/platform/apierr"
	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/repos"
	"github.com/kilbertusrobin/joynt-backend/internal/types"
)

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Handle    *string
}

type UserService interface {
	GetMe(ctx context.Context, accountID uuid.UUID) (*types.Account, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, input UpdateProfileInput) (*types.Profile, error)
}

type userService struct {
	db          *gorm.DB
	log         *logger.Logger
	accountRepo repos.AccountRepo
	profileRepo repos.ProfileRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, accountRepo repos.AccountRepo, profileRepo repos.ProfileRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, accountRepo: accountRepo, profileRepo: profileRepo}
}

func (us *userService) GetMe(ctx context.Context, accountID uuid.UUID) (*types.Account, error) {
	account, err := us.accountRepo.GetWithProfile(ctx, nil, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, apierr.AccountNotFound()
	}
	return account, nil
}

// UpdateProfile mutates names and handle independently of authentication.
// A handle change re-checks uniqueness inside the same transaction that
// writes it; the unique index catches whatever slips through.
func (us *userService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input UpdateProfileInput) (*types.Profile, error) {
	var updated *types.Profile
	txErr := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := us.profileRepo.GetByAccountID(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if profile == nil {
			return apierr.AccountNotFound()
		}

		fields := map[string]interface{}{}
		if input.FirstName != nil {
			fields["first_name"] = *input.FirstName
		}
		if input.LastName != nil {
			fields["last_name"] = *input.LastName
		}
		if input.Handle != nil {
			handle := normalization.ParseInputString(*input.Handle)
			if handle != profile.Handle {
				exists, err := us.profileRepo.HandleExists(ctx, tx, handle)
				if err != nil {
					return fmt.Errorf("failed to check handle: %w", err)
				}
				if exists {
					return apierr.DuplicateHandle()
				}
				fields["handle"] = handle
			}
		}

		if len(fields) == 0 {
			updated = profile
			return nil
		}
		if err := us.profileRepo.UpdateFields(ctx, tx, profile.ID, fields); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		updated, err = us.profileRepo.GetByAccountID(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("failed to reload profile: %w", err)
		}
		return nil
	})
	if txErr != nil {
		if repos.IsUniqueViolation(txErr) {
			return nil, apierr.DuplicateHandle()
		}
		return nil, txErr
	}
	return updated, nil
}
