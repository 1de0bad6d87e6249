package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/normalization"
	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/repos"
)

// handleProbeLimit bounds the collision loop; past this the basis is so
// contended that failing the request beats hammering the store.
const handleProbeLimit = 1000

type HandleAllocator interface {
	Allocate(ctx context.Context, tx *gorm.DB, firstName, lastName, email string) (string, error)
}

type handleAllocator struct {
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewHandleAllocator(log *logger.Logger, profileRepo repos.ProfileRepo) HandleAllocator {
	serviceLog := log.With("service", "HandleAllocator")
	return &handleAllocator{log: serviceLog, profileRepo: profileRepo}
}

// Allocate derives a base candidate from the name (or the email local-part
// when no name is available) and probes base, base1, base2... until a free
// handle is found. The probe runs inside the caller's transaction; the
// handle unique index still guards the final insert, and the caller must
// treat a commit-time violation as a retryable allocation conflict.
func (ha *handleAllocator) Allocate(ctx context.Context, tx *gorm.DB, firstName, lastName, email string) (string, error) {
	base := HandleBasis(firstName, lastName, email)

	candidate := base
	for counter := 1; counter <= handleProbeLimit; counter++ {
		exists, err := ha.profileRepo.HandleExists(ctx, tx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to probe handle %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, counter)
	}
	return "", fmt.Errorf("no free handle found for basis %q", base)
}

func HandleBasis(firstName, lastName, email string) string {
	if firstName != "" {
		return normalization.ParseInputString(normalization.StripSpaces(firstName + lastName))
	}
	return normalization.ParseInputString(normalization.EmailLocalPart(email))
}
