package app

import (
	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/repos"
)

type Repos struct {
	Account     repos.AccountRepo
	Profile     repos.ProfileRepo
	SSOProvider repos.SSOProviderRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Account:     repos.NewAccountRepo(db, log),
		Profile:     repos.NewProfileRepo(db, log),
		SSOProvider: repos.NewSSOProviderRepo(db, log),
	}
}
