package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/services"
)

type Services struct {
	Tokens  services.TokenIssuer
	Handles services.HandleAllocator
	OIDC    services.OIDCVerifier
	Auth    services.AuthService
	User    services.UserService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	tokens := services.NewTokenIssuer(log, cfg.JWTSecretKey, cfg.SessionTokenTTL)
	handles := services.NewHandleAllocator(log, reposet.Profile)

	oidc, err := services.NewOIDCVerifier(nil, cfg.GoogleAudiences, cfg.AppleAudiences)
	if err != nil {
		return Services{}, fmt.Errorf("init oidc verifier: %w", err)
	}

	auth := services.NewAuthService(db, log, reposet.Account, reposet.Profile, reposet.SSOProvider, handles, oidc, tokens)
	user := services.NewUserService(db, log, reposet.Account, reposet.Profile)

	return Services{
		Tokens:  tokens,
		Handles: handles,
		OIDC:    oidc,
		Auth:    auth,
		User:    user,
	}, nil
}
