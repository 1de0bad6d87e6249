package app

import (
	"github.com/kilbertusrobin/joynt-backend/internal/middleware"
	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, serviceset.Tokens),
	}
}
