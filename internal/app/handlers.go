package app

import (
	"github.com/kilbertusrobin/joynt-backend/internal/handlers"
	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
)

type Handlers struct {
	Auth *handlers.AuthHandler
	User *handlers.UserHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth: handlers.NewAuthHandler(serviceset.Auth),
		User: handlers.NewUserHandler(serviceset.User),
	}
}
