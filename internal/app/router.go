package app

import (
	"github.com/gin-gonic/gin"

	"github.com/kilbertusrobin/joynt-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlerset.Auth,
		UserHandler:    handlerset.User,
		AuthMiddleware: middlewareset.Auth,
		AllowOrigins:   cfg.AllowOrigins,
	})
}
