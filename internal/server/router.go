package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kilbertusrobin/joynt-backend/internal/handlers"
	"github.com/kilbertusrobin/joynt-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// Public auth surface
	auth := router.Group("/auth")
	{
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/google/mobile", cfg.AuthHandler.GoogleMobile)
		auth.POST("/apple/mobile", cfg.AuthHandler.AppleMobile)
	}

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.GET("/auth/providers", cfg.AuthHandler.ListProviders)
	protected.DELETE("/auth/providers/:provider", cfg.AuthHandler.UnlinkProvider)
	protected.GET("/me", cfg.UserHandler.GetMe)
	protected.PATCH("/me/profile", cfg.UserHandler.UpdateProfile)

	return router
}
