package app

import (
	"time"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/utils"
)

type Config struct {
	JWTSecretKey    string
	SessionTokenTTL time.Duration
	GoogleAudiences []string
	AppleAudiences  []string
	AllowOrigins    []string
	Port            string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	sessionTTLSeconds := utils.GetEnvAsInt("SESSION_TOKEN_TTL", 86400, log)
	googleAudiences := utils.GetEnvAsSlice("GOOGLE_CLIENT_IDS", nil, log)
	appleAudiences := utils.GetEnvAsSlice("APPLE_CLIENT_IDS", nil, log)
	allowOrigins := utils.GetEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}, log)
	port := utils.GetEnv("PORT", "8080", log)
	return Config{
		JWTSecretKey:    jwtSecretKey,
		SessionTokenTTL: time.Duration(sessionTTLSeconds) * time.Second,
		GoogleAudiences: googleAudiences,
		AppleAudiences:  appleAudiences,
		AllowOrigins:    allowOrigins,
		Port:            port,
	}
}
