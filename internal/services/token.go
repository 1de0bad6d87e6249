package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
)

// SessionClaims is the only payload this backend ever signs: account id as
// subject plus the email at sign-in time.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenIssuer interface {
	Issue(accountID uuid.UUID, email string) (string, error)
	Parse(tokenString string) (*SessionClaims, error)
	TTL() time.Duration
}

type tokenIssuer struct {
	log       *logger.Logger
	secretKey string
	ttl       time.Duration
}

func NewTokenIssuer(log *logger.Logger, secretKey string, ttl time.Duration) TokenIssuer {
	serviceLog := log.With("service", "TokenIssuer")
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &tokenIssuer{log: serviceLog, secretKey: secretKey, ttl: ttl}
}

func (ti *tokenIssuer) Issue(accountID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ti.secretKey))
}

func (ti *tokenIssuer) Parse(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ti.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired session token")
	}
	return claims, nil
}

func (ti *tokenIssuer) TTL() time.Duration {
	return ti.ttl
}
