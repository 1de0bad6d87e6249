package repos

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err is a storage-level unique constraint
// failure. Covers gorm's translated error, raw postgres 23505 and the sqlite
// driver used in tests.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// UniqueViolationTarget best-effort names the identity space whose
// constraint fired ("email", "handle" or "provider"), so the caller can
// translate a commit-time violation into the matching domain conflict.
func UniqueViolationTarget(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName != "" {
		msg = pgErr.ConstraintName
	}
	switch {
	case strings.Contains(msg, "email"):
		return "email"
	case strings.Contains(msg, "handle"):
		return "handle"
	case strings.Contains(msg, "provider"):
		return "provider"
	}
	return ""
}
