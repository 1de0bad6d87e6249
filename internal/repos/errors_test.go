package repos

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres 23505", &pgconn.PgError{Code: "23505", ConstraintName: "idx_account_email"}, true},
		{"postgres other code", &pgconn.PgError{Code: "23503"}, false},
		{"wrapped postgres 23505", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23505"}), true},
		{"sqlite message", errors.New("UNIQUE constraint failed: account.email"), true},
		{"sqlite unrelated", errors.New("FOREIGN KEY constraint failed"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestUniqueViolationTarget(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"postgres email index", &pgconn.PgError{Code: "23505", ConstraintName: "idx_account_email"}, "email"},
		{"postgres handle index", &pgconn.PgError{Code: "23505", ConstraintName: "idx_profile_handle"}, "handle"},
		{"postgres provider index", &pgconn.PgError{Code: "23505", ConstraintName: "idx_provider_subject"}, "provider"},
		{"sqlite email message", errors.New("UNIQUE constraint failed: account.email"), "email"},
		{"sqlite handle message", errors.New("UNIQUE constraint failed: profile.handle"), "handle"},
		{"sqlite provider message", errors.New("UNIQUE constraint failed: sso_provider.provider, sso_provider.provider_id"), "provider"},
		{"unclassifiable", errors.New("UNIQUE constraint failed: widget.code"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UniqueViolationTarget(tt.err); got != tt.want {
				t.Errorf("UniqueViolationTarget(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
