package repos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/types"
)

func newRepoTestDB(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.Account{}, &types.Profile{}, &types.SSOProvider{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db, &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func seedAccount(t *testing.T, db *gorm.DB, log *logger.Logger, email string) *types.Account {
	t.Helper()
	repo := NewAccountRepo(db, log)
	account := &types.Account{ID: uuid.New(), Email: email, Role: types.RoleUser, IsActive: true}
	if _, err := repo.Create(context.Background(), nil, []*types.Account{account}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestAccountEmailUniqueIndex(t *testing.T) {
	db, log := newRepoTestDB(t)
	repo := NewAccountRepo(db, log)
	ctx := context.Background()

	seedAccount(t, db, log, "same@example.com")

	_, err := repo.Create(ctx, nil, []*types.Account{{ID: uuid.New(), Email: "same@example.com"}})
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("not classified as unique violation: %v", err)
	}
	if got := UniqueViolationTarget(err); got != "email" {
		t.Fatalf("target = %q, want email", got)
	}
}

func TestProviderSubjectUniqueIndex(t *testing.T) {
	db, log := newRepoTestDB(t)
	repo := NewSSOProviderRepo(db, log)
	ctx := context.Background()

	account := seedAccount(t, db, log, "a@example.com")
	other := seedAccount(t, db, log, "b@example.com")

	row := &types.SSOProvider{ID: uuid.New(), Provider: types.ProviderGoogle, ProviderID: "sub-1", AccountID: &account.ID}
	if _, err := repo.Create(ctx, nil, []*types.SSOProvider{row}); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &types.SSOProvider{ID: uuid.New(), Provider: types.ProviderGoogle, ProviderID: "sub-1", AccountID: &other.ID}
	_, err := repo.Create(ctx, nil, []*types.SSOProvider{dup})
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err) || UniqueViolationTarget(err) != "provider" {
		t.Fatalf("classification wrong: %v", err)
	}

	// Same subject under the other provider kind is a different identity.
	apple := &types.SSOProvider{ID: uuid.New(), Provider: types.ProviderApple, ProviderID: "sub-1", AccountID: &other.ID}
	if _, err := repo.Create(ctx, nil, []*types.SSOProvider{apple}); err != nil {
		t.Fatalf("same subject, different provider: %v", err)
	}
}

func TestUpdateTokensLeavesOwnershipIntact(t *testing.T) {
	db, log := newRepoTestDB(t)
	repo := NewSSOProviderRepo(db, log)
	ctx := context.Background()

	account := seedAccount(t, db, log, "a@example.com")
	row := &types.SSOProvider{ID: uuid.New(), Provider: types.ProviderGoogle, ProviderID: "sub-2", AccountID: &account.ID}
	if _, err := repo.Create(ctx, nil, []*types.SSOProvider{row}); err != nil {
		t.Fatalf("create: %v", err)
	}

	access := "new-access"
	expiry := time.Now().Add(time.Hour)
	if err := repo.UpdateTokens(ctx, nil, row.ID, &access, nil, &expiry); err != nil {
		t.Fatalf("update tokens: %v", err)
	}

	got, err := repo.GetBySubject(ctx, nil, types.ProviderGoogle, "sub-2")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.AccessToken == nil || *got.AccessToken != access {
		t.Fatalf("access token not updated: %+v", got.AccessToken)
	}
	if got.AccountID == nil || *got.AccountID != account.ID {
		t.Fatal("token refresh must not touch the account reference")
	}
}

func TestGetBySubjectMissing(t *testing.T) {
	db, log := newRepoTestDB(t)
	repo := NewSSOProviderRepo(db, log)

	got, err := repo.GetBySubject(context.Background(), nil, types.ProviderGoogle, "nope")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a missing subject, got %+v", got)
	}
}

func TestProfileHandleUniqueIndex(t *testing.T) {
	db, log := newRepoTestDB(t)
	repo := NewProfileRepo(db, log)
	ctx := context.Background()

	a := seedAccount(t, db, log, "a@example.com")
	b := seedAccount(t, db, log, "b@example.com")

	if _, err := repo.Create(ctx, nil, []*types.Profile{{ID: uuid.New(), AccountID: a.ID, Handle: "shared"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, nil, []*types.Profile{{ID: uuid.New(), AccountID: b.ID, Handle: "shared"}})
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsUniqueViolation(err) || UniqueViolationTarget(err) != "handle" {
		t.Fatalf("classification wrong: %v", err)
	}

	exists, err := repo.HandleExists(ctx, nil, "shared")
	if err != nil {
		t.Fatalf("handle exists: %v", err)
	}
	if !exists {
		t.Fatal("expected handle to exist")
	}
	exists, err = repo.HandleExists(ctx, nil, "free")
	if err != nil {
		t.Fatalf("handle exists: %v", err)
	}
	if exists {
		t.Fatal("unclaimed handle reported as taken")
	}
}
