package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kilbertusrobin/joynt-backend/internal/platform/logger"
	"github.com/kilbertusrobin/joynt-backend/internal/types"
	"github.com/kilbertusrobin/joynt-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "joynt", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

type foreignKey struct {
	Name       string
	Table      string
	Column     string
	RefTable   string
	RefColumn  string
	CascadeDel bool
}

var foreignKeys = []foreignKey{
	{Name: "fk_profile_account_id", Table: "profile", Column: "account_id", RefTable: "account", RefColumn: "id", CascadeDel: true},
	{Name: "fk_sso_provider_account_id", Table: "sso_provider", Column: "account_id", RefTable: "account", RefColumn: "id", CascadeDel: true},
}

// DDL wraps the ALTER in a pg_constraint existence check so migration can
// run on every boot, including against an already-constrained database.
func (fk foreignKey) DDL() string {
	onDelete := ""
	if fk.CascadeDel {
		onDelete = " ON DELETE CASCADE"
	}
	return fmt.Sprintf(`
		DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
				ALTER TABLE "%s"
				ADD CONSTRAINT "%s"
				FOREIGN KEY ("%s")
				REFERENCES "%s"("%s")%s;
			END IF;
		END $$;`,
		fk.Name, fk.Table, fk.Name, fk.Column, fk.RefTable, fk.RefColumn, onDelete)
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Account{},
		&types.Profile{},
		&types.SSOProvider{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	for _, fk := range foreignKeys {
		if err := s.db.Exec(fk.DDL()).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", fk.Name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
