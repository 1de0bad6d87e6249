package db

import (
	"fmt"
	"strings"
	"testing"
)

func TestForeignKeyDDLGuardedForReruns(t *testing.T) {
	if len(foreignKeys) == 0 {
		t.Fatal("no foreign keys declared")
	}
	for _, fk := range foreignKeys {
		t.Run(fk.Name, func(t *testing.T) {
			ddl := fk.DDL()

			guard := fmt.Sprintf("IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s')", fk.Name)
			if !strings.Contains(ddl, guard) {
				t.Errorf("DDL missing existence guard for %s:\n%s", fk.Name, ddl)
			}
			if !strings.Contains(ddl, fmt.Sprintf(`ADD CONSTRAINT "%s"`, fk.Name)) {
				t.Errorf("DDL missing constraint creation:\n%s", ddl)
			}
			if !strings.Contains(ddl, fmt.Sprintf(`ALTER TABLE "%s"`, fk.Table)) {
				t.Errorf("DDL targets the wrong table:\n%s", ddl)
			}
			if !strings.Contains(ddl, fmt.Sprintf(`REFERENCES "%s"("%s")`, fk.RefTable, fk.RefColumn)) {
				t.Errorf("DDL references the wrong target:\n%s", ddl)
			}
			if fk.CascadeDel && !strings.Contains(ddl, "ON DELETE CASCADE") {
				t.Errorf("DDL missing cascade clause:\n%s", ddl)
			}
		})
	}
}

func TestForeignKeyDeclarations(t *testing.T) {
	seen := map[string]bool{}
	for _, fk := range foreignKeys {
		if seen[fk.Name] {
			t.Errorf("duplicate constraint name %s", fk.Name)
		}
		seen[fk.Name] = true
		if fk.RefTable != "account" {
			t.Errorf("%s must reference the account table, got %s", fk.Name, fk.RefTable)
		}
	}
	if !seen["fk_profile_account_id"] || !seen["fk_sso_provider_account_id"] {
		t.Errorf("expected both identity foreign keys, got %v", seen)
	}
}
