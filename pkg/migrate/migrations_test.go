package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sunkaracharan/roifinal/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestMigrationsContainExpectedStatements(t *testing.T) {
	cases := []struct {
		suffix string
		checks []string
	}{
		{
			suffix: "_create_enums.sql",
			checks: []string{
				"CREATE TYPE calculation_mode AS ENUM ('quick', 'full')",
				"CREATE TYPE payment_status AS ENUM ('pending', 'completed', 'failed', 'refunded')",
				"CREATE TYPE payment_method AS ENUM ('razorpay', 'stripe', 'paypal', 'manual')",
			},
		},
		{
			suffix: "_create_users.sql",
			checks: []string{
				"CONSTRAINT users_username_key UNIQUE (username)",
				"CONSTRAINT users_email_key UNIQUE (email)",
				"CHECK (full_calculations_used >= 0)",
				"DROP TABLE IF EXISTS usage_limits",
			},
		},
		{
			suffix: "_create_roi_results.sql",
			checks: []string{
				"mode calculation_mode NOT NULL",
				"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
				"roi_results_user_timestamp_idx",
			},
		},
		{
			suffix: "_create_payments.sql",
			checks: []string{
				"amount numeric(10,2) NOT NULL",
				"CONSTRAINT payments_payment_id_key UNIQUE (payment_id)",
				"WHERE status = 'pending'",
			},
		},
	}

	for _, tc := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", "*"+tc.suffix))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected one %s migration, found %d", tc.suffix, len(matches))
		}
		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)
		for _, sub := range tc.checks {
			if !strings.Contains(content, sub) {
				t.Errorf("%s: missing expected statement %q", tc.suffix, sub)
			}
		}
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Payment Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_payment_notes.sql") {
		t.Fatalf("unexpected file name %q", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestEmbeddedMigrationsMatchDirectory(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded()); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	if len(embedded) != len(onDisk) {
		t.Fatalf("expected %d embedded migrations, got %d", len(onDisk), len(embedded))
	}
}

func TestValidateDirRejectsMissingDown(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\nSELECT 1;\n"
	if err := os.WriteFile(filepath.Join(dir, "20250101000000_broken.sql"), []byte(body), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected missing down annotation to fail validation")
	}
}

func TestCreateSQLMigrationRejectsOutOfOrderVersion(t *testing.T) {
	dir := t.TempDir()
	future := "29991231235959_future.sql"
	if err := os.WriteFile(filepath.Join(dir, future), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "late"); err == nil {
		t.Fatal("expected out-of-order version to be rejected")
	}
}
