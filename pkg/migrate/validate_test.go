package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()

	good := "-- +goose Up\nCREATE TABLE x (id int);\n-- +goose Down\nDROP TABLE x;\n"
	if err := os.WriteFile(filepath.Join(dir, "20250901120000_create_x.sql"), []byte(good), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("expected valid dir, got %v", err)
	}
}

func TestValidateDirBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "create_x.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename to fail")
	}
}

func TestValidateDirMissingHeaders(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20250901120000_create_x.sql"), []byte("CREATE TABLE x (id int);\n"), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}

	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected missing goose headers to fail")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "add_widgets")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected migration in %s, got %s", dir, path)
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("expected generated migration to validate, got %v", err)
	}
}
