package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(files))
	}

	tables := []string{
		"users", "user_password", "sessions", "verification_tokens", "profiles",
		"user_activities", "page_views", "contact_submissions", "password_resets",
	}
	var all strings.Builder
	for _, name := range files {
		b, err := fs.ReadFile(FS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		body := string(b)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Errorf("%s: missing goose annotations", name)
		}
		all.WriteString(body)
	}
	for _, table := range tables {
		if !strings.Contains(all.String(), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("no migration creates %s", table)
		}
	}
}
