// StockTrackHub | 2026
// migrate_test.go

package core

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

func newMigratedDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := newMigratedDB(t)

	// Re-running the migration against an existing schema must not fail
	// or disturb data.
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO users (email, username, password_hash, role, tier)
		VALUES ('a@b.c', 'abc', 'x', 'user', 'Free')`)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var count int
	err = db.GetContext(context.Background(), &count,
		"SELECT COUNT(*) FROM users")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestMigrateCreatesTables(t *testing.T) {
	db := newMigratedDB(t)

	tables := []string{
		"users",
		"payment_requests",
		"wallet",
		"refresh_tokens",
		"watchlists",
		"portfolio",
	}

	for _, table := range tables {
		var name string
		err := db.GetContext(context.Background(), &name,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table)
		if err != nil {
			t.Errorf("table %q missing: %v", table, err)
		}
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()

	insert := `
		INSERT INTO users (email, username, password_hash, role, tier)
		VALUES (?, ?, 'x', 'user', 'Free')`

	if _, err := db.ExecContext(ctx, insert, "dup@test.local", "dup"); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := db.ExecContext(ctx, insert, "dup@test.local", "dup2")
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !IsDuplicateKeyError(err) {
		t.Errorf("IsDuplicateKeyError(%v) = false, want true", err)
	}

	if IsDuplicateKeyError(context.Canceled) {
		t.Error("unrelated error classified as duplicate key")
	}
}
