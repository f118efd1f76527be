// StockTrackHub | 2026
// migrate.go

package core

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate applies the schema in one idempotent step. Every table is keyed
// by `id`; nothing here drops or rewrites existing data.
func Migrate(db *sqlx.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			tier TEXT NOT NULL DEFAULT 'Free',
			balance_usd REAL NOT NULL DEFAULT 0,
			subscription_expiry TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS payment_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			amount REAL NOT NULL,
			reference_number TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending',
			submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS wallet (
			user_id INTEGER PRIMARY KEY REFERENCES users(id),
			balance_usd REAL NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS refresh_tokens (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			token_hash TEXT UNIQUE NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			revoked_at DATETIME,
			user_agent TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS watchlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			symbol TEXT NOT NULL,
			added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, symbol)
		);

		CREATE TABLE IF NOT EXISTS portfolio (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			symbol TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			purchase_price REAL NOT NULL,
			purchase_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_payment_requests_status
			ON payment_requests(status, submitted_at);
		CREATE INDEX IF NOT EXISTS idx_payment_requests_user
			ON payment_requests(user_id);
		CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user
			ON refresh_tokens(user_id);
		CREATE INDEX IF NOT EXISTS idx_portfolio_user
			ON portfolio(user_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}
