package sqlstore

import (
	"context"
	"fmt"
)

// sqliteSchema mirrors the production users table closely enough for local
// runs and tests. Postgres schemas are owned outside this service.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY,
		age        INTEGER NOT NULL,
		f_name     TEXT NOT NULL,
		l_name     TEXT NOT NULL,
		gender     TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

// EnsureSchema creates the users table on SQLite if it does not exist.
// It is a no-op on Postgres.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db.placeholder != Question {
		return nil
	}
	if _, err := db.conn.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("sqlstore: creating users table: %w", err)
	}
	return nil
}
