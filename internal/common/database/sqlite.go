package database

import (
	"context"
	"database/sql"

	"wellness-engine/internal/common/config"

	_ "modernc.org/sqlite"
)

// NewSQLite opens a sqlite reference database read-only. sqlite serializes
// writers, so one connection is enough for the startup load.
func NewSQLite(ctx context.Context, cfg config.SQLiteConfig) (*sql.DB, error) {
	return Open(ctx, DriverSQLite, cfg.GetDSN(), Pool{MaxOpen: 1, MaxIdle: 1})
}
