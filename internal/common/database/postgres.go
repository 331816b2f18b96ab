package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wellness-engine/internal/common/config"

	_ "github.com/lib/pq"
)

// Driver names as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Pool sizes the connection pool of an opened database.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// Open opens a database/sql handle, applies the pool settings and pings it
// so a bad DSN fails at startup rather than on the first query.
func Open(ctx context.Context, driver, dsn string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	if pool.MaxOpen > 0 {
		db.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		db.SetMaxIdleConns(pool.MaxIdle)
	}
	if pool.MaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.MaxLifetime)
		db.SetConnMaxIdleTime(pool.MaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	return db, nil
}

// NewPostgres opens the reference database over lib/pq.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	return Open(ctx, DriverPostgres, cfg.GetDSN(), Pool{
		MaxOpen:     cfg.MaxConnections,
		MaxIdle:     cfg.MaxIdle,
		MaxLifetime: 5 * time.Minute,
	})
}
