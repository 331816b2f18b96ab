package reference

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SchemaStatements create the three reference tables. The column types are
// accepted by both postgres and sqlite.
var SchemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS age_groups (
		id      INTEGER PRIMARY KEY,
		label   TEXT NOT NULL UNIQUE,
		min_age INTEGER NOT NULL,
		max_age INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS income_percentiles (
		age_group_id INTEGER NOT NULL REFERENCES age_groups(id),
		income_from  DOUBLE PRECISION NOT NULL,
		income_to    DOUBLE PRECISION,
		percentile   DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS networth_percentiles (
		age_group_id       INTEGER NOT NULL REFERENCES age_groups(id),
		net_worth_group_id INTEGER NOT NULL,
		percentile_value   DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (age_group_id, net_worth_group_id)
	)`,
}

// SQLWriter replaces the contents of the reference tables with a validated
// snapshot in one transaction.
type SQLWriter struct {
	db     *sql.DB
	driver string
}

func NewSQLWriter(db *sql.DB, driver string) *SQLWriter {
	return &SQLWriter{db: db, driver: driver}
}

// placeholders renders n bind parameters in the driver's syntax.
func (w *SQLWriter) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		if w.driver == "postgres" {
			ps[i] = fmt.Sprintf("$%d", i+1)
		} else {
			ps[i] = "?"
		}
	}
	return strings.Join(ps, ", ")
}

// Write validates snap, creates the schema if needed and replaces all rows.
func (w *SQLWriter) Write(ctx context.Context, snap Snapshot) error {
	tables, err := NewTablesFromSnapshot(snap)
	if err != nil {
		return err
	}
	snap = tables.Snapshot()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range SchemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, table := range []string{"networth_percentiles", "income_percentiles", "age_groups"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertGroup := "INSERT INTO age_groups (id, label, min_age, max_age) VALUES (" + w.placeholders(4) + ")"
	for _, g := range snap.AgeGroups {
		var maxAge interface{}
		if g.MaxAge > 0 {
			maxAge = g.MaxAge
		}
		if _, err := tx.ExecContext(ctx, insertGroup, g.ID, g.Label, g.MinAge, maxAge); err != nil {
			return fmt.Errorf("insert age group %d: %w", g.ID, err)
		}
	}

	insertIncome := "INSERT INTO income_percentiles (age_group_id, income_from, income_to, percentile) VALUES (" + w.placeholders(4) + ")"
	for _, b := range snap.IncomeBands {
		var to interface{}
		if b.IncomeTo != nil {
			to = *b.IncomeTo
		}
		if _, err := tx.ExecContext(ctx, insertIncome, b.AgeGroupID, b.IncomeFrom, to, b.Percentile); err != nil {
			return fmt.Errorf("insert income band for group %d: %w", b.AgeGroupID, err)
		}
	}

	insertNetWorth := "INSERT INTO networth_percentiles (age_group_id, net_worth_group_id, percentile_value) VALUES (" + w.placeholders(3) + ")"
	for _, b := range snap.NetWorthBands {
		if _, err := tx.ExecContext(ctx, insertNetWorth, b.AgeGroupID, b.NetWorthGroupID, b.PercentileValue); err != nil {
			return fmt.Errorf("insert net worth band (%d,%d): %w", b.AgeGroupID, b.NetWorthGroupID, err)
		}
	}

	return tx.Commit()
}
