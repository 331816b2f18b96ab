package reference

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	queryAgeGroups = `
		SELECT id, label, min_age, max_age
		FROM age_groups
		ORDER BY id`

	queryIncomeBands = `
		SELECT age_group_id, income_from, income_to, percentile
		FROM income_percentiles
		ORDER BY age_group_id, income_from`

	queryNetWorthBands = `
		SELECT age_group_id, net_worth_group_id, percentile_value
		FROM networth_percentiles
		ORDER BY age_group_id, net_worth_group_id`
)

// Source produces a snapshot of the reference datasets.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Snapshot, error)
}

// SQLSource reads the three reference tables over database/sql. The queries
// take no parameters, so the same statements serve postgres and sqlite.
type SQLSource struct {
	db     *sql.DB
	driver string
}

// NewSQLSource wraps an open database. driver is only used for naming.
func NewSQLSource(db *sql.DB, driver string) *SQLSource {
	return &SQLSource{db: db, driver: driver}
}

func (s *SQLSource) Name() string { return s.driver }

// Fetch runs the three queries and returns their rows unvalidated.
func (s *SQLSource) Fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.AgeGroups, err = s.ageGroups(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("query age_groups: %w", err)
	}
	if snap.IncomeBands, err = s.incomeBands(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("query income_percentiles: %w", err)
	}
	if snap.NetWorthBands, err = s.netWorthBands(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("query networth_percentiles: %w", err)
	}
	return snap, nil
}

func (s *SQLSource) ageGroups(ctx context.Context) ([]AgeGroup, error) {
	rows, err := s.db.QueryContext(ctx, queryAgeGroups)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AgeGroup
	for rows.Next() {
		var g AgeGroup
		var maxAge sql.NullInt64
		if err := rows.Scan(&g.ID, &g.Label, &g.MinAge, &maxAge); err != nil {
			return nil, err
		}
		g.MaxAge = int(maxAge.Int64)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQLSource) incomeBands(ctx context.Context) ([]IncomeBand, error) {
	rows, err := s.db.QueryContext(ctx, queryIncomeBands)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IncomeBand
	for rows.Next() {
		var b IncomeBand
		var to sql.NullFloat64
		if err := rows.Scan(&b.AgeGroupID, &b.IncomeFrom, &to, &b.Percentile); err != nil {
			return nil, err
		}
		if to.Valid {
			v := to.Float64
			b.IncomeTo = &v
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLSource) netWorthBands(ctx context.Context) ([]NetWorthBand, error) {
	rows, err := s.db.QueryContext(ctx, queryNetWorthBands)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NetWorthBand
	for rows.Next() {
		var b NetWorthBand
		if err := rows.Scan(&b.AgeGroupID, &b.NetWorthGroupID, &b.PercentileValue); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
