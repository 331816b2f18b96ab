package reference

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectAgeGroups(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(queryAgeGroups)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "min_age", "max_age"}).
			AddRow(3, "30 to 34 years", 30, 34).
			AddRow(12, "75 years and over", 75, nil))
}

func TestSQLSource_Fetch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectAgeGroups(mock)
	mock.ExpectQuery(regexp.QuoteMeta(queryIncomeBands)).
		WillReturnRows(sqlmock.NewRows([]string{"age_group_id", "income_from", "income_to", "percentile"}).
			AddRow(3, 0.0, 50000.0, 0.3).
			AddRow(3, 50000.0, nil, 0.8))
	mock.ExpectQuery(regexp.QuoteMeta(queryNetWorthBands)).
		WillReturnRows(sqlmock.NewRows([]string{"age_group_id", "net_worth_group_id", "percentile_value"}).
			AddRow(3, 1, 0.25).
			AddRow(12, 7, 0.99))

	src := NewSQLSource(db, "postgres")
	assert.Equal(t, "postgres", src.Name())

	snap, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, snap.AgeGroups, 2)
	assert.Equal(t, 0, snap.AgeGroups[1].MaxAge)
	require.Len(t, snap.IncomeBands, 2)
	require.NotNil(t, snap.IncomeBands[0].IncomeTo)
	assert.Equal(t, 50000.0, *snap.IncomeBands[0].IncomeTo)
	assert.Nil(t, snap.IncomeBands[1].IncomeTo)
	assert.Len(t, snap.NetWorthBands, 2)

	tables, err := NewTablesFromSnapshot(snap)
	require.NoError(t, err)
	band, ok := tables.IncomeBandFor(3, 1_000_000)
	assert.True(t, ok)
	assert.Equal(t, 0.8, band.Percentile)
}

func TestSQLSource_Fetch_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectAgeGroups(mock)
	mock.ExpectQuery(regexp.QuoteMeta(queryIncomeBands)).
		WillReturnError(errors.New("relation \"income_percentiles\" does not exist"))

	_, err = NewSQLSource(db, "postgres").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "income_percentiles")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_Fetch_ScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryAgeGroups)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "min_age", "max_age"}).
			AddRow("not-a-number", "30 to 34 years", 30, 34))

	_, err = NewSQLSource(db, "sqlite").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age_groups")
}
