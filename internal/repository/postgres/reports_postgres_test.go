package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmledger/internal/fault"
)

func newReports(t *testing.T) (*ReportsPostgres, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewReportsPostgres(db), mock, func() { db.Close() }
}

func TestReportsPostgres_DailyEggs(t *testing.T) {
	ctx := context.Background()

	t.Run("groups by date", func(t *testing.T) {
		repo, mock, done := newReports(t)
		defer done()

		rows := sqlmock.NewRows([]string{"date", "total"}).
			AddRow("2025-01-01", "120").
			AddRow("2025-01-02", "131")

		mock.ExpectQuery("SELECT doc->>'date' AS date, SUM").
			WithArgs("farm-1", "egg", "2025-01-01", "2025-01-31").
			WillReturnRows(rows)

		got, err := repo.DailyEggs(ctx, "farm-1", "2025-01-01", "2025-01-31")

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2025-01-01", got[0].Date)
		assert.Equal(t, "120", got[0].Total.String())
	})

	t.Run("absent range bounds bind no parameters", func(t *testing.T) {
		repo, mock, done := newReports(t)
		defer done()

		mock.ExpectQuery("SELECT doc->>'date' AS date, SUM").
			WithArgs("farm-1", "egg").
			WillReturnRows(sqlmock.NewRows([]string{"date", "total"}))

		got, err := repo.DailyEggs(ctx, "farm-1", "", "")

		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing farm id", func(t *testing.T) {
		repo, _, done := newReports(t)
		defer done()

		_, err := repo.DailyEggs(ctx, "", "", "")

		assert.True(t, fault.IsInvalidArgument(err))
	})
}

func TestReportsPostgres_DailyRevenue(t *testing.T) {
	repo, mock, done := newReports(t)
	defer done()

	rows := sqlmock.NewRows([]string{"date", "total"}).
		AddRow("2025-01-05", "1250.75")

	mock.ExpectQuery("SELECT doc->>'date' AS date, SUM").
		WithArgs("farm-1", "sale").
		WillReturnRows(rows)

	got, err := repo.DailyRevenue(context.Background(), "farm-1", "", "")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1250.75", got[0].Total.String())
}

func TestReportsPostgres_DailyCosts(t *testing.T) {
	repo, mock, done := newReports(t)
	defer done()

	// Both branches are filtered independently; the farm id and range are
	// bound once per branch.
	rows := sqlmock.NewRows([]string{"date", "total"}).
		AddRow("2025-01-01", "310.00"). // feed + expense
		AddRow("2025-01-02", "45.50")   // expense only

	mock.ExpectQuery("UNION ALL").
		WithArgs("farm-1", "feed", "2025-01-01", "2025-01-31",
			"farm-1", "expense", "2025-01-01", "2025-01-31").
		WillReturnRows(rows)

	got, err := repo.DailyCosts(context.Background(), "farm-1", "2025-01-01", "2025-01-31")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-01", got[0].Date)
	assert.Equal(t, "310", got[0].Total.String())
	assert.Equal(t, "45.5", got[1].Total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportsPostgres_TopBuyers(t *testing.T) {
	ctx := context.Background()

	t.Run("missing buyer becomes placeholder", func(t *testing.T) {
		repo, mock, done := newReports(t)
		defer done()

		rows := sqlmock.NewRows([]string{"buyer", "revenue"}).
			AddRow("acme", "900.00").
			AddRow(nil, "120.00")

		mock.ExpectQuery("SELECT doc->>'buyer' AS buyer, SUM").
			WithArgs("farm-1", "sale", 5).
			WillReturnRows(rows)

		got, err := repo.TopBuyers(ctx, "farm-1", "", "", 5)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "acme", got[0].Buyer)
		assert.Equal(t, "(unknown)", got[1].Buyer)
	})

	t.Run("limit is clamped to at least one", func(t *testing.T) {
		repo, mock, done := newReports(t)
		defer done()

		mock.ExpectQuery("SELECT doc->>'buyer' AS buyer, SUM").
			WithArgs("farm-1", "sale", 1).
			WillReturnRows(sqlmock.NewRows([]string{"buyer", "revenue"}))

		_, err := repo.TopBuyers(ctx, "farm-1", "", "", 0)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
