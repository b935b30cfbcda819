package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmledger/internal/fault"
	"farmledger/internal/model"
	"farmledger/internal/repository"
)

func newExpenseStore(t *testing.T) (*RecordStore[model.Expense, *model.Expense], sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewRecordStore[model.Expense, *model.Expense](db, model.KindExpense, nil)
	return store, mock, func() { db.Close() }
}

func testExpense(farmID string) *model.Expense {
	e := model.NewExpense(farmID)
	e.Date = "2025-01-15"
	e.Category = "Feed"
	e.Amount = decimal.RequireFromString("120.50")
	return e
}

func TestRecordStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		e := testExpense("farm-1")
		mock.ExpectExec("INSERT INTO records").
			WithArgs("farm-1", e.ID, "expense", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		created, err := store.Create(ctx, e, "farm-1")

		assert.NoError(t, err)
		assert.Equal(t, e.ID, created.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("id collision maps to AlreadyExists", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		e := testExpense("farm-1")
		mock.ExpectExec("INSERT INTO records").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := store.Create(ctx, e, "farm-1")

		assert.True(t, fault.IsAlreadyExists(err))
	})

	t.Run("missing partition key", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		_, err := store.Create(ctx, testExpense(""), "")

		assert.True(t, fault.IsInvalidArgument(err))
	})

	t.Run("farm id mismatch", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		_, err := store.Create(ctx, testExpense("farm-1"), "farm-2")

		assert.True(t, fault.IsInvalidArgument(err))
	})

	t.Run("kind mismatch", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		e := testExpense("farm-1")
		e.Kind = model.KindSale

		_, err := store.Create(ctx, e, "farm-1")

		assert.True(t, fault.IsInvalidArgument(err))
	})
}

func TestRecordStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		e := testExpense("farm-1")
		doc, err := json.Marshal(e)
		require.NoError(t, err)

		mock.ExpectQuery("SELECT doc FROM records").
			WithArgs("farm-1", e.ID, "expense").
			WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(doc))

		got, err := store.Get(ctx, e.ID, "farm-1")

		require.NoError(t, err)
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, "farm-1", got.FarmID)
		assert.True(t, got.Amount.Equal(e.Amount))
	})

	t.Run("miss maps to NotFound", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		mock.ExpectQuery("SELECT doc FROM records").
			WithArgs("farm-1", "missing", "expense").
			WillReturnError(sql.ErrNoRows)

		_, err := store.Get(ctx, "missing", "farm-1")

		assert.True(t, fault.IsNotFound(err))
	})

	t.Run("missing partition key", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		_, err := store.Get(ctx, "some-id", "")

		assert.True(t, fault.IsInvalidArgument(err))
	})

	t.Run("transient backend error maps to Unavailable", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		mock.ExpectQuery("SELECT doc FROM records").
			WillReturnError(&pgconn.PgError{Code: "53300"})

		_, err := store.Get(ctx, "some-id", "farm-1")

		assert.True(t, fault.IsUnavailable(err))
	})
}

func TestRecordStore_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps updated_at", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return now }

		e := testExpense("farm-1")
		require.Nil(t, e.UpdatedAt)

		mock.ExpectExec("INSERT INTO records").
			WithArgs("farm-1", e.ID, "expense", sqlmock.AnyArg(), now, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		saved, err := store.Upsert(ctx, e, "farm-1")

		require.NoError(t, err)
		require.NotNil(t, saved.UpdatedAt)
		assert.Equal(t, now, *saved.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updated_at strictly increases across upserts", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		clock := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}

		e := testExpense("farm-1")
		mock.ExpectExec("INSERT INTO records").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO records").WillReturnResult(sqlmock.NewResult(0, 1))

		first, err := store.Upsert(ctx, e, "farm-1")
		require.NoError(t, err)
		firstAt := *first.UpdatedAt

		second, err := store.Upsert(ctx, e, "farm-1")
		require.NoError(t, err)

		assert.True(t, second.UpdatedAt.After(firstAt))
	})

	t.Run("missing partition key", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		_, err := store.Upsert(ctx, testExpense(""), "")

		assert.True(t, fault.IsInvalidArgument(err))
	})

	t.Run("kind mismatch", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		// A foreign kind written through this store would be invisible to
		// its own Get and Query, which both filter on the store kind.
		e := testExpense("farm-1")
		e.Kind = model.KindSale

		_, err := store.Upsert(ctx, e, "farm-1")

		assert.True(t, fault.IsInvalidArgument(err))
	})
}

func TestRecordStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent across repeated deletes", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		mock.ExpectExec("DELETE FROM records").
			WithArgs("farm-1", "rec-1", "expense").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM records").
			WithArgs("farm-1", "rec-1", "expense").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, store.Delete(ctx, "rec-1", "farm-1"))
		assert.NoError(t, store.Delete(ctx, "rec-1", "farm-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing partition key", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		err := store.Delete(ctx, "rec-1", "")

		assert.True(t, fault.IsInvalidArgument(err))
	})
}

func TestRecordStore_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("streams matching records", func(t *testing.T) {
		store, mock, done := newExpenseStore(t)
		defer done()

		e1 := testExpense("farm-1")
		e2 := testExpense("farm-1")
		e2.Date = "2025-01-20"
		doc1, _ := json.Marshal(e1)
		doc2, _ := json.Marshal(e2)

		mock.ExpectQuery("SELECT doc FROM records WHERE farm_id").
			WithArgs("farm-1", "expense", "2025-01-01", "2025-01-31", "Feed").
			WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(doc2).AddRow(doc1))

		f := repository.NewFilter("farm-1", model.KindExpense).
			DateFrom("2025-01-01").
			DateTo("2025-01-31").
			Equals(repository.FieldCategory, "Feed").
			OrderByDate(true)

		cur, err := store.Query(ctx, f)
		require.NoError(t, err)
		defer cur.Close()

		var got []*model.Expense
		for cur.Next() {
			got = append(got, cur.Record())
		}

		require.NoError(t, cur.Err())
		require.Len(t, got, 2)
		assert.Equal(t, "2025-01-20", got[0].Date)
		assert.Equal(t, e1.ID, got[1].ID)
		for _, e := range got {
			assert.Equal(t, "farm-1", e.FarmID)
		}
	})

	t.Run("filter kind must match store kind", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		_, err := store.Query(ctx, repository.NewFilter("farm-1", model.KindSale))

		assert.True(t, fault.IsInvalidArgument(err))
	})

	t.Run("nil filter", func(t *testing.T) {
		store, _, done := newExpenseStore(t)
		defer done()

		_, err := store.Query(ctx, nil)

		assert.True(t, fault.IsInvalidArgument(err))
	})
}

func TestCompileFilter(t *testing.T) {
	t.Run("tenant and kind clauses come first", func(t *testing.T) {
		f := repository.NewFilter("farm-1", model.KindSale).
			DateFrom("2025-01-01").
			Equals(repository.FieldBuyer, "acme")

		where, args, err := compileFilter(f)

		require.NoError(t, err)
		assert.Equal(t, `farm_id = $1 AND kind = $2 AND doc->>'date' >= $3 AND doc->>'buyer' = $4`, where)
		assert.Equal(t, []any{"farm-1", "sale", "2025-01-01", "acme"}, args)
	})

	t.Run("empty optional values produce no clause", func(t *testing.T) {
		f := repository.NewFilter("farm-1", model.KindEgg).
			DateFrom("").
			DateTo("").
			Equals(repository.FieldShedID, "")

		where, args, err := compileFilter(f)

		require.NoError(t, err)
		assert.Equal(t, `farm_id = $1 AND kind = $2`, where)
		assert.Len(t, args, 2)
	})

	t.Run("missing farm id", func(t *testing.T) {
		_, _, err := compileFilter(repository.NewFilter("", model.KindEgg))

		assert.True(t, fault.IsInvalidArgument(err))
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		f := repository.NewFilter("farm-1", model.KindEgg).
			Equals(repository.Field("doc->>'x'; DROP TABLE records"), "v")

		_, _, err := compileFilter(f)

		assert.True(t, fault.IsInvalidArgument(err))
	})
}

func TestTransientPgCode(t *testing.T) {
	assert.True(t, transientPgCode("08006"))
	assert.True(t, transientPgCode("53300"))
	assert.True(t, transientPgCode("57014"))
	assert.True(t, transientPgCode("40001"))
	assert.False(t, transientPgCode("23505"))
	assert.False(t, transientPgCode("42601"))
}
