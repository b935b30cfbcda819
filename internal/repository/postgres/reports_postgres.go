package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"farmledger/internal/fault"
	"farmledger/internal/model"
	"farmledger/internal/repository"
)

// ReportsPostgres runs the aggregate reporting queries over the records
// table. Result rows are converted to their typed shapes here, once, at the
// store boundary.
type ReportsPostgres struct {
	db *sql.DB
}

// NewReportsPostgres creates a report store over db.
func NewReportsPostgres(db *sql.DB) *ReportsPostgres {
	return &ReportsPostgres{db: db}
}

var _ repository.ReportStore = (*ReportsPostgres)(nil)

// DailyEggs sums eggs collected per date for one farm.
func (r *ReportsPostgres) DailyEggs(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	a := &binder{}
	where, err := a.whereKind(farmID, model.KindEgg, from, to)
	if err != nil {
		return nil, err
	}
	q := `
		SELECT doc->>'date' AS date, SUM((doc->>'eggsCollected')::numeric) AS total
		FROM records
		WHERE ` + where + `
		GROUP BY doc->>'date'
		ORDER BY doc->>'date' ASC
	`
	return r.queryDayTotals(ctx, "daily eggs report", q, a.args)
}

// DailyRevenue sums quantity * unit price over sales per date.
func (r *ReportsPostgres) DailyRevenue(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	a := &binder{}
	where, err := a.whereKind(farmID, model.KindSale, from, to)
	if err != nil {
		return nil, err
	}
	q := `
		SELECT doc->>'date' AS date, SUM((doc->>'quantity')::numeric * (doc->>'unitPrice')::numeric) AS total
		FROM records
		WHERE ` + where + `
		GROUP BY doc->>'date'
		ORDER BY doc->>'date' ASC
	`
	return r.queryDayTotals(ctx, "daily revenue report", q, a.args)
}

// DailyCosts merges feed cost and expense amount into one total per date.
// The two kinds carry different numeric fields, so each is filtered and
// grouped independently before the union is grouped and summed again; a
// date present in only one source still yields a row.
func (r *ReportsPostgres) DailyCosts(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	a := &binder{}
	feedWhere, err := a.whereKind(farmID, model.KindFeed, from, to)
	if err != nil {
		return nil, err
	}
	expWhere, err := a.whereKind(farmID, model.KindExpense, from, to)
	if err != nil {
		return nil, err
	}
	q := `
		SELECT t.date, SUM(t.total) AS total FROM (
			SELECT doc->>'date' AS date,
			       SUM((doc->>'quantityKg')::numeric * COALESCE((doc->>'costPerKg')::numeric, 0)) AS total
			FROM records
			WHERE ` + feedWhere + `
			GROUP BY doc->>'date'
			UNION ALL
			SELECT doc->>'date' AS date, SUM((doc->>'amount')::numeric) AS total
			FROM records
			WHERE ` + expWhere + `
			GROUP BY doc->>'date'
		) t
		GROUP BY t.date
		ORDER BY t.date ASC
	`
	return r.queryDayTotals(ctx, "daily costs report", q, a.args)
}

// TopBuyers returns up to limit buyers by revenue, descending. Sales with
// no buyer recorded are reported under "(unknown)".
func (r *ReportsPostgres) TopBuyers(ctx context.Context, farmID, from, to string, limit int) ([]repository.BuyerTotal, error) {
	if limit < 1 {
		limit = 1
	}
	a := &binder{}
	where, err := a.whereKind(farmID, model.KindSale, from, to)
	if err != nil {
		return nil, err
	}
	q := `
		SELECT doc->>'buyer' AS buyer, SUM((doc->>'quantity')::numeric * (doc->>'unitPrice')::numeric) AS revenue
		FROM records
		WHERE ` + where + `
		GROUP BY doc->>'buyer'
		ORDER BY revenue DESC
		LIMIT ` + a.bind(limit)

	rows, err := r.db.QueryContext(ctx, q, a.args...)
	if err != nil {
		return nil, translateErr("top buyers report", err)
	}
	defer rows.Close()

	out := make([]repository.BuyerTotal, 0)
	for rows.Next() {
		var buyer sql.NullString
		var revenue decimal.Decimal
		if err := rows.Scan(&buyer, &revenue); err != nil {
			return nil, translateErr("top buyers report", err)
		}
		name := buyer.String
		if !buyer.Valid || name == "" {
			name = "(unknown)"
		}
		out = append(out, repository.BuyerTotal{Buyer: name, Revenue: revenue})
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr("top buyers report", err)
	}
	return out, nil
}

func (r *ReportsPostgres) queryDayTotals(ctx context.Context, op, q string, args []any) ([]repository.DayTotal, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translateErr(op, err)
	}
	defer rows.Close()

	out := make([]repository.DayTotal, 0)
	for rows.Next() {
		var row repository.DayTotal
		if err := rows.Scan(&row.Date, &row.Total); err != nil {
			return nil, translateErr(op, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(op, err)
	}
	return out, nil
}

// binder accumulates positional bind parameters while query text is
// assembled. Values never appear in the text itself.
type binder struct {
	args []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// whereKind renders the mandatory tenant and kind clauses plus optional
// date bounds. Empty bounds produce no clause.
func (b *binder) whereKind(farmID string, kind model.Kind, from, to string) (string, error) {
	if farmID == "" {
		return "", fault.InvalidArgument("farm id is required")
	}
	w := fmt.Sprintf("farm_id = %s AND kind = %s", b.bind(farmID), b.bind(string(kind)))
	if from != "" {
		w += " AND doc->>'date' >= " + b.bind(from)
	}
	if to != "" {
		w += " AND doc->>'date' <= " + b.bind(to)
	}
	return w, nil
}
