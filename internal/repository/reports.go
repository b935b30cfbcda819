package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// DayTotal is one aggregate row keyed by date.
type DayTotal struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// BuyerTotal is one aggregate row keyed by buyer.
type BuyerTotal struct {
	Buyer   string          `json:"buyer"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ReportStore runs the aggregate reporting queries. Every query is scoped
// to one farm; from/to are optional yyyy-MM-dd bounds and produce no clause
// when empty.
type ReportStore interface {
	// DailyEggs sums eggs collected per date.
	DailyEggs(ctx context.Context, farmID, from, to string) ([]DayTotal, error)

	// DailyRevenue sums quantity * unit price over sales per date.
	DailyRevenue(ctx context.Context, farmID, from, to string) ([]DayTotal, error)

	// DailyCosts merges two independently grouped sub-aggregations, feed
	// cost (quantity * cost per kg) and expense amount, into one total
	// per date. Dates present in only one source still appear.
	DailyCosts(ctx context.Context, farmID, from, to string) ([]DayTotal, error)

	// TopBuyers returns up to limit buyers ordered by revenue descending.
	// A missing buyer on a sale is reported as "(unknown)".
	TopBuyers(ctx context.Context, farmID, from, to string, limit int) ([]BuyerTotal, error)
}
