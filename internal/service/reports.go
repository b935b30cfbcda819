package service

import (
	"context"

	"farmledger/internal/fault"
	"farmledger/internal/repository"
)

// DefaultTopBuyers is used when the caller asks for a non-positive count.
const DefaultTopBuyers = 5

// ReportService validates report parameters and delegates the aggregation
// to the store.
type ReportService struct {
	reports repository.ReportStore
}

func NewReportService(reports repository.ReportStore) *ReportService {
	return &ReportService{reports: reports}
}

func (s *ReportService) DailyEggs(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	if err := validateReportScope(farmID, from, to); err != nil {
		return nil, err
	}
	return s.reports.DailyEggs(ctx, farmID, from, to)
}

func (s *ReportService) DailyRevenue(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	if err := validateReportScope(farmID, from, to); err != nil {
		return nil, err
	}
	return s.reports.DailyRevenue(ctx, farmID, from, to)
}

// DailyCosts totals feed cost and expense amount per date across both
// sources.
func (s *ReportService) DailyCosts(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	if err := validateReportScope(farmID, from, to); err != nil {
		return nil, err
	}
	return s.reports.DailyCosts(ctx, farmID, from, to)
}

// TopBuyers returns the highest-revenue buyers for the period. top falls
// back to DefaultTopBuyers when non-positive.
func (s *ReportService) TopBuyers(ctx context.Context, farmID, from, to string, top int) ([]repository.BuyerTotal, error) {
	if err := validateReportScope(farmID, from, to); err != nil {
		return nil, err
	}
	if top <= 0 {
		top = DefaultTopBuyers
	}
	return s.reports.TopBuyers(ctx, farmID, from, to, top)
}

func validateReportScope(farmID, from, to string) error {
	if farmID == "" {
		return fault.InvalidArgument("farm id is required")
	}
	return validateDateBounds(from, to)
}
