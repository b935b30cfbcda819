package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"farmledger/internal/repository"
)

// MockReportStore is a hand-written testify mock for the report store.
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) DailyEggs(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	args := m.Called(ctx, farmID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DayTotal), args.Error(1)
}

func (m *MockReportStore) DailyRevenue(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	args := m.Called(ctx, farmID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DayTotal), args.Error(1)
}

func (m *MockReportStore) DailyCosts(ctx context.Context, farmID, from, to string) ([]repository.DayTotal, error) {
	args := m.Called(ctx, farmID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DayTotal), args.Error(1)
}

func (m *MockReportStore) TopBuyers(ctx context.Context, farmID, from, to string, limit int) ([]repository.BuyerTotal, error) {
	args := m.Called(ctx, farmID, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BuyerTotal), args.Error(1)
}
