package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"farmledger/internal/model"
	"farmledger/internal/repository"
)

// MockExpenseStore is a hand-written testify mock for the expense record
// store.
type MockExpenseStore struct {
	mock.Mock
}

func (m *MockExpenseStore) Create(ctx context.Context, rec *model.Expense, farmID string) (*model.Expense, error) {
	args := m.Called(ctx, rec, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseStore) Get(ctx context.Context, id, farmID string) (*model.Expense, error) {
	args := m.Called(ctx, id, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseStore) Upsert(ctx context.Context, rec *model.Expense, farmID string) (*model.Expense, error) {
	args := m.Called(ctx, rec, farmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseStore) Delete(ctx context.Context, id, farmID string) error {
	args := m.Called(ctx, id, farmID)
	return args.Error(0)
}

func (m *MockExpenseStore) Query(ctx context.Context, f *repository.Filter) (repository.Cursor[*model.Expense], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.Cursor[*model.Expense]), args.Error(1)
}

// SliceCursor is an in-memory cursor over a fixed record slice, for tests.
type SliceCursor[P any] struct {
	Items []P
	pos   int
}

func (c *SliceCursor[P]) Next() bool {
	if c.pos >= len(c.Items) {
		return false
	}
	c.pos++
	return true
}

func (c *SliceCursor[P]) Record() P    { return c.Items[c.pos-1] }
func (c *SliceCursor[P]) Err() error   { return nil }
func (c *SliceCursor[P]) Close() error { return nil }
