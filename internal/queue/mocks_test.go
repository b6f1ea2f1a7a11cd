package queue

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fjacquet/finsort/internal/models"
)

type MockTaxonomy struct {
	mock.Mock
}

func (m *MockTaxonomy) Options(ctx context.Context, dir models.Direction) ([]string, error) {
	args := m.Called(ctx, dir)
	options, _ := args.Get(0).([]string)
	return options, args.Error(1)
}

func (m *MockTaxonomy) AddClassification(ctx context.Context, name, activity string, dir models.Direction) error {
	args := m.Called(ctx, name, activity, dir)
	return args.Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordDecision(ctx context.Context, label, activity string, dir models.Direction) error {
	args := m.Called(ctx, label, activity, dir)
	return args.Error(0)
}

type MockReclassifier struct {
	mock.Mock
}

func (m *MockReclassifier) ReclassifyAll(ctx context.Context, records []models.TransactionRecord) ([]models.TransactionRecord, error) {
	args := m.Called(ctx, records)
	if fn, ok := args.Get(0).(func(context.Context, []models.TransactionRecord) ([]models.TransactionRecord, error)); ok {
		return fn(ctx, records)
	}
	out, _ := args.Get(0).([]models.TransactionRecord)
	return out, args.Error(1)
}

// echoReclassifier returns the ledger it receives unchanged.
func echoReclassifier(m *MockReclassifier) *mock.Call {
	return m.On("ReclassifyAll", mock.Anything, mock.Anything).
		Return(func(_ context.Context, records []models.TransactionRecord) ([]models.TransactionRecord, error) {
			return records, nil
		}, nil)
}
