package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"freightx/internal/domain"
)

// MockCheckpointStore is a mock implementation of port.CheckpointStore.
type MockCheckpointStore struct {
	mock.Mock
}

func (m *MockCheckpointStore) Load(ctx context.Context) ([]domain.CheckpointEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckpointEntry), args.Error(1)
}

func (m *MockCheckpointStore) Append(ctx context.Context, entries []domain.CheckpointEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockCheckpointStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
