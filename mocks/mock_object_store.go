package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"freightx/internal/port"
)

// MockObjectStore is a mock implementation of port.ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Get(ctx context.Context, bucket, key string) (*port.Object, error) {
	args := m.Called(ctx, bucket, key)
	obj, _ := args.Get(0).(*port.Object)
	return obj, args.Error(1)
}

func (m *MockObjectStore) Put(ctx context.Context, in port.PutInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}
