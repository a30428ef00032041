package mocks

import (
	"context"

	"deskqueue/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockQueueLister struct {
	mock.Mock
}

func (m *MockQueueLister) ListQueues(ctx context.Context, serviceDeskID string) ([]model.Queue, error) {
	args := m.Called(ctx, serviceDeskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Queue), args.Error(1)
}
