package mocks

import (
	"context"

	"deskqueue/internal/model"
	"deskqueue/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) Replace(ctx context.Context, sync *model.QueueSync, queues []model.Queue) error {
	args := m.Called(ctx, sync, queues)
	return args.Error(0)
}

func (m *MockQueueRepository) List(ctx context.Context, serviceDeskID string, pq repository.PageQuery) (*repository.PageResult[model.Queue], error) {
	args := m.Called(ctx, serviceDeskID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Queue]), args.Error(1)
}

func (m *MockQueueRepository) FindByID(ctx context.Context, serviceDeskID, queueID string) (*model.Queue, error) {
	args := m.Called(ctx, serviceDeskID, queueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Queue), args.Error(1)
}

func (m *MockQueueRepository) LatestSync(ctx context.Context, serviceDeskID string) (*model.QueueSync, error) {
	args := m.Called(ctx, serviceDeskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QueueSync), args.Error(1)
}
