package mocks

import (
	"context"

	"deskqueue/internal/model"
	"deskqueue/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockQueueService struct {
	mock.Mock
}

func (m *MockQueueService) Sync(ctx context.Context, serviceDeskID string) (*model.QueueSync, error) {
	args := m.Called(ctx, serviceDeskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QueueSync), args.Error(1)
}

func (m *MockQueueService) List(ctx context.Context, serviceDeskID string, limit, offset int) (*service.QueueListResult, error) {
	args := m.Called(ctx, serviceDeskID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QueueListResult), args.Error(1)
}

func (m *MockQueueService) Get(ctx context.Context, serviceDeskID, queueID string) (*model.Queue, error) {
	args := m.Called(ctx, serviceDeskID, queueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Queue), args.Error(1)
}

func (m *MockQueueService) SnapshotURL(ctx context.Context, serviceDeskID string) (*service.SnapshotLink, error) {
	args := m.Called(ctx, serviceDeskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SnapshotLink), args.Error(1)
}

func (m *MockQueueService) Upstream(ctx context.Context, serviceDeskID string) (*service.QueueListResult, error) {
	args := m.Called(ctx, serviceDeskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QueueListResult), args.Error(1)
}
