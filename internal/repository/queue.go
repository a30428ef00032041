// Package repository contains data access abstractions. Implementations live in
// subpackages (e.g. postgres).
package repository

import (
	"context"

	"deskqueue/internal/model"
)

// QueueRepository stores the queues of each service desk together with the
// record of the sync that produced them.
type QueueRepository interface {
	// Replace swaps the stored queues of sync.ServiceDeskID for queues and records sync,
	// atomically. Queue order is kept as given.
	Replace(ctx context.Context, sync *model.QueueSync, queues []model.Queue) error

	// List returns a page of a service desk's queues in stored order and the total count.
	List(ctx context.Context, serviceDeskID string, pq PageQuery) (*PageResult[model.Queue], error)

	// FindByID returns one queue. It returns sql.ErrNoRows when the queue is not stored.
	FindByID(ctx context.Context, serviceDeskID, queueID string) (*model.Queue, error)

	// LatestSync returns the newest sync of a service desk, or sql.ErrNoRows.
	LatestSync(ctx context.Context, serviceDeskID string) (*model.QueueSync, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
