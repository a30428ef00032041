package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"deskqueue/internal/model"
	"deskqueue/internal/repository"
)

// QueuePostgres is a PostgreSQL implementation of repository.QueueRepository.
type QueuePostgres struct {
	db *sql.DB
}

// NewQueuePostgres creates a new QueuePostgres repository.
func NewQueuePostgres(db *sql.DB) *QueuePostgres {
	return &QueuePostgres{db: db}
}

var _ repository.QueueRepository = (*QueuePostgres)(nil)

// Replace deletes the service desk's queues, inserts the new set and the sync row in one transaction.
// Concurrent replaces of the same service desk are serialized by a transaction-scoped advisory lock.
// When a listing repeats a queue id, the first occurrence wins.
func (r *QueuePostgres) Replace(ctx context.Context, sync *model.QueueSync, queues []model.Queue) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qLock = `SELECT pg_advisory_xact_lock(hashtext($1))`
	if _, err = tx.ExecContext(ctx, qLock, sync.ServiceDeskID); err != nil {
		return fmt.Errorf("lock service desk: %w", err)
	}

	const qDelete = `DELETE FROM service_desk_queues WHERE service_desk_id = $1`
	if _, err = tx.ExecContext(ctx, qDelete, sync.ServiceDeskID); err != nil {
		return fmt.Errorf("delete queues: %w", err)
	}

	const qInsert = `
		INSERT INTO service_desk_queues (service_desk_id, id, name, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (service_desk_id, id) DO NOTHING
	`
	for i, q := range queues {
		if _, err = tx.ExecContext(ctx, qInsert, sync.ServiceDeskID, q.ID(), q.Name(), i); err != nil {
			return fmt.Errorf("insert queue %s: %w", q.ID(), err)
		}
	}

	const qSync = `
		INSERT INTO queue_syncs (id, service_desk_id, snapshot_key, queue_count, synced_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err = tx.ExecContext(ctx, qSync,
		sync.ID,
		sync.ServiceDeskID,
		sync.SnapshotKey,
		sync.QueueCount,
		sync.SyncedAt,
	); err != nil {
		return fmt.Errorf("insert sync: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns queues using LIMIT/OFFSET pagination and a total count.
func (r *QueuePostgres) List(ctx context.Context, serviceDeskID string, pq repository.PageQuery) (*repository.PageResult[model.Queue], error) {
	const qCount = `SELECT COUNT(*) FROM service_desk_queues WHERE service_desk_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, serviceDeskID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, name
		FROM service_desk_queues
		WHERE service_desk_id = $1
		ORDER BY position ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, serviceDeskID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Queue, 0)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		items = append(items, model.NewQueue(id, name))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Queue]{
		Items: items,
		Total: total,
	}, nil
}

// FindByID fetches a single queue of a service desk.
func (r *QueuePostgres) FindByID(ctx context.Context, serviceDeskID, queueID string) (*model.Queue, error) {
	const q = `
		SELECT id, name
		FROM service_desk_queues
		WHERE service_desk_id = $1 AND id = $2
	`
	var id, name string
	if err := r.db.QueryRowContext(ctx, q, serviceDeskID, queueID).Scan(&id, &name); err != nil {
		return nil, err
	}
	queue := model.NewQueue(id, name)
	return &queue, nil
}

// LatestSync returns the most recent sync row for a service desk.
func (r *QueuePostgres) LatestSync(ctx context.Context, serviceDeskID string) (*model.QueueSync, error) {
	const q = `
		SELECT id, service_desk_id, snapshot_key, queue_count, synced_at
		FROM queue_syncs
		WHERE service_desk_id = $1
		ORDER BY synced_at DESC
		LIMIT 1
	`
	var s model.QueueSync
	if err := r.db.QueryRowContext(ctx, q, serviceDeskID).Scan(
		&s.ID,
		&s.ServiceDeskID,
		&s.SnapshotKey,
		&s.QueueCount,
		&s.SyncedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
