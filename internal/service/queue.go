package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"deskqueue/internal/logger"
	"deskqueue/internal/model"
	"deskqueue/internal/repository"
	"deskqueue/internal/servicedesk"
	"deskqueue/internal/storage"
)

const (
	snapshotPrefix      = "snapshots"
	snapshotContentType = "application/json"
	defaultListLimit    = 10
	maxListLimit        = 100
	defaultURLExpiry    = 15 * time.Minute
)

var (
	ErrServiceDeskIDRequired = errors.New("service desk id is required")
	ErrQueueIDRequired       = errors.New("queue id is required")
	ErrNotFound              = errors.New("not found")
	ErrServiceDeskNotFound   = errors.New("service desk not found upstream")
	ErrUpstream              = errors.New("service desk upstream failure")
)

var tracer = otel.Tracer("deskqueue/internal/service")

// QueueListResult is the service-level DTO for paginated queues.
type QueueListResult struct {
	Items []model.Queue `json:"data"`
	Total int           `json:"total"`
}

// SnapshotLink is a temporary download URL for an archived listing.
type SnapshotLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	SyncedAt  time.Time `json:"synced_at"`
}

// snapshot is the JSON document archived for every sync.
type snapshot struct {
	ServiceDeskID string        `json:"service_desk_id"`
	FetchedAt     time.Time     `json:"fetched_at"`
	Queues        []model.Queue `json:"queues"`
}

// QueueService defines the use cases for service desk queues.
type QueueService interface {
	// Sync fetches the service desk's queues upstream, archives them as a snapshot
	// and replaces the stored copy. The snapshot is removed again if storing fails.
	Sync(ctx context.Context, serviceDeskID string) (*model.QueueSync, error)

	// List returns stored queues using limit/offset and a total count.
	// limit defaults to 10 and is capped at 100.
	List(ctx context.Context, serviceDeskID string, limit, offset int) (*QueueListResult, error)

	// Get returns a single stored queue.
	Get(ctx context.Context, serviceDeskID, queueID string) (*model.Queue, error)

	// SnapshotURL returns a presigned URL for the latest snapshot of a service desk.
	SnapshotURL(ctx context.Context, serviceDeskID string) (*SnapshotLink, error)

	// Upstream returns the queues Jira currently reports without storing them.
	// The listing may come from the client cache.
	Upstream(ctx context.Context, serviceDeskID string) (*QueueListResult, error)
}

type queueService struct {
	source    servicedesk.QueueLister
	store     storage.Storage
	repo      repository.QueueRepository
	urlExpiry time.Duration
	now       func() time.Time
}

// NewQueueService constructs a new QueueService. A non-positive urlExpiry uses 15 minutes.
func NewQueueService(source servicedesk.QueueLister, store storage.Storage, repo repository.QueueRepository, urlExpiry time.Duration) QueueService {
	if urlExpiry <= 0 {
		urlExpiry = defaultURLExpiry
	}
	return &queueService{
		source:    source,
		store:     store,
		repo:      repo,
		urlExpiry: urlExpiry,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *queueService) Sync(ctx context.Context, serviceDeskID string) (_ *model.QueueSync, err error) {
	if serviceDeskID == "" {
		return nil, ErrServiceDeskIDRequired
	}

	ctx, span := tracer.Start(ctx, "QueueService.Sync")
	span.SetAttributes(attribute.String("servicedesk.id", serviceDeskID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	log := logger.L(ctx).With(zap.String("service_desk_id", serviceDeskID))

	// A sync always reaches Jira; a cached listing would archive stale data as new.
	fetch := s.source.ListQueues
	if r, ok := s.source.(servicedesk.Refresher); ok {
		fetch = r.Refresh
	}
	queues, err := fetch(ctx, serviceDeskID)
	if err != nil {
		log.Warn("queue fetch failed", zap.Error(err))
		return nil, upstreamError(err)
	}

	syncID := uuid.New().String()
	fetchedAt := s.now()
	body, err := json.Marshal(snapshot{ServiceDeskID: serviceDeskID, FetchedAt: fetchedAt, Queues: queues})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := path.Join(snapshotPrefix, serviceDeskID, syncID+".json")
	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: snapshotContentType,
		Metadata: map[string]string{
			"service-desk-id": serviceDeskID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}

	sync := &model.QueueSync{
		ID:            syncID,
		ServiceDeskID: serviceDeskID,
		SnapshotKey:   objInfo.Key,
		QueueCount:    len(queues),
		SyncedAt:      fetchedAt,
	}
	if err := s.repo.Replace(ctx, sync, queues); err != nil {
		if delErr := s.store.Delete(ctx, objInfo.Key); delErr != nil {
			log.Error("snapshot rollback failed", zap.String("snapshot_key", objInfo.Key), zap.Error(delErr))
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	log.Info("queues synced", zap.Int("queue_count", sync.QueueCount), zap.String("snapshot_key", sync.SnapshotKey))
	span.SetAttributes(attribute.Int("servicedesk.queue_count", sync.QueueCount))
	return sync, nil
}

func (s *queueService) List(ctx context.Context, serviceDeskID string, limit, offset int) (*QueueListResult, error) {
	if serviceDeskID == "" {
		return nil, ErrServiceDeskIDRequired
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, serviceDeskID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &QueueListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *queueService) Get(ctx context.Context, serviceDeskID, queueID string) (*model.Queue, error) {
	if serviceDeskID == "" {
		return nil, ErrServiceDeskIDRequired
	}
	if queueID == "" {
		return nil, ErrQueueIDRequired
	}
	q, err := s.repo.FindByID(ctx, serviceDeskID, queueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *queueService) SnapshotURL(ctx context.Context, serviceDeskID string) (*SnapshotLink, error) {
	if serviceDeskID == "" {
		return nil, ErrServiceDeskIDRequired
	}
	latest, err := s.repo.LatestSync(ctx, serviceDeskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	issuedAt := s.now()
	u, err := s.store.PresignGet(ctx, latest.SnapshotKey, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}
	return &SnapshotLink{
		URL:       u,
		ExpiresAt: issuedAt.Add(s.urlExpiry),
		SyncedAt:  latest.SyncedAt,
	}, nil
}

func (s *queueService) Upstream(ctx context.Context, serviceDeskID string) (*QueueListResult, error) {
	if serviceDeskID == "" {
		return nil, ErrServiceDeskIDRequired
	}
	queues, err := s.source.ListQueues(ctx, serviceDeskID)
	if err != nil {
		return nil, upstreamError(err)
	}
	return &QueueListResult{Items: queues, Total: len(queues)}, nil
}

func upstreamError(err error) error {
	if errors.Is(err, servicedesk.ErrNotFound) {
		return ErrServiceDeskNotFound
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
