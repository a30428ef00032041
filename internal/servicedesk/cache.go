package servicedesk

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"deskqueue/internal/model"
)

// Refresher fetches a listing upstream regardless of any cached copy.
type Refresher interface {
	Refresh(ctx context.Context, serviceDeskID string) ([]model.Queue, error)
}

// CachedLister keeps successful listings of next for ttl, keyed by service desk id.
// Errors are not cached.
type CachedLister struct {
	next  QueueLister
	cache *gocache.Cache
}

var (
	_ QueueLister = (*CachedLister)(nil)
	_ Refresher   = (*CachedLister)(nil)
)

// NewCachedLister wraps next with a TTL cache.
func NewCachedLister(next QueueLister, ttl time.Duration) *CachedLister {
	return &CachedLister{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedLister) ListQueues(ctx context.Context, serviceDeskID string) ([]model.Queue, error) {
	if v, ok := c.cache.Get(serviceDeskID); ok {
		return clone(v.([]model.Queue)), nil
	}

	return c.Refresh(ctx, serviceDeskID)
}

// Refresh always asks next and replaces the cached listing on success.
func (c *CachedLister) Refresh(ctx context.Context, serviceDeskID string) ([]model.Queue, error) {
	queues, err := c.next.ListQueues(ctx, serviceDeskID)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(serviceDeskID, clone(queues))
	return queues, nil
}

func clone(queues []model.Queue) []model.Queue {
	return append(make([]model.Queue, 0, len(queues)), queues...)
}
