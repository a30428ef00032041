package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"deskqueue/internal/model"
	"deskqueue/internal/repository"
	repoMocks "deskqueue/internal/repository/mocks"
	"deskqueue/internal/servicedesk"
	sdMocks "deskqueue/internal/servicedesk/mocks"
	"deskqueue/internal/storage"
	storeMocks "deskqueue/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func newTestService(src *sdMocks.MockQueueLister, store *storeMocks.MockStorage, repo *repoMocks.MockQueueRepository) *queueService {
	svc := NewQueueService(src, store, repo, 0).(*queueService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestQueueService_Sync(t *testing.T) {
	ctx := context.Background()
	queues := []model.Queue{
		model.NewQueue("10", "Unassigned issues"),
		model.NewQueue("11", ""),
	}

	putObject := func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
		return storage.ObjectInfo{Key: key, Size: opt.Size, ContentType: opt.ContentType}
	}

	tests := []struct {
		name       string
		id         string
		setupMocks func(src *sdMocks.MockQueueLister, mStore *storeMocks.MockStorage, mRepo *repoMocks.MockQueueRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			id:   "4",
			setupMocks: func(src *sdMocks.MockQueueLister, mStore *storeMocks.MockStorage, mRepo *repoMocks.MockQueueRepository) {
				src.On("ListQueues", mock.Anything, "4").Return(queues, nil)
				mStore.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "snapshots/4/") && strings.HasSuffix(key, ".json")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.ContentType == "application/json" && opt.Size > 0 && opt.Metadata["service-desk-id"] == "4"
				})).Return(putObject, nil)
				mRepo.On("Replace", mock.Anything, mock.MatchedBy(func(s *model.QueueSync) bool {
					return s.ServiceDeskID == "4" && s.QueueCount == 2 && s.SyncedAt.Equal(fixedNow) &&
						s.SnapshotKey == "snapshots/4/"+s.ID+".json"
				}), queues).Return(nil)
			},
		},
		{
			name:       "validation - empty service desk id",
			id:         "",
			setupMocks: func(*sdMocks.MockQueueLister, *storeMocks.MockStorage, *repoMocks.MockQueueRepository) {},
			wantErr:    ErrServiceDeskIDRequired,
		},
		{
			name: "upstream not found",
			id:   "404",
			setupMocks: func(src *sdMocks.MockQueueLister, mStore *storeMocks.MockStorage, mRepo *repoMocks.MockQueueRepository) {
				src.On("ListQueues", mock.Anything, "404").Return(nil, servicedesk.ErrNotFound)
			},
			wantErr: ErrServiceDeskNotFound,
		},
		{
			name: "upstream failure",
			id:   "4",
			setupMocks: func(src *sdMocks.MockQueueLister, mStore *storeMocks.MockStorage, mRepo *repoMocks.MockQueueRepository) {
				src.On("ListQueues", mock.Anything, "4").Return(nil, &servicedesk.APIError{StatusCode: 500, Message: "boom"})
			},
			wantErr: ErrUpstream,
		},
		{
			name: "storage error",
			id:   "4",
			setupMocks: func(src *sdMocks.MockQueueLister, mStore *storeMocks.MockStorage, mRepo *repoMocks.MockQueueRepository) {
				src.On("ListQueues", mock.Anything, "4").Return(queues, nil)
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload snapshot: storage fail",
		},
		{
			name: "repository error with successful rollback",
			id:   "4",
			setupMocks: func(src *sdMocks.MockQueueLister, mStore *storeMocks.MockStorage, mRepo *repoMocks.MockQueueRepository) {
				src.On("ListQueues", mock.Anything, "4").Return(queues, nil)
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(putObject, nil)
				mRepo.On("Replace", mock.Anything, mock.Anything, queues).Return(errors.New("db fail"))
				mStore.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "snapshots/4/")
				})).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name: "repository error with failed rollback",
			id:   "4",
			setupMocks: func(src *sdMocks.MockQueueLister, mStore *storeMocks.MockStorage, mRepo *repoMocks.MockQueueRepository) {
				src.On("ListQueues", mock.Anything, "4").Return(queues, nil)
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(putObject, nil)
				mRepo.On("Replace", mock.Anything, mock.Anything, queues).Return(errors.New("db fail"))
				mStore.On("Delete", mock.Anything, mock.Anything).Return(errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(sdMocks.MockQueueLister)
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockQueueRepository)
			svc := newTestService(src, mStore, mRepo)

			tt.setupMocks(src, mStore, mRepo)

			sync, err := svc.Sync(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sync)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Nil(t, sync)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 2, sync.QueueCount)
				assert.Equal(t, "4", sync.ServiceDeskID)
				assert.NotEmpty(t, sync.ID)
			}

			src.AssertExpectations(t)
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestQueueService_Sync_SnapshotBody(t *testing.T) {
	ctx := context.Background()
	src := new(sdMocks.MockQueueLister)
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockQueueRepository)
	svc := newTestService(src, mStore, mRepo)

	queues := []model.Queue{model.NewQueue("Q-100", "Support Requests"), model.NewQueue("", "")}
	var body []byte

	src.On("ListQueues", mock.Anything, "7").Return(queues, nil)
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			b, err := io.ReadAll(args.Get(2).(io.Reader))
			require.NoError(t, err)
			body = b
		}).
		Return(storage.ObjectInfo{Key: "snapshots/7/x.json"}, nil)
	mRepo.On("Replace", mock.Anything, mock.Anything, queues).Return(nil)

	_, err := svc.Sync(ctx, "7")
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"service_desk_id": "7",
		"fetched_at": "2026-10-18T09:30:00Z",
		"queues": [{"id": "Q-100", "name": "Support Requests"}, {"id": "", "name": ""}]
	}`, string(body))
}

func TestQueueService_Sync_RefetchesThroughCache(t *testing.T) {
	ctx := context.Background()
	upstream := new(sdMocks.MockQueueLister)
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockQueueRepository)

	before := []model.Queue{model.NewQueue("1", "Old")}
	after := []model.Queue{model.NewQueue("1", "New")}
	upstream.On("ListQueues", mock.Anything, "4").Return(before, nil).Once()
	upstream.On("ListQueues", mock.Anything, "4").Return(after, nil).Once()
	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "snapshots/4/x.json"}, nil)
	mRepo.On("Replace", mock.Anything, mock.Anything, before).Return(nil).Once()
	mRepo.On("Replace", mock.Anything, mock.Anything, after).Return(nil).Once()

	svc := NewQueueService(servicedesk.NewCachedLister(upstream, time.Minute), mStore, mRepo, 0)

	_, err := svc.Sync(ctx, "4")
	require.NoError(t, err)
	_, err = svc.Sync(ctx, "4")
	require.NoError(t, err)

	// The cache now holds the listing of the last sync.
	res, err := svc.Upstream(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, after, res.Items)

	upstream.AssertNumberOfCalls(t, "ListQueues", 2)
	mRepo.AssertExpectations(t)
}

func TestQueueService_Upstream(t *testing.T) {
	ctx := context.Background()
	queues := []model.Queue{model.NewQueue("10", "Unassigned issues"), model.NewQueue("11", "Assigned to me")}

	tests := []struct {
		name       string
		id         string
		setupMocks func(src *sdMocks.MockQueueLister)
		want       *QueueListResult
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "4",
			setupMocks: func(src *sdMocks.MockQueueLister) {
				src.On("ListQueues", mock.Anything, "4").Return(queues, nil)
			},
			want: &QueueListResult{Items: queues, Total: 2},
		},
		{
			name:       "validation - empty service desk id",
			id:         "",
			setupMocks: func(*sdMocks.MockQueueLister) {},
			wantErr:    ErrServiceDeskIDRequired,
		},
		{
			name: "upstream not found",
			id:   "404",
			setupMocks: func(src *sdMocks.MockQueueLister) {
				src.On("ListQueues", mock.Anything, "404").Return(nil, servicedesk.ErrNotFound)
			},
			wantErr: ErrServiceDeskNotFound,
		},
		{
			name: "upstream failure",
			id:   "4",
			setupMocks: func(src *sdMocks.MockQueueLister) {
				src.On("ListQueues", mock.Anything, "4").Return(nil, servicedesk.ErrUnauthorized)
			},
			wantErr: ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(sdMocks.MockQueueLister)
			svc := NewQueueService(src, nil, nil, 0)
			tt.setupMocks(src)

			res, err := svc.Upstream(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, res)
			}
			src.AssertExpectations(t)
		})
	}
}

func TestQueueService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		limit      int
		offset     int
		setupMocks func(mRepo *repoMocks.MockQueueRepository)
		wantErr    error
		checkRes   func(t *testing.T, res *QueueListResult)
	}{
		{
			name:   "happy path",
			id:     "4",
			limit:  10,
			offset: 0,
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {
				mRepo.On("List", ctx, "4", repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Queue]{
						Items: []model.Queue{model.NewQueue("1", "a"), model.NewQueue("2", "b")},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *QueueListResult) {
				assert.Equal(t, 2, len(res.Items))
				assert.Equal(t, 2, res.Total)
			},
		},
		{
			name:   "pagination boundary - zero limit uses default",
			id:     "4",
			limit:  0,
			offset: -1,
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {
				mRepo.On("List", ctx, "4", repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Queue]{Items: []model.Queue{}, Total: 0}, nil)
			},
		},
		{
			name:   "pagination boundary - oversized limit is capped",
			id:     "4",
			limit:  1000000000,
			offset: 20,
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {
				mRepo.On("List", ctx, "4", repository.PageQuery{Limit: 100, Offset: 20}).
					Return(&repository.PageResult[model.Queue]{Items: []model.Queue{}, Total: 0}, nil)
			},
		},
		{
			name:       "validation - empty service desk id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {},
			wantErr:    ErrServiceDeskIDRequired,
		},
		{
			name:  "repository error",
			id:    "4",
			limit: 10,
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {
				mRepo.On("List", ctx, "4", mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockQueueRepository)
			svc := NewQueueService(nil, nil, mRepo, 0)

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.id, tt.limit, tt.offset)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, res)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestQueueService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		sdID       string
		queueID    string
		setupMocks func(mRepo *repoMocks.MockQueueRepository)
		wantErr    error
	}{
		{
			name:    "happy path",
			sdID:    "4",
			queueID: "10",
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {
				q := model.NewQueue("10", "Unassigned issues")
				mRepo.On("FindByID", ctx, "4", "10").Return(&q, nil)
			},
		},
		{
			name:       "validation - empty service desk id",
			queueID:    "10",
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {},
			wantErr:    ErrServiceDeskIDRequired,
		},
		{
			name:       "validation - empty queue id",
			sdID:       "4",
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {},
			wantErr:    ErrQueueIDRequired,
		},
		{
			name:    "not found - mapping sql.ErrNoRows",
			sdID:    "4",
			queueID: "99",
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {
				mRepo.On("FindByID", ctx, "4", "99").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "generic repository error",
			sdID:    "4",
			queueID: "10",
			setupMocks: func(mRepo *repoMocks.MockQueueRepository) {
				mRepo.On("FindByID", ctx, "4", "10").Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockQueueRepository)
			svc := NewQueueService(nil, nil, mRepo, 0)

			tt.setupMocks(mRepo)

			q, err := svc.Get(ctx, tt.sdID, tt.queueID)

			if tt.wantErr != nil {
				switch {
				case errors.Is(tt.wantErr, ErrServiceDeskIDRequired),
					errors.Is(tt.wantErr, ErrQueueIDRequired),
					errors.Is(tt.wantErr, ErrNotFound):
					assert.ErrorIs(t, err, tt.wantErr)
				default:
					assert.Error(t, err)
				}
				assert.Nil(t, q)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.queueID, q.ID())
				assert.Equal(t, "Unassigned issues", q.Name())
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestQueueService_SnapshotURL(t *testing.T) {
	ctx := context.Background()
	syncedAt := fixedNow.Add(-time.Hour)

	t.Run("happy path", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockQueueRepository)
		svc := NewQueueService(nil, mStore, mRepo, 5*time.Minute).(*queueService)
		svc.now = func() time.Time { return fixedNow }

		mRepo.On("LatestSync", ctx, "4").Return(&model.QueueSync{SnapshotKey: "snapshots/4/a.json", SyncedAt: syncedAt}, nil)
		mStore.On("PresignGet", ctx, "snapshots/4/a.json", 5*time.Minute).Return("https://minio.local/a.json?sig=1", nil)

		link, err := svc.SnapshotURL(ctx, "4")

		require.NoError(t, err)
		assert.Equal(t, "https://minio.local/a.json?sig=1", link.URL)
		assert.Equal(t, fixedNow.Add(5*time.Minute), link.ExpiresAt)
		assert.Equal(t, syncedAt, link.SyncedAt)
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("default expiry", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockQueueRepository)
		svc := NewQueueService(nil, mStore, mRepo, 0)

		mRepo.On("LatestSync", ctx, "4").Return(&model.QueueSync{SnapshotKey: "k"}, nil)
		mStore.On("PresignGet", ctx, "k", 15*time.Minute).Return("u", nil)

		_, err := svc.SnapshotURL(ctx, "4")
		assert.NoError(t, err)
		mStore.AssertExpectations(t)
	})

	t.Run("no sync yet", func(t *testing.T) {
		mRepo := new(repoMocks.MockQueueRepository)
		svc := NewQueueService(nil, nil, mRepo, 0)

		mRepo.On("LatestSync", ctx, "4").Return(nil, sql.ErrNoRows)

		link, err := svc.SnapshotURL(ctx, "4")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, link)
	})

	t.Run("presign error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockQueueRepository)
		svc := NewQueueService(nil, mStore, mRepo, 0)

		mRepo.On("LatestSync", ctx, "4").Return(&model.QueueSync{SnapshotKey: "k"}, nil)
		mStore.On("PresignGet", ctx, "k", mock.Anything).Return("", errors.New("sign fail"))

		link, err := svc.SnapshotURL(ctx, "4")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "presign snapshot: sign fail")
		assert.Nil(t, link)
	})

	t.Run("validation - empty service desk id", func(t *testing.T) {
		svc := NewQueueService(nil, nil, nil, 0)
		_, err := svc.SnapshotURL(ctx, "")
		assert.ErrorIs(t, err, ErrServiceDeskIDRequired)
	})
}
