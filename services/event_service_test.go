package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-storefront/internal/status"
	"ticket-storefront/models"
)

func setupEventService(store *stubStore) (*EventService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewEventService(store, db, 5*time.Minute, 30*time.Minute), mock
}

func entryJSON(t *testing.T, ev models.Event, cachedAt time.Time) string {
	t.Helper()
	data, err := json.Marshal(cacheEntry{Data: ev, CachedAt: cachedAt.Unix()})
	require.NoError(t, err)
	return string(data)
}

func TestEventService_Events_MemoryCache(t *testing.T) {
	fetches := 0
	store := &stubStore{
		eventsFn: func(ctx context.Context) ([]models.Event, error) {
			fetches++
			return []models.Event{{EventID: "e1", Title: "Concert"}}, nil
		},
	}
	svc, _ := setupEventService(store)

	first, err := svc.Events(context.Background(), false)
	require.NoError(t, err)
	second, err := svc.Events(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetches, "second read must come from the memory cache")

	_, err = svc.Events(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches, "force bypasses the cache")
}

func TestEventService_Events_InvalidateDropsCache(t *testing.T) {
	fetches := 0
	store := &stubStore{
		eventsFn: func(ctx context.Context) ([]models.Event, error) {
			fetches++
			return nil, nil
		},
	}
	svc, _ := setupEventService(store)

	_, err := svc.Events(context.Background(), false)
	require.NoError(t, err)
	svc.Invalidate()
	_, err = svc.Events(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestEventService_Filter(t *testing.T) {
	store := &stubStore{
		eventsFn: func(ctx context.Context) ([]models.Event, error) {
			return []models.Event{
				{EventID: "e1", Title: "Jazz Night", Venue: "Hall A", Category: "music", Status: models.EventPublished},
				{EventID: "e2", Title: "Food Fair", Venue: "Park", Category: "food", Status: models.EventPublished},
				{EventID: "e3", Title: "Rock Show", Venue: "Hall B", Category: "music", Status: models.EventDraft},
			}, nil
		},
	}
	svc, _ := setupEventService(store)
	ctx := context.Background()

	byCategory, err := svc.Filter(ctx, EventFilter{Category: "music"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	// Legacy status vocabulary is accepted in filters.
	byStatus, err := svc.Filter(ctx, EventFilter{Status: "ACTIVE"})
	require.NoError(t, err)
	require.Len(t, byStatus, 2)

	bySearch, err := svc.Filter(ctx, EventFilter{Search: "hall"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	combined, err := svc.Filter(ctx, EventFilter{Category: "music", Search: "jazz"})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, "e1", combined[0].EventID)
}

func TestEventService_CachedEventByID_Hit(t *testing.T) {
	store := &stubStore{
		eventByIDFn: func(ctx context.Context, eventID string) (*models.Event, error) {
			t.Fatal("backend must not be hit on a cache hit")
			return nil, nil
		},
	}
	svc, mock := setupEventService(store)
	defer mock.ClearExpect()

	ev := models.Event{EventID: "e1", Title: "Cached Concert"}
	mock.ExpectGet("event:cache:e1").SetVal(entryJSON(t, ev, time.Now()))

	got, err := svc.CachedEventByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Cached Concert", got.Title)
}

func TestEventService_CachedEventByID_MissWritesThrough(t *testing.T) {
	ev := models.Event{EventID: "e1", Title: "Fresh Concert"}
	store := &stubStore{
		eventByIDFn: func(ctx context.Context, eventID string) (*models.Event, error) {
			assert.Equal(t, "e1", eventID)
			return &ev, nil
		},
	}
	svc, mock := setupEventService(store)
	defer mock.ClearExpect()

	mock.ExpectGet("event:cache:e1").RedisNil()
	mock.Regexp().ExpectSet("event:cache:e1", `.*Fresh Concert.*`, 30*time.Minute).SetVal("OK")

	got, err := svc.CachedEventByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Concert", got.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_CachedEventByID_ExpiredEntryRefetches(t *testing.T) {
	ev := models.Event{EventID: "e1", Title: "Refetched"}
	store := &stubStore{
		eventByIDFn: func(ctx context.Context, eventID string) (*models.Event, error) {
			return &ev, nil
		},
	}
	svc, mock := setupEventService(store)
	defer mock.ClearExpect()

	stale := models.Event{EventID: "e1", Title: "Stale"}
	mock.ExpectGet("event:cache:e1").SetVal(entryJSON(t, stale, time.Now().Add(-time.Hour)))
	mock.ExpectDel("event:cache:e1").SetVal(1)
	mock.Regexp().ExpectSet("event:cache:e1", `.*Refetched.*`, 30*time.Minute).SetVal("OK")

	got, err := svc.CachedEventByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Refetched", got.Title)
}

func TestEventService_CachedEventByID_BackendError(t *testing.T) {
	store := &stubStore{
		eventByIDFn: func(ctx context.Context, eventID string) (*models.Event, error) {
			return nil, status.ErrNotFound
		},
	}
	svc, mock := setupEventService(store)
	defer mock.ClearExpect()

	mock.ExpectGet("event:cache:e1").RedisNil()

	_, err := svc.CachedEventByID(context.Background(), "e1")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestEventService_MultipleCachedEvents_DropsFailures(t *testing.T) {
	store := &stubStore{
		eventByIDFn: func(ctx context.Context, eventID string) (*models.Event, error) {
			if eventID == "e-bad" {
				return nil, status.ErrNotFound
			}
			return &models.Event{EventID: eventID, Title: "ok"}, nil
		},
	}
	svc, mock := setupEventService(store)
	defer mock.ClearExpect()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectGet("event:cache:e1").RedisNil()
	mock.ExpectGet("event:cache:e-bad").RedisNil()
	mock.Regexp().ExpectSet("event:cache:e1", `.*`, 30*time.Minute).SetVal("OK")

	got := svc.MultipleCachedEvents(context.Background(), []string{"e1", "e-bad", ""})

	require.Len(t, got, 1)
	assert.Equal(t, "ok", got["e1"].Title)
}

func TestEventService_CleanupExpiredEntries(t *testing.T) {
	svc, mock := setupEventService(&stubStore{})
	defer mock.ClearExpect()

	fresh := entryJSON(t, models.Event{EventID: "e1"}, time.Now())
	expired := entryJSON(t, models.Event{EventID: "e2"}, time.Now().Add(-time.Hour))

	mock.ExpectKeys("event:cache:*").SetVal([]string{"event:cache:e1", "event:cache:e2", "event:cache:e3"})
	mock.ExpectGet("event:cache:e1").SetVal(fresh)
	mock.ExpectGet("event:cache:e2").SetVal(expired)
	mock.ExpectDel("event:cache:e2").SetVal(1)
	mock.ExpectGet("event:cache:e3").SetVal("not json")
	mock.ExpectDel("event:cache:e3").SetVal(1)

	removed, err := svc.CleanupExpiredEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_CreateEvent_NormalizesStatus(t *testing.T) {
	store := &stubStore{
		createEventFn: func(ctx context.Context, ev models.Event) (*models.Event, error) {
			assert.Equal(t, models.EventPublished, ev.Status)
			return &ev, nil
		},
	}
	svc, _ := setupEventService(store)

	created, err := svc.CreateEvent(context.Background(), models.Event{Title: "New", Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Equal(t, models.EventPublished, created.Status)
}

func TestEventService_CreateEvent_RequiresTitle(t *testing.T) {
	svc, _ := setupEventService(&stubStore{})

	_, err := svc.CreateEvent(context.Background(), models.Event{})
	assert.True(t, status.IsValidation(err))
}

func TestEventService_UpdateEvent_InvalidatesCaches(t *testing.T) {
	fetches := 0
	store := &stubStore{
		eventsFn: func(ctx context.Context) ([]models.Event, error) {
			fetches++
			return nil, nil
		},
		updateEventFn: func(ctx context.Context, ev models.Event) (*models.Event, error) {
			return &ev, nil
		},
	}
	svc, mock := setupEventService(store)
	defer mock.ClearExpect()

	_, err := svc.Events(context.Background(), false)
	require.NoError(t, err)

	mock.ExpectDel("event:cache:e1").SetVal(1)
	_, err = svc.UpdateEvent(context.Background(), models.Event{EventID: "e1", Title: "Changed"})
	require.NoError(t, err)

	_, err = svc.Events(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches, "update must drop the list cache")
}
