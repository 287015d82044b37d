package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-storefront/internal/backend"
	"ticket-storefront/internal/status"
	"ticket-storefront/models"
	"ticket-storefront/monitoring"
)

const eventCachePrefix = "event:cache:"

// cacheEntry is the durable per-event cache record. The timestamp is
// embedded so entries can be judged stale independently of the redis
// TTL (entries written by older deployments carried none).
type cacheEntry struct {
	Data     models.Event `json:"data"`
	CachedAt int64        `json:"timestamp"`
}

// EventFilter narrows the cached event list.
type EventFilter struct {
	Category string
	Status   string
	Search   string
}

// EventService serves event queries through two cache layers: an
// in-memory list cache with a short TTL and a redis-backed per-event
// cache with its own expiry, used to avoid re-fetching event details
// across cart enrichments.
type EventService struct {
	store    backend.Store
	Redis    *redis.Client
	listTTL  time.Duration
	entryTTL time.Duration

	mu        sync.RWMutex
	cached    []models.Event
	fetchedAt time.Time
}

func NewEventService(store backend.Store, redisClient *redis.Client, listTTL, entryTTL time.Duration) *EventService {
	if listTTL <= 0 {
		listTTL = 5 * time.Minute
	}
	if entryTTL <= 0 {
		entryTTL = 30 * time.Minute
	}
	return &EventService{
		store:    store,
		Redis:    redisClient,
		listTTL:  listTTL,
		entryTTL: entryTTL,
	}
}

// Events returns the event list, refreshing the in-memory cache when it
// is older than the TTL or when forced. Overlapping refreshes race
// benignly: last write wins.
func (s *EventService) Events(ctx context.Context, force bool) ([]models.Event, error) {
	s.mu.RLock()
	fresh := !force && s.cached != nil && time.Since(s.fetchedAt) < s.listTTL
	cached := s.cached
	s.mu.RUnlock()

	if fresh {
		monitoring.TrackCacheLookup("memory", "hit")
		return cached, nil
	}
	monitoring.TrackCacheLookup("memory", "miss")

	events, err := s.store.Events(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = events
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return events, nil
}

// Filter applies category/status/search filters over the cached list.
func (s *EventService) Filter(ctx context.Context, f EventFilter) ([]models.Event, error) {
	events, err := s.Events(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]models.Event, 0, len(events))
	search := strings.ToLower(f.Search)
	for _, ev := range events {
		if f.Category != "" && !strings.EqualFold(ev.Category, f.Category) {
			continue
		}
		if f.Status != "" && ev.Status != models.NormalizeEventStatus(f.Status) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(ev.Title), search) &&
			!strings.Contains(strings.ToLower(ev.Venue), search) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// Invalidate drops the in-memory list cache.
func (s *EventService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

// CachedEventByID checks the durable cache first and falls back to the
// backend, writing the result through.
func (s *EventService) CachedEventByID(ctx context.Context, eventID string) (*models.Event, error) {
	key := eventCachePrefix + eventID

	data, err := s.Redis.Get(ctx, key).Result()
	if err == nil {
		var entry cacheEntry
		if jsonErr := json.Unmarshal([]byte(data), &entry); jsonErr == nil {
			if time.Since(time.Unix(entry.CachedAt, 0)) < s.entryTTL {
				monitoring.TrackCacheLookup("durable", "hit")
				return &entry.Data, nil
			}
			monitoring.TrackCacheLookup("durable", "expired")
			s.Redis.Del(ctx, key)
		}
	} else if err != redis.Nil {
		log.Printf("events: cache read %s: %v", eventID, err)
	} else {
		monitoring.TrackCacheLookup("durable", "miss")
	}

	ev, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	entry := cacheEntry{Data: *ev, CachedAt: time.Now().Unix()}
	if encoded, jsonErr := json.Marshal(entry); jsonErr == nil {
		if setErr := s.Redis.Set(ctx, key, string(encoded), s.entryTTL).Err(); setErr != nil {
			log.Printf("events: cache write %s: %v", eventID, setErr)
		}
	}
	return ev, nil
}

// MultipleCachedEvents resolves ids in parallel with partial-failure
// tolerance: any individual fetch that fails is dropped from the result
// rather than failing the batch.
func (s *EventService) MultipleCachedEvents(ctx context.Context, ids []string) map[string]models.Event {
	out := make(map[string]models.Event, len(ids))
	if len(ids) == 0 {
		return out
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, id := range ids {
		if id == "" {
			continue
		}
		wg.Add(1)
		go func(eventID string) {
			defer wg.Done()
			ev, err := s.CachedEventByID(ctx, eventID)
			if err != nil {
				log.Printf("events: batch fetch %s: %v", eventID, err)
				return
			}
			mu.Lock()
			out[eventID] = *ev
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return out
}

// CleanupExpiredEntries removes durable-cache entries whose embedded
// timestamp has passed the TTL. Returns how many were removed.
func (s *EventService) CleanupExpiredEntries(ctx context.Context) (int, error) {
	keys, err := s.Redis.Keys(ctx, eventCachePrefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("events: cache sweep: %w", err)
	}

	removed := 0
	for _, key := range keys {
		data, err := s.Redis.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var entry cacheEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil ||
			time.Since(time.Unix(entry.CachedAt, 0)) >= s.entryTTL {
			if s.Redis.Del(ctx, key).Err() == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// StartSweeper runs the expiry sweep on a ticker until ctx is done.
func (s *EventService) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := s.CleanupExpiredEntries(ctx); err != nil {
				log.Printf("events: sweep: %v", err)
			} else if removed > 0 {
				log.Printf("events: sweep removed %d expired entries", removed)
			}
		}
	}
}

// Admin operations proxy to the backend and invalidate both cache
// layers for the touched event.

func (s *EventService) CreateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	ev.Status = models.NormalizeEventStatus(ev.Status)
	if ev.Title == "" {
		return nil, status.Invalid("title", "required")
	}
	created, err := s.store.CreateEvent(ctx, ev)
	if err != nil {
		return nil, err
	}
	s.Invalidate()
	return created, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, ev models.Event) (*models.Event, error) {
	if ev.EventID == "" {
		return nil, status.Invalid("event_id", "required")
	}
	ev.Status = models.NormalizeEventStatus(ev.Status)
	updated, err := s.store.UpdateEvent(ctx, ev)
	if err != nil {
		return nil, err
	}
	s.Invalidate()
	s.Redis.Del(ctx, eventCachePrefix+ev.EventID)
	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return status.Invalid("event_id", "required")
	}
	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		return err
	}
	s.Invalidate()
	s.Redis.Del(ctx, eventCachePrefix+eventID)
	return nil
}
