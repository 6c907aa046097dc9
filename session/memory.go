package session

import (
	"context"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/metrics/dbmetrics"
	"github.com/matrix-org/postguard/pipeline"
)

// MemoryStore - A process-local Store. Expired entries are invisible to Get immediately, and are dropped from
// memory by PurgeExpired.
type MemoryStore struct {
	cache *cache.Cache[string, *pipeline.Trace]
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		// We don't use a janitor because the scheduler runs PurgeExpired for us
		cache: cache.New[string, *pipeline.Trace](),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Close() error {
	// no-op
	return nil
}

func (s *MemoryStore) Put(ctx context.Context, sessionId string, trace *pipeline.Trace) error {
	t := dbmetrics.StartSessionStoreTimer(string(config.SessionBackendMemory), "Put")
	defer t.ObserveDuration()

	s.cache.Set(sessionId, trace, cache.WithExpiration(s.ttl))
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionId string) (*pipeline.Trace, error) {
	t := dbmetrics.StartSessionStoreTimer(string(config.SessionBackendMemory), "Get")
	defer t.ObserveDuration()

	trace, ok := s.cache.Get(sessionId)
	dbmetrics.RecordSessionCacheRequest(string(config.SessionBackendMemory), ok)
	if !ok {
		return nil, nil
	}
	return trace, nil
}

func (s *MemoryStore) PurgeExpired(ctx context.Context) error {
	t := dbmetrics.StartSessionStoreTimer(string(config.SessionBackendMemory), "PurgeExpired")
	defer t.ObserveDuration()

	s.cache.DeleteExpired()
	return nil
}

// Len - The number of traces held in memory, including expired ones not yet purged.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
