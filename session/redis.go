package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/metrics/dbmetrics"
	"github.com/matrix-org/postguard/pipeline"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix - Redis key prefix for session traces.
const KeyPrefix = "postguard:session:"

// RedisStore - A Store shared between processes. Each trace is a JSON value under KeyPrefix+sessionId with a TTL,
// so redis does the expiring.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisStoreConfig struct {
	Addr     string
	Password string
	Db       int
	Ttl      time.Duration
}

func NewRedisStore(ctx context.Context, config *RedisStoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.Db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", config.Addr, err)
	}
	return NewRedisStoreWithClient(client, config.Ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Put(ctx context.Context, sessionId string, trace *pipeline.Trace) error {
	t := dbmetrics.StartSessionStoreTimer(string(config.SessionBackendRedis), "Put")
	defer t.ObserveDuration()

	b, err := json.Marshal(trace)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, KeyPrefix+sessionId, b, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionId string) (*pipeline.Trace, error) {
	t := dbmetrics.StartSessionStoreTimer(string(config.SessionBackendRedis), "Get")
	defer t.ObserveDuration()

	b, err := s.client.Get(ctx, KeyPrefix+sessionId).Bytes()
	if errors.Is(err, redis.Nil) {
		dbmetrics.RecordSessionCacheRequest(string(config.SessionBackendRedis), false)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dbmetrics.RecordSessionCacheRequest(string(config.SessionBackendRedis), true)

	trace := &pipeline.Trace{}
	if err = json.Unmarshal(b, trace); err != nil {
		return nil, errors.Join(fmt.Errorf("malformed trace for session %s", sessionId), err)
	}
	return trace, nil
}

func (s *RedisStore) PurgeExpired(ctx context.Context) error {
	// Redis expires keys itself
	return nil
}
