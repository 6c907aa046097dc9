package session

import (
	"context"
	"time"

	"github.com/matrix-org/postguard/config"
)

// NewStore - Creates the Store selected by the instance config.
func NewStore(ctx context.Context, instanceConfig *config.InstanceConfig) (Store, error) {
	ttl := time.Duration(instanceConfig.SessionTTLMinutes) * time.Minute
	switch instanceConfig.SessionBackend {
	case config.SessionBackendRedis:
		return NewRedisStore(ctx, &RedisStoreConfig{
			Addr:     instanceConfig.RedisAddr,
			Password: instanceConfig.RedisPassword,
			Db:       instanceConfig.RedisDb,
			Ttl:      ttl,
		})
	default:
		return NewMemoryStore(ttl), nil
	}
}
