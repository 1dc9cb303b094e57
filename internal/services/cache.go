package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"
)

// CacheService stores JSON values with a TTL. Namespaces are invalidated by
// bumping a generation counter that callers fold into their keys.
type CacheService interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Generation(ctx context.Context, namespace string) (int64, error)
	Bump(ctx context.Context, namespace string) error
	Close()
}

type valkeyCache struct {
	client valkey.Client
	ttl    time.Duration
}

func NewValkeyCache(address string, ttl time.Duration) (CacheService, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	log.Printf("✅ Cache connected at %s\n", address)
	return &valkeyCache{client: client, ttl: ttl}, nil
}

func (c *valkeyCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *valkeyCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	if !writableTTL(c.ttl) {
		return nil
	}

	cmd := c.client.B().Set().Key(key).Value(string(data)).Px(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// writableTTL reports whether ttl survives PX's millisecond resolution. Valkey
// rejects a zero expiry, so shorter TTLs disable caching.
func writableTTL(ttl time.Duration) bool {
	return ttl.Milliseconds() > 0
}

func (c *valkeyCache) Generation(ctx context.Context, namespace string) (int64, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(generationKey(namespace)).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}

	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cache generation %q: %w", raw, err)
	}
	return gen, nil
}

func (c *valkeyCache) Bump(ctx context.Context, namespace string) error {
	if err := c.client.Do(ctx, c.client.B().Incr().Key(generationKey(namespace)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}

func (c *valkeyCache) Close() {
	c.client.Close()
}

func generationKey(namespace string) string {
	return namespace + ":generation"
}

type noopCache struct{}

// NewNoopCache is used when no cache server is configured. Every read misses.
func NewNoopCache() CacheService {
	return noopCache{}
}

func (noopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) SetJSON(context.Context, string, interface{}) error         { return nil }
func (noopCache) Generation(context.Context, string) (int64, error)          { return 0, nil }
func (noopCache) Bump(context.Context, string) error                         { return nil }
func (noopCache) Close()                                                     {}
