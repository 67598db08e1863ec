package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/strandcoach/internal/modules/learning/planner"
	"github.com/yungbote/strandcoach/internal/platform/logger"
)

const defaultKeyPrefix = "strandcoach:plan:"

// PlanCache stores previewed plans in Redis with the entry's remaining
// lifetime as TTL.
type PlanCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewPlanCache(addr, prefix string, log *logger.Logger) (*PlanCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultKeyPrefix
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &PlanCache{
		log:    log.With("service", "RedisPlanCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (c *PlanCache) key(k planner.Key) string { return c.prefix + k.String() }

func (c *PlanCache) Get(ctx context.Context, key planner.Key, now time.Time) (planner.PlanCacheEntry, bool, error) {
	if c == nil || c.rdb == nil {
		return planner.PlanCacheEntry{}, false, fmt.Errorf("redis plan cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return planner.PlanCacheEntry{}, false, nil
	}
	if err != nil {
		return planner.PlanCacheEntry{}, false, fmt.Errorf("redis get: %w", err)
	}
	var entry planner.PlanCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.log.Warn("bad cached plan payload, dropping it", "error", err)
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		return planner.PlanCacheEntry{}, false, nil
	}
	if entry.Key != key || !entry.Valid(now) {
		return planner.PlanCacheEntry{}, false, nil
	}
	return entry, true, nil
}

func (c *PlanCache) Put(ctx context.Context, entry planner.PlanCacheEntry) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis plan cache not initialized")
	}
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key(entry.Key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *PlanCache) Invalidate(ctx context.Context, key planner.Key) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis plan cache not initialized")
	}
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (c *PlanCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
