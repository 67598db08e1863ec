package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/strandcoach/internal/domain/learning"
)

// DefaultCacheTTL is how long a previewed plan stays valid for start.
const DefaultCacheTTL = 5 * time.Minute

// Key identifies a plan request. Equal requests produce equal keys.
type Key struct {
	LearnerID       string `json:"learner_id"`
	DurationSeconds int64  `json:"duration_seconds"`
	PreferenceHash  string `json:"preference_hash"`
}

func NewKey(learnerID string, d time.Duration, preference *learning.CategoryVector) Key {
	return Key{
		LearnerID:       learnerID,
		DurationSeconds: int64(d / time.Second),
		PreferenceHash:  PreferenceHash(preference),
	}
}

// PreferenceHash is a short digest of the canonical preference encoding, or
// "none" without a preference.
func PreferenceHash(p *learning.CategoryVector) string {
	if p == nil {
		return "none"
	}
	raw, _ := p.MarshalJSON()
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:16]
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%d|%s", k.LearnerID, k.DurationSeconds, k.PreferenceHash)
}

// PlanCacheEntry is a frozen plan and the instant it stops being reusable.
type PlanCacheEntry struct {
	Key       Key       `json:"key"`
	Plan      *Plan     `json:"plan"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewEntry(key Key, plan *Plan, now time.Time, ttl time.Duration) PlanCacheEntry {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return PlanCacheEntry{Key: key, Plan: plan, ExpiresAt: now.Add(ttl)}
}

func (e PlanCacheEntry) Valid(now time.Time) bool {
	return e.Plan != nil && now.Before(e.ExpiresAt)
}

// Cache stores previewed plans. Get only returns entries still valid at now.
type Cache interface {
	Get(ctx context.Context, key Key, now time.Time) (PlanCacheEntry, bool, error)
	Put(ctx context.Context, entry PlanCacheEntry) error
	Invalidate(ctx context.Context, key Key) error
}

type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]PlanCacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]PlanCacheEntry{}}
}

func (c *MemoryCache) Get(ctx context.Context, key Key, now time.Time) (PlanCacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return PlanCacheEntry{}, false, nil
	}
	if !e.Valid(now) {
		delete(c.entries, key.String())
		return PlanCacheEntry{}, false, nil
	}
	return e, true, nil
}

func (c *MemoryCache) Put(ctx context.Context, entry PlanCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key.String()] = entry
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key.String())
	return nil
}
