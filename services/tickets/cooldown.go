package tickets

import (
	"context"
	"sync"
	"time"
)

// CooldownKey identifies a requester within a guild.
type CooldownKey struct {
	UserID  string
	GuildID string
}

func (k CooldownKey) String() string {
	return k.UserID + "-" + k.GuildID
}

// CooldownCache maps a requester to the earliest instant they may create
// another ticket. An expired entry is equivalent to an absent one.
type CooldownCache interface {
	Get(ctx context.Context, key CooldownKey) (time.Time, bool)
	Set(ctx context.Context, key CooldownKey, until time.Time)
}

// MemoryCooldownCache is the process-local cache. It is empty after a restart.
type MemoryCooldownCache struct {
	mu      sync.Mutex
	entries map[CooldownKey]time.Time
}

func NewMemoryCooldownCache() *MemoryCooldownCache {
	return &MemoryCooldownCache{entries: make(map[CooldownKey]time.Time)}
}

func (c *MemoryCooldownCache) Get(_ context.Context, key CooldownKey) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.entries[key]
	return until, ok
}

func (c *MemoryCooldownCache) Set(_ context.Context, key CooldownKey, until time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = until
}

// Prune drops entries that expired at or before now and returns how many went.
func (c *MemoryCooldownCache) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, until := range c.entries {
		if !until.After(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryCooldownCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
