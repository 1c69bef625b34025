package lock

import (
    "context"
    "sync"
    "time"
)

// MemoryClient is an in-process Client with the same atomicity contract
// as the Redis implementation, used in tests and cache-less dev setups.
// Expiry is checked lazily on access.
type MemoryClient struct {
    mu      sync.Mutex
    entries map[string]memoryEntry
    now     func() time.Time
}

type memoryEntry struct {
    owner     string
    expiresAt time.Time
}

// NewMemoryClient returns an empty in-memory lock client.
func NewMemoryClient() *MemoryClient {
    return &MemoryClient{entries: make(map[string]memoryEntry), now: time.Now}
}

// TryClaim claims all keys for owner or none of them, under one mutex
// acquisition so overlapping claims serialize exactly like the Lua
// script does.
func (c *MemoryClient) TryClaim(_ context.Context, keys []string, owner string, ttl time.Duration) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    now := c.now()
    for _, key := range keys {
        if e, ok := c.entries[key]; ok && e.expiresAt.After(now) && e.owner != owner {
            return &TakenError{Key: key}
        }
    }
    expires := now.Add(ttl)
    for _, key := range keys {
        c.entries[key] = memoryEntry{owner: owner, expiresAt: expires}
    }
    return nil
}

// Release deletes the keys owned by owner; others are untouched.
func (c *MemoryClient) Release(_ context.Context, keys []string, owner string) error {
    c.mu.Lock()
    defer c.mu.Unlock()
    for _, key := range keys {
        if e, ok := c.entries[key]; ok && e.owner == owner {
            delete(c.entries, key)
        }
    }
    return nil
}

// Owner returns the current holder of a key, or "" when the key is
// absent or expired.
func (c *MemoryClient) Owner(_ context.Context, key string) (string, error) {
    c.mu.Lock()
    defer c.mu.Unlock()
    e, ok := c.entries[key]
    if !ok || !e.expiresAt.After(c.now()) {
        return "", nil
    }
    return e.owner, nil
}
