package domain

import (
	"context"
	"time"
)

// LinkEntry is what the link store retains for one download token: the
// zipped bundle plus its manifest, until the entry expires.
type LinkEntry struct {
	Archive   []byte    `json:"archive"`
	Manifest  *Manifest `json:"manifest"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the entry is past its expiry at time now.
func (e *LinkEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// LinkStore is the short-lived token-to-bundle store behind download links.
// Expiry is enforced lazily on read; implementations must never return an
// expired entry.
type LinkStore interface {
	// Put stores an entry under token with the given time to live.
	Put(ctx context.Context, token string, entry *LinkEntry, ttl time.Duration) error

	// Get retrieves the entry for token. Returns (nil, false, nil) when the
	// token is unknown or the entry has expired.
	Get(ctx context.Context, token string) (*LinkEntry, bool, error)

	// Delete removes an entry. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// LinkStoreConfig holds configuration for link store initialization.
type LinkStoreConfig struct {
	// Type is the store type: "memory" or "redis"
	Type string

	// TTLMinutes is how long a download token stays valid.
	TTLMinutes int

	// Memory store settings
	MaxEntries int

	// Redis settings
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// TTL returns the configured time to live as a duration.
func (c LinkStoreConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}
