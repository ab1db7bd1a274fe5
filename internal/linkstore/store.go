// Package linkstore provides short-lived token-to-bundle stores backing
// download links.
package linkstore

import (
	"fmt"

	"github.com/opensource-finance/harrier/internal/domain"
)

// New creates a link store based on configuration.
// "memory" suits single-node deployments; "redis" shares tokens across
// nodes and survives restarts for the remaining TTL.
func New(cfg domain.LinkStoreConfig) (domain.LinkStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(cfg.MaxEntries), nil

	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported link store type: %s", cfg.Type)
	}
}
