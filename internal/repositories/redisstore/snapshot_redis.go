// Package redisstore keeps session snapshots in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/flashquiz-service/internal/cache"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories"
)

type snapshotRepository struct {
	cache *cache.CacheHelper
}

// NewSnapshotRepository stores snapshots through helper. Without Redis, saves
// are dropped and every lookup reports ErrNotFound.
func NewSnapshotRepository(helper *cache.CacheHelper) repositories.SnapshotRepository {
	return &snapshotRepository{cache: helper}
}

func (r *snapshotRepository) Save(ctx context.Context, id string, snapshot []byte, ttl time.Duration) error {
	if id == "" {
		return errors.New("snapshot id is required")
	}
	if ttl <= 0 {
		ttl = cache.SessionCacheConfig.TTL
	}
	if err := r.cache.SetBytes(ctx, id, snapshot, ttl); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepository) Get(ctx context.Context, id string) ([]byte, error) {
	if !r.cache.Available() {
		return nil, repositories.ErrNotFound
	}
	data, err := r.cache.GetBytes(ctx, id)
	if err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, nil
}

func (r *snapshotRepository) Delete(ctx context.Context, id string) error {
	if err := r.cache.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
