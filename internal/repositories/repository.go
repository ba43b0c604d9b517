package repositories

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Repository groups the stores used by the services.
type Repository interface {
	Document() DocumentRepository
	Snapshot() SnapshotRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

type repository struct {
	document    DocumentRepository
	snapshot    SnapshotRepository
	redisClient *redis.Client
}

// NewRepository bundles the stores. redisClient may be nil.
func NewRepository(document DocumentRepository, snapshot SnapshotRepository, redisClient *redis.Client) Repository {
	return &repository{
		document:    document,
		snapshot:    snapshot,
		redisClient: redisClient,
	}
}

func (r *repository) Document() DocumentRepository { return r.document }
func (r *repository) Snapshot() SnapshotRepository { return r.snapshot }

func (r *repository) Ping(ctx context.Context) error {
	if r.redisClient == nil {
		return nil
	}
	if err := r.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *repository) Close() error {
	if r.redisClient == nil {
		return nil
	}
	return r.redisClient.Close()
}
