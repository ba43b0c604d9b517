package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// LeaderboardKey is the stats cache key of a document's leaderboard.
func LeaderboardKey(document string) string {
	return fmt.Sprintf("%s:leaderboard", document)
}

// InvalidateDocumentCache drops everything cached for a document after its
// content or history changed.
func InvalidateDocumentCache(ctx context.Context, cm *CacheManager, document string) {
	SafeDelete(ctx, cm.Document, "list")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("%s:*", document))
}
