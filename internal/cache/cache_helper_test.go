package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type leaderboard struct {
	Names []string `json:"names"`
}

func TestCacheHelper_SetGet(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	helper := NewCacheHelper(client, "stats:")

	if err := helper.Set(ctx, "quiz:leaderboard", leaderboard{Names: []string{"alice"}}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("stats:quiz:leaderboard") {
		t.Error("key was not written with its prefix")
	}

	var got leaderboard
	if err := helper.Get(ctx, "quiz:leaderboard", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Names) != 1 || got.Names[0] != "alice" {
		t.Errorf("Get() = %+v", got)
	}

	if err := helper.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrCacheNotFound", err)
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists("stats:quiz:leaderboard") {
		t.Error("key should expire after its TTL")
	}
}

func TestCacheHelper_WithoutRedis(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "session:")

	if helper.Available() {
		t.Error("Available() = true without a client")
	}
	if err := helper.SetBytes(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Errorf("SetBytes() error = %v, want nil", err)
	}
	if _, err := helper.GetBytes(ctx, "k"); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("GetBytes() error = %v, want ErrCacheNotAvailable", err)
	}
	if err := helper.InvalidatePattern(ctx, "*"); err != nil {
		t.Errorf("InvalidatePattern() error = %v", err)
	}
	if err := NewCacheManager(nil).HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("HealthCheck() error = %v, want ErrCacheNotAvailable", err)
	}
}

func TestCacheHelper_InvalidateDocument(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	cm := NewCacheManager(client)

	for _, k := range []string{"quiz:leaderboard", "quiz:summary:alice", "other:leaderboard"} {
		if err := cm.Stats.SetBytes(ctx, k, []byte("{}"), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	_ = cm.Document.SetBytes(ctx, "list", []byte("[]"), time.Minute)

	InvalidateDocumentCache(ctx, cm, "quiz")

	if mr.Exists("stats:quiz:leaderboard") || mr.Exists("stats:quiz:summary:alice") {
		t.Error("quiz leaderboard should be invalidated")
	}
	if !mr.Exists("stats:other:leaderboard") {
		t.Error("other document cache should survive")
	}
	if mr.Exists("document:list") {
		t.Error("document list should be invalidated")
	}
	if err := cm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()
	helper := NewCacheHelper(client, "stats:")

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return leaderboard{Names: []string{"bob"}}, nil
	}

	for i := 0; i < 2; i++ {
		var got leaderboard
		if err := helper.CacheOrExecute(ctx, "quiz:leaderboard", &got, time.Minute, fetch); err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if len(got.Names) != 1 || got.Names[0] != "bob" {
			t.Errorf("CacheOrExecute() = %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}

	var got leaderboard
	err := helper.CacheOrExecute(ctx, "broken", &got, time.Minute, func() (interface{}, error) {
		return nil, errors.New("boom")
	})
	if err == nil {
		t.Error("CacheOrExecute() should return the fetch error")
	}
}
