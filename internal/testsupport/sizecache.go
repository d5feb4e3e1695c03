package testsupport

import (
	"context"
	"testing"

	"titledb/internal/config"
	"titledb/internal/sizecache"
)

// MustOpenSizeCache opens the configured size cache and registers cleanup.
func MustOpenSizeCache(t testing.TB, cfg *config.Config) *sizecache.Cache {
	t.Helper()

	cache, err := sizecache.Open(context.Background(), cfg.SizeCache.Path, nil)
	if err != nil {
		t.Fatalf("open size cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
