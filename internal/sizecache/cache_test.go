package sizecache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"titledb/internal/titleid"
)

func openCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "sizes.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestStoreAndLookup(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t)
	update := titleid.MustParse("0005000E10100D00")

	if _, ok, err := cache.Lookup(ctx, update, "16"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := cache.Store(ctx, update, "16", 391053332); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := cache.Store(ctx, update, "16", 391053333); err != nil {
		t.Fatalf("Store overwrite: %v", err)
	}
	size, ok, err := cache.Lookup(ctx, update, "16")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if size != 391053333 {
		t.Fatalf("unexpected size: %d", size)
	}
	if _, ok, _ := cache.Lookup(ctx, update, "32"); ok {
		t.Fatal("different version should miss")
	}
	count, err := cache.Len(ctx)
	if err != nil || count != 1 {
		t.Fatalf("unexpected count %d err=%v", count, err)
	}
}

func TestUnversionedTitlesAreNotCached(t *testing.T) {
	ctx := context.Background()
	cache := openCache(t)
	dlc := titleid.MustParse("0005000C10100D00")

	if err := cache.Store(ctx, dlc, "", 100); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, ok, _ := cache.Lookup(ctx, dlc, ""); ok {
		t.Fatal("DLC sizes should not be cached")
	}
	if count, _ := cache.Len(ctx); count != 0 {
		t.Fatalf("unexpected count: %d", count)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sizes.db")
	update := titleid.MustParse("0004000E00055D00")

	cache, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cache.Store(ctx, update, "1040", 42); err != nil {
		t.Fatalf("Store: %v", err)
	}
	_ = cache.Close()

	reopened, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if size, ok, err := reopened.Lookup(ctx, update, "1040"); err != nil || !ok || size != 42 {
		t.Fatalf("unexpected lookup: size=%d ok=%v err=%v", size, ok, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sizes.db")

	cache, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = cache.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := Open(ctx, path, nil); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
