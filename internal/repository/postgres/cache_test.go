package postgres

import (
	"testing"

	"mosaic/internal/domain/models"
)

func TestFolderCacheHit(t *testing.T) {
	cache := NewFolderCache()
	folder := &models.Folder{ID: 1, UID: "abc"}

	if _, known := cache.LookupID(1); known {
		t.Fatal("empty cache claims to know folder 1")
	}

	cache.StoreHit(folder)

	got, known := cache.LookupID(1)
	if !known || got != folder {
		t.Errorf("LookupID after StoreHit: got %v, known %v", got, known)
	}
	got, known = cache.LookupUID("abc")
	if !known || got != folder {
		t.Errorf("LookupUID after StoreHit: got %v, known %v", got, known)
	}
}

func TestFolderCacheMemoizesMisses(t *testing.T) {
	cache := NewFolderCache()

	cache.StoreMissID(42)
	got, known := cache.LookupID(42)
	if !known {
		t.Fatal("miss not memoized")
	}
	if got != nil {
		t.Errorf("memoized miss returned folder %v", got)
	}

	// A later hit replaces the miss.
	cache.StoreHit(&models.Folder{ID: 42, UID: "x"})
	got, known = cache.LookupID(42)
	if !known || got == nil {
		t.Errorf("hit did not replace memoized miss")
	}
}

func TestFolderCacheEvict(t *testing.T) {
	cache := NewFolderCache()
	folder := &models.Folder{ID: 1, UID: "abc"}
	cache.StoreHit(folder)

	cache.Evict(folder)

	if _, known := cache.LookupID(1); known {
		t.Errorf("id entry survived eviction")
	}
	if _, known := cache.LookupUID("abc"); known {
		t.Errorf("uid entry survived eviction")
	}
}
