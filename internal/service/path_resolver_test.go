package service

import (
	"context"
	"testing"

	"mosaic/internal/domain/models"
)

func newResolverFixture() (*fakeFolderRepo, *fakeAdapter, *models.Volume, *pathResolver) {
	repo := newFakeFolderRepo()
	adapter := newFakeAdapter()
	registry := newFakeRegistry()
	volume := &models.Volume{ID: 1, UID: "vol-1", Name: "Main", Type: models.VolumeTypeLocal}
	registry.addVolume(volume, adapter)

	resolver := NewPathResolver(repo, fakeTxManager{}, registry, discardLogger()).(*pathResolver)
	return repo, adapter, volume, resolver
}

func TestEnsureFolderPathCreatesSegments(t *testing.T) {
	repo, _, volume, resolver := newResolverFixture()

	folder, err := resolver.EnsureFolderPath(context.Background(), "a/b/c", volume, false)
	if err != nil {
		t.Fatalf("EnsureFolderPath: %v", err)
	}

	if folder.Path != "a/b/c/" {
		t.Errorf("path = %q, want %q", folder.Path, "a/b/c/")
	}
	if folder.Name != "c" {
		t.Errorf("name = %q, want %q", folder.Name, "c")
	}

	// Root plus three segments.
	if len(repo.folders) != 4 {
		t.Fatalf("got %d folder records, want 4", len(repo.folders))
	}

	wantPaths := map[string]string{"": "Main", "a/": "a", "a/b/": "b", "a/b/c/": "c"}
	for _, f := range repo.folders {
		if name, ok := wantPaths[f.Path]; !ok || f.Name != name {
			t.Errorf("unexpected record path=%q name=%q", f.Path, f.Name)
		}
	}
}

func TestEnsureFolderPathIsIdempotent(t *testing.T) {
	repo, _, volume, resolver := newResolverFixture()
	ctx := context.Background()

	first, err := resolver.EnsureFolderPath(ctx, "photos/2024", volume, false)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := resolver.EnsureFolderPath(ctx, "photos/2024", volume, false)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second call returned folder %d, want %d", second.ID, first.ID)
	}
	if len(repo.folders) != 3 {
		t.Errorf("got %d records after two calls, want 3", len(repo.folders))
	}
}

func TestEnsureFolderPathEmptyPathReturnsRoot(t *testing.T) {
	repo, _, volume, resolver := newResolverFixture()

	folder, err := resolver.EnsureFolderPath(context.Background(), "", volume, false)
	if err != nil {
		t.Fatalf("EnsureFolderPath: %v", err)
	}

	if folder.ParentID != nil {
		t.Errorf("root folder has a parent")
	}
	if folder.Path != "" {
		t.Errorf("root path = %q, want empty", folder.Path)
	}
	if folder.Name != volume.Name {
		t.Errorf("root name = %q, want %q", folder.Name, volume.Name)
	}
	if len(repo.folders) != 1 {
		t.Errorf("got %d records, want 1", len(repo.folders))
	}
}

func TestEnsureFolderPathCreatesPhysicalDirectories(t *testing.T) {
	_, adapter, volume, resolver := newResolverFixture()

	_, err := resolver.EnsureFolderPath(context.Background(), "a/b", volume, true)
	if err != nil {
		t.Fatalf("EnsureFolderPath: %v", err)
	}

	for _, dir := range []string{"a", "a/b"} {
		if !adapter.dirs[dir] {
			t.Errorf("directory %q was not created; ops: %v", dir, adapter.ops)
		}
	}
}

func TestEnsureFolderPathReusesSameNamedChild(t *testing.T) {
	repo, _, volume, resolver := newResolverFixture()
	ctx := context.Background()

	root, err := resolver.EnsureFolderPath(ctx, "", volume, false)
	if err != nil {
		t.Fatalf("root: %v", err)
	}

	// A child exists under the right parent but with a stale path.
	stale := repo.add(&models.Folder{
		ParentID: &root.ID,
		VolumeID: &volume.ID,
		Name:     "docs",
		Path:     "old-docs/",
	})

	folder, err := resolver.EnsureFolderPath(ctx, "docs", volume, false)
	if err != nil {
		t.Fatalf("EnsureFolderPath: %v", err)
	}
	if folder.ID != stale.ID {
		t.Errorf("created duplicate %d instead of reusing %d", folder.ID, stale.ID)
	}
}

func TestEnsureFolderPathRequiresVolume(t *testing.T) {
	_, _, _, resolver := newResolverFixture()

	if _, err := resolver.EnsureFolderPath(context.Background(), "a", nil, false); err == nil {
		t.Fatal("expected error for nil volume")
	}
}
