package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mosaic/internal/config"
	"mosaic/internal/domain/models"
	"mosaic/internal/domain/services"
)

func newTempFixture(t *testing.T, cfg *config.Config) (*fakeFolderRepo, *fakeAdapter, services.TempFolderService) {
	t.Helper()

	repo := newFakeFolderRepo()
	adapter := newFakeAdapter()
	registry := newFakeRegistry()
	registry.addVolume(&models.Volume{ID: 1, UID: "temp-vol", Name: "Temp", Type: models.VolumeTypeLocal}, adapter)

	logger := discardLogger()
	resolver := NewPathResolver(repo, fakeTxManager{}, registry, logger)
	clock := stubClock{now: time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)}
	svc := NewTempFolderService(repo, resolver, registry, cfg, clock, logger)

	return repo, adapter, svc
}

func TestUserTempFolderVolumeless(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{TempAssetPath: dir}
	repo, _, svc := newTempFixture(t, cfg)
	ctx := context.Background()

	userID := int64(42)
	folder, err := svc.UserTempFolder(ctx, services.TempScope{UserID: &userID})
	if err != nil {
		t.Fatalf("UserTempFolder: %v", err)
	}

	if folder.Name != "user_42" {
		t.Errorf("name = %q, want %q", folder.Name, "user_42")
	}
	if folder.Path != "user_42/" {
		t.Errorf("path = %q, want %q", folder.Path, "user_42/")
	}
	if folder.VolumeID != nil {
		t.Errorf("volumeless folder has a volume")
	}

	// Synthetic root plus the user folder.
	if len(repo.folders) != 2 {
		t.Errorf("got %d records, want 2", len(repo.folders))
	}

	if _, err := os.Stat(filepath.Join(dir, "user_42")); err != nil {
		t.Errorf("temp directory not created: %v", err)
	}
}

func TestUserTempFolderIsIdempotent(t *testing.T) {
	cfg := &config.Config{TempAssetPath: t.TempDir()}
	repo, _, svc := newTempFixture(t, cfg)
	ctx := context.Background()

	userID := int64(7)
	first, err := svc.UserTempFolder(ctx, services.TempScope{UserID: &userID})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.UserTempFolder(ctx, services.TempScope{UserID: &userID})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second call returned %d, want %d", second.ID, first.ID)
	}
	if len(repo.folders) != 2 {
		t.Errorf("got %d records after two calls, want 2", len(repo.folders))
	}
}

func TestUserTempFolderSessionScope(t *testing.T) {
	cfg := &config.Config{TempAssetPath: t.TempDir()}
	_, _, svc := newTempFixture(t, cfg)
	ctx := context.Background()

	first, err := svc.UserTempFolder(ctx, services.TempScope{SessionID: "sess-abc"})
	if err != nil {
		t.Fatalf("UserTempFolder: %v", err)
	}
	second, err := svc.UserTempFolder(ctx, services.TempScope{SessionID: "sess-abc"})
	if err != nil {
		t.Fatalf("UserTempFolder: %v", err)
	}

	if first.Name != second.Name {
		t.Errorf("session scope not stable: %q vs %q", first.Name, second.Name)
	}
	if first.Name == "sess-abc" || first.Name == "user_sess-abc" {
		t.Errorf("raw session id leaked into folder name: %q", first.Name)
	}
}

func TestUserTempFolderOnConfiguredVolume(t *testing.T) {
	cfg := &config.Config{
		TempVolumeUID: "temp-vol",
		TempSubpath:   "tmp",
		TempAssetPath: t.TempDir(),
	}
	_, adapter, svc := newTempFixture(t, cfg)

	userID := int64(9)
	folder, err := svc.UserTempFolder(context.Background(), services.TempScope{UserID: &userID})
	if err != nil {
		t.Fatalf("UserTempFolder: %v", err)
	}

	if folder.Path != "tmp/user_9/" {
		t.Errorf("path = %q, want %q", folder.Path, "tmp/user_9/")
	}
	if folder.VolumeID == nil || *folder.VolumeID != 1 {
		t.Errorf("folder not on the temp volume")
	}
	if !adapter.dirs["tmp/user_9"] {
		t.Errorf("physical directory not created; ops: %v", adapter.ops)
	}
}
