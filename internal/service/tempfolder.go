package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"mosaic/internal/config"
	"mosaic/internal/domain"
	"mosaic/internal/domain/models"
	"mosaic/internal/domain/repositories"
	"mosaic/internal/domain/services"
	"mosaic/internal/storage"
)

type tempFolderService struct {
	folderRepo repositories.FolderRepository
	resolver   services.PathResolver
	volumes    storage.VolumeRegistry
	cfg        *config.Config
	clock      Clock
	logger     *slog.Logger
}

// NewTempFolderService creates the per-caller scratch folder provisioner
func NewTempFolderService(
	folderRepo repositories.FolderRepository,
	resolver services.PathResolver,
	volumes storage.VolumeRegistry,
	cfg *config.Config,
	clock Clock,
	logger *slog.Logger,
) services.TempFolderService {
	return &tempFolderService{
		folderRepo: folderRepo,
		resolver:   resolver,
		volumes:    volumes,
		cfg:        cfg,
		clock:      clock,
		logger:     logger,
	}
}

// UserTempFolder returns the scratch folder for the scope, creating it and
// its physical directory when missing. With a temp volume configured the
// folder lives under that volume's temp subpath; otherwise it hangs off a
// synthetic volumeless root and its files go to the local temp asset path.
func (s *tempFolderService) UserTempFolder(ctx context.Context, scope services.TempScope) (*models.Folder, error) {
	name := s.scopeFolderName(scope)

	if s.cfg.TempVolumeUID != "" {
		volume, err := s.volumes.VolumeByUID(s.cfg.TempVolumeUID)
		if err != nil {
			return nil, fmt.Errorf("temp volume: %w", err)
		}
		return s.resolver.EnsureFolderPath(ctx, path.Join(s.cfg.TempSubpath, name), volume, true)
	}

	return s.ensureVolumeless(ctx, name)
}

// scopeFolderName derives a stable folder name per caller. Identified
// users keep a readable name; session ids are hashed so they do not leak
// into paths; console jobs with neither get a fresh time-derived name.
func (s *tempFolderService) scopeFolderName(scope services.TempScope) string {
	switch {
	case scope.UserID != nil:
		return fmt.Sprintf("user_%d", *scope.UserID)
	case scope.SessionID != "":
		return "user_" + shortHash(scope.SessionID)
	default:
		return "temp_" + shortHash(s.clock.Now().String())
	}
}

func (s *tempFolderService) ensureVolumeless(ctx context.Context, name string) (*models.Folder, error) {
	root, err := s.folderRepo.FindOne(ctx, &models.FolderCriteria{
		VolumeID: models.IsNull(),
		ParentID: models.IsNull(),
	})
	if err != nil {
		return nil, err
	}
	if root == nil {
		root = &models.Folder{Name: "Temporary files", Path: ""}
		if err := s.folderRepo.Save(ctx, root); err != nil {
			return nil, err
		}
		s.logger.Info("temporary root folder created", "folder_id", root.ID)
	}

	folder, err := s.folderRepo.FindOne(ctx, &models.FolderCriteria{
		ParentID: models.NullID(root.ID),
		Name:     &name,
	})
	if err != nil {
		return nil, err
	}
	if folder == nil {
		folder = &models.Folder{
			ParentID: &root.ID,
			Name:     name,
			Path:     name + "/",
		}
		if err := s.folderRepo.Save(ctx, folder); err != nil {
			return nil, err
		}
	}

	// Volumeless temp folders store files on the local temp asset path;
	// without the directory the folder is unusable, so failure is fatal.
	dir := filepath.Join(s.cfg.TempAssetPath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create temp directory %q: %v", domain.ErrStorage, dir, err)
	}

	return folder, nil
}

func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:10]
}
