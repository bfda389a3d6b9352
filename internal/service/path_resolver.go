package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mosaic/internal/domain"
	"mosaic/internal/domain/models"
	"mosaic/internal/domain/repositories"
	"mosaic/internal/domain/services"
	"mosaic/internal/storage"
)

type pathResolver struct {
	folderRepo repositories.FolderRepository
	txManager  repositories.TransactionManager
	volumes    storage.VolumeRegistry
	logger     *slog.Logger
}

// NewPathResolver creates a new folder path resolver
func NewPathResolver(
	folderRepo repositories.FolderRepository,
	txManager repositories.TransactionManager,
	volumes storage.VolumeRegistry,
	logger *slog.Logger,
) services.PathResolver {
	return &pathResolver{
		folderRepo: folderRepo,
		txManager:  txManager,
		volumes:    volumes,
		logger:     logger,
	}
}

// EnsureFolderPath walks fullPath segment by segment under the volume root,
// creating any missing folder record on the way, and returns the folder of
// the final segment. The whole walk runs in one transaction so concurrent
// calls for overlapping paths cannot interleave half-built branches.
func (s *pathResolver) EnsureFolderPath(ctx context.Context, fullPath string, volume *models.Volume, createPhysical bool) (*models.Folder, error) {
	if volume == nil {
		return nil, fmt.Errorf("%w: volume is required", domain.ErrValidation)
	}

	var adapter storage.VolumeAdapter
	if createPhysical {
		var err error
		adapter, err = s.volumes.AdapterFor(volume.ID)
		if err != nil {
			return nil, err
		}
	}

	var result *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.ensureRootFolder(ctx, volume)
		if err != nil {
			return err
		}

		currentPath := ""
		for _, segment := range splitPath(fullPath) {
			currentPath += segment + "/"

			folder, err = s.ensureSegment(ctx, folder, volume, segment, currentPath)
			if err != nil {
				return err
			}

			if createPhysical {
				if err := adapter.CreateDirectory(ctx, strings.TrimSuffix(currentPath, "/")); err != nil {
					return fmt.Errorf("%w: create directory %q: %v", domain.ErrStorage, currentPath, err)
				}
			}
		}

		result = folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ensureRootFolder finds or creates the volume's root record. The root has
// no parent and an empty path; its name mirrors the volume name.
func (s *pathResolver) ensureRootFolder(ctx context.Context, volume *models.Volume) (*models.Folder, error) {
	root, err := s.folderRepo.FindOne(ctx, &models.FolderCriteria{
		VolumeID: models.NullID(volume.ID),
		ParentID: models.IsNull(),
	})
	if err != nil {
		return nil, err
	}
	if root != nil {
		return root, nil
	}

	root = &models.Folder{
		VolumeID: &volume.ID,
		Name:     volume.Name,
		Path:     "",
	}
	if err := s.folderRepo.Save(ctx, root); err != nil {
		return nil, err
	}

	s.logger.Info("volume root folder created", "volume_id", volume.ID, "folder_id", root.ID)
	return root, nil
}

// ensureSegment resolves one path segment under parent, creating the
// record when neither the path nor a same-named child exists yet.
func (s *pathResolver) ensureSegment(ctx context.Context, parent *models.Folder, volume *models.Volume, segment, currentPath string) (*models.Folder, error) {
	folder, err := s.folderRepo.FindOne(ctx, &models.FolderCriteria{
		VolumeID: models.NullID(volume.ID),
		Path:     &currentPath,
	})
	if err != nil {
		return nil, err
	}
	if folder != nil {
		return folder, nil
	}

	// A same-named child may exist under a stale path; prefer it over
	// creating a duplicate sibling.
	folder, err = s.folderRepo.FindOne(ctx, &models.FolderCriteria{
		ParentID: models.NullID(parent.ID),
		Name:     &segment,
	})
	if err != nil {
		return nil, err
	}
	if folder != nil {
		return folder, nil
	}

	folder = &models.Folder{
		ParentID: &parent.ID,
		VolumeID: &volume.ID,
		Name:     segment,
		Path:     currentPath,
	}
	if err := s.folderRepo.Save(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Debug("folder record created for path segment",
		"folder_id", folder.ID,
		"path", folder.Path,
	)
	return folder, nil
}

// splitPath breaks a slash-separated path into its non-empty segments.
func splitPath(fullPath string) []string {
	var segments []string
	for _, segment := range strings.Split(fullPath, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
