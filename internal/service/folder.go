package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mosaic/internal/config"
	"mosaic/internal/domain"
	"mosaic/internal/domain/models"
	"mosaic/internal/domain/repositories"
	"mosaic/internal/domain/services"
	"mosaic/internal/storage"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	assetRepo  repositories.AssetRepository
	txManager  repositories.TransactionManager
	volumes    storage.VolumeRegistry
	assets     services.AssetPersister
	logger     *slog.Logger
}

// NewFolderService creates a new folder mutation service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	assetRepo repositories.AssetRepository,
	txManager repositories.TransactionManager,
	volumes storage.VolumeRegistry,
	assets services.AssetPersister,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		assetRepo:  assetRepo,
		txManager:  txManager,
		volumes:    volumes,
		assets:     assets,
		logger:     logger,
	}
}

// CreateFolder creates a folder under an existing parent. The physical
// directory is created before the record is persisted; a physical failure
// aborts the operation so no orphan record appears.
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := validateFolderName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.ParentID == 0 {
		return nil, fmt.Errorf("%w: folder must have a parent", domain.ErrOperation)
	}

	parent, err := s.folderRepo.GetByID(ctx, req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("parent folder: %w", err)
	}

	sibling, err := s.folderRepo.FindOne(ctx, &models.FolderCriteria{
		ParentID: models.NullID(parent.ID),
		Name:     &req.Name,
	})
	if err != nil {
		return nil, err
	}
	if sibling != nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists here", req.Name),
			ResourceType: "folder",
			ResourceID:   sibling.ID,
		}
	}

	folder := &models.Folder{
		ParentID: &parent.ID,
		VolumeID: parent.VolumeID,
		Name:     req.Name,
		Path:     parent.Path + req.Name + "/",
	}

	if parent.VolumeID != nil {
		adapter, err := s.volumes.AdapterFor(*parent.VolumeID)
		if err != nil {
			return nil, err
		}
		if err := adapter.CreateDirectory(ctx, strings.TrimSuffix(folder.Path, "/")); err != nil {
			return nil, fmt.Errorf("%w: create directory %q: %v", domain.ErrStorage, folder.Path, err)
		}
	}

	if err := s.folderRepo.Save(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"path", folder.Path,
		"parent_id", parent.ID,
	)
	return folder, nil
}

// GetFolder retrieves a folder by id
func (s *folderService) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// RenameFolder renames a non-root folder. The physical directory is
// renamed first; then the folder record and every descendant's path prefix
// are rewritten in one transaction.
func (s *folderService) RenameFolder(ctx context.Context, id int64, newName string) (string, error) {
	if err := validateFolderName(newName); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if folder.ParentID == nil {
		return "", fmt.Errorf("%w: cannot rename a root folder", domain.ErrOperation)
	}
	if folder.Name == newName {
		return newName, nil
	}

	sibling, err := s.folderRepo.FindOne(ctx, &models.FolderCriteria{
		ParentID: models.NullID(*folder.ParentID),
		Name:     &newName,
	})
	if err != nil {
		return "", err
	}
	if sibling != nil && sibling.ID != folder.ID {
		return "", &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists here", newName),
			ResourceType: "folder",
			ResourceID:   sibling.ID,
		}
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		// Collect descendants before any path changes.
		descendants, err := s.folderRepo.DescendantsOf(ctx, folder)
		if err != nil {
			return err
		}

		if folder.VolumeID != nil {
			adapter, err := s.volumes.AdapterFor(*folder.VolumeID)
			if err != nil {
				return err
			}
			if err := adapter.RenameDirectory(ctx, strings.TrimSuffix(folder.Path, "/"), newName); err != nil {
				return fmt.Errorf("%w: rename directory %q: %v", domain.ErrStorage, folder.Path, err)
			}
		}

		oldPath := folder.Path
		newPath := strings.TrimSuffix(folder.Path, folder.Name+"/") + newName + "/"

		for _, d := range descendants {
			d.Path = strings.Replace(d.Path, oldPath, newPath, 1)
			if err := s.folderRepo.Save(ctx, d); err != nil {
				return err
			}
		}

		folder.Name = newName
		folder.Path = newPath
		return s.folderRepo.Save(ctx, folder)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "name", newName, "path", folder.Path)
	return newName, nil
}

// DeleteFolders removes each listed folder with its subtree. Missing ids
// are skipped. Physical deletion failures are logged and do not stop
// record deletion; asset rows are handed to the asset persister first so
// nothing dangles.
func (s *folderService) DeleteFolders(ctx context.Context, ids []int64, deletePhysical bool) error {
	for _, id := range ids {
		folder, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("folder already gone, skipping", "id", id)
				continue
			}
			return err
		}

		descendants, err := s.folderRepo.DescendantsOf(ctx, folder)
		if err != nil {
			return err
		}

		folderIDs := make([]int64, 0, len(descendants)+1)
		folderIDs = append(folderIDs, folder.ID)
		for _, d := range descendants {
			folderIDs = append(folderIDs, d.ID)
		}

		assets, err := s.assetRepo.ListByFolders(ctx, folderIDs)
		if err != nil {
			return err
		}
		for _, asset := range assets {
			if err := s.assets.DeleteAsset(ctx, asset, !deletePhysical); err != nil {
				return fmt.Errorf("delete asset %d: %w", asset.ID, err)
			}
		}

		if deletePhysical && folder.VolumeID != nil {
			if err := s.deleteDirectory(ctx, folder); err != nil {
				s.logger.Warn("physical delete failed, removing records anyway",
					"folder_id", folder.ID,
					"path", folder.Path,
					"error", err,
				)
			}
		}

		if err := s.folderRepo.DeleteSubtree(ctx, []int64{folder.ID}); err != nil {
			return err
		}

		s.logger.Info("folder deleted",
			"id", folder.ID,
			"path", folder.Path,
			"subtree_size", len(folderIDs),
			"physical", deletePhysical,
		)
	}
	return nil
}

func (s *folderService) deleteDirectory(ctx context.Context, folder *models.Folder) error {
	adapter, err := s.volumes.AdapterFor(*folder.VolumeID)
	if err != nil {
		return err
	}
	return adapter.DeleteDirectory(ctx, strings.TrimSuffix(folder.Path, "/"))
}

func validateFolderName(name string) error {
	return validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.Length(1, config.MaxFolderNameLength),
		validation.By(noPathSeparators),
	)
}

// noPathSeparators keeps folder names single path segments. A name with a
// separator would desync the stored path from the ancestor chain and make
// directory renames relocate across parents.
func noPathSeparators(value interface{}) error {
	name, _ := value.(string)
	if strings.ContainsAny(name, `/\`) {
		return errors.New("must not contain path separators")
	}
	return nil
}
