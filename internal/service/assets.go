package service

import (
	"context"
	"log/slog"

	"mosaic/internal/domain/models"
	"mosaic/internal/domain/repositories"
	"mosaic/internal/domain/services"
	"mosaic/internal/storage"
)

// assetPersister removes asset rows and, unless asked to keep them, the
// backing files. Upload-side persistence lives in the upload pipeline;
// this half exists so subtree deletion can clean up after itself.
type assetPersister struct {
	assetRepo  repositories.AssetRepository
	folderRepo repositories.FolderRepository
	volumes    storage.VolumeRegistry
	logger     *slog.Logger
}

// NewAssetPersister creates the deletion-side asset persister
func NewAssetPersister(
	assetRepo repositories.AssetRepository,
	folderRepo repositories.FolderRepository,
	volumes storage.VolumeRegistry,
	logger *slog.Logger,
) services.AssetPersister {
	return &assetPersister{
		assetRepo:  assetRepo,
		folderRepo: folderRepo,
		volumes:    volumes,
		logger:     logger,
	}
}

// DeleteAsset removes the asset record. With keepFile false it first tries
// to remove the physical file; a failure there is logged and the record is
// removed regardless.
func (s *assetPersister) DeleteAsset(ctx context.Context, asset *models.Asset, keepFile bool) error {
	if !keepFile {
		if err := s.deleteFile(ctx, asset); err != nil {
			s.logger.Warn("physical file delete failed, removing record anyway",
				"asset_id", asset.ID,
				"filename", asset.Filename,
				"error", err,
			)
		}
	}

	return s.assetRepo.Delete(ctx, asset.ID)
}

func (s *assetPersister) deleteFile(ctx context.Context, asset *models.Asset) error {
	folder, err := s.folderRepo.GetByID(ctx, asset.FolderID)
	if err != nil {
		return err
	}
	if folder.VolumeID == nil {
		return nil
	}

	adapter, err := s.volumes.AdapterFor(*folder.VolumeID)
	if err != nil {
		return err
	}
	return adapter.DeleteFile(ctx, folder.Path+asset.Filename)
}
