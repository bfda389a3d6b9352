package service

import (
	"context"
	"log/slog"

	"mosaic/internal/domain/models"
	"mosaic/internal/domain/repositories"
	"mosaic/internal/domain/services"
)

type treeService struct {
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewTreeService creates a new folder tree service
func NewTreeService(folderRepo repositories.FolderRepository, logger *slog.Logger) services.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// BuildTree links the flat list into a forest in one pass over the input.
// A node attaches to its parent only when the parent was already seen;
// otherwise it becomes a root of the result. Feeding folders ordered by
// path therefore yields the full hierarchy, while an unordered or partial
// list degrades to a flatter forest instead of triggering lookups.
func (s *treeService) BuildTree(folders []*models.Folder) []*models.FolderTreeNode {
	seen := make(map[int64]*models.FolderTreeNode, len(folders))
	var roots []*models.FolderTreeNode

	for _, folder := range folders {
		node := &models.FolderTreeNode{
			ID:       folder.ID,
			UID:      folder.UID,
			ParentID: folder.ParentID,
			VolumeID: folder.VolumeID,
			Name:     folder.Name,
			Path:     folder.Path,
		}
		seen[folder.ID] = node

		if folder.ParentID != nil {
			if parent, ok := seen[*folder.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// VolumeTree loads every folder of the volume ordered by path and builds
// the forest. Path order guarantees parents precede children.
func (s *treeService) VolumeTree(ctx context.Context, volumeID int64) ([]*models.FolderTreeNode, error) {
	folders, err := s.folderRepo.Find(ctx, &models.FolderCriteria{
		VolumeID: models.NullID(volumeID),
		Order:    "path",
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("building volume tree", "volume_id", volumeID, "folders", len(folders))
	return s.BuildTree(folders), nil
}
