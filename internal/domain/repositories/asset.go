package repositories

import (
	"context"

	"mosaic/internal/domain/models"
)

// AssetRepository defines the asset-table access this core needs: reading
// assets for conflict checks and subtree deletion, and removing rows when a
// folder subtree goes away.
type AssetRepository interface {
	// ListByFolders returns all non-deleted assets in the given folders.
	ListByFolders(ctx context.Context, folderIDs []int64) ([]*models.Asset, error)

	// ListFilenames returns the filenames of non-deleted assets in the
	// folder whose names start with stem, matched case-insensitively.
	ListFilenames(ctx context.Context, folderID int64, stem string) ([]string, error)

	// Delete removes the asset row.
	Delete(ctx context.Context, id int64) error
}
