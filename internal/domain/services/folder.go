package services

import (
	"context"

	"mosaic/internal/domain/models"
)

// FolderService coordinates folder mutations: record persistence, physical
// directories, and cascading path updates.
type FolderService interface {
	// CreateFolder creates a folder under an existing parent. The physical
	// directory is created first; its failure aborts the whole operation.
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder by id.
	GetFolder(ctx context.Context, id int64) (*models.Folder, error)

	// RenameFolder renames a non-root folder, renaming its physical
	// directory and rewriting every descendant's path prefix. Returns the
	// applied name.
	RenameFolder(ctx context.Context, id int64, newName string) (string, error)

	// DeleteFolders removes each folder and its subtree. Physical deletion
	// failures are logged and skipped; asset deletion is delegated to the
	// asset persister with keepFile = !deletePhysical.
	DeleteFolders(ctx context.Context, ids []int64, deletePhysical bool) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	ParentID int64  `json:"parent_id"`
	Name     string `json:"name"`
}

// PathResolver ensures every segment of a logical path has a folder record,
// creating missing segments (and optionally physical directories)
// idempotently.
type PathResolver interface {
	// EnsureFolderPath walks fullPath segment by segment under the volume
	// root and returns the folder for the final segment, or the root for an
	// empty path.
	EnsureFolderPath(ctx context.Context, fullPath string, volume *models.Volume, createPhysical bool) (*models.Folder, error)
}

// TreeService materializes flat folder lists into parent-linked forests.
type TreeService interface {
	// BuildTree assembles the input into a forest in a single pass. A
	// folder attaches to its parent only when the parent appeared earlier
	// in the input; otherwise it becomes a root. No further queries run.
	BuildTree(folders []*models.Folder) []*models.FolderTreeNode

	// VolumeTree loads all folders of a volume ordered by path and builds
	// the forest.
	VolumeTree(ctx context.Context, volumeID int64) ([]*models.FolderTreeNode, error)
}

// FilenameResolver produces collision-free filenames for uploads into a
// folder.
type FilenameResolver interface {
	// Resolve returns filename unchanged when it is free in the folder,
	// both in the asset table and on the physical volume. Otherwise it
	// derives a timestamped, random-suffixed variant and probes numbered
	// candidates until one is free.
	Resolve(ctx context.Context, filename string, folderID int64) (string, error)
}

// TempScope identifies the caller a scratch folder is provisioned for.
type TempScope struct {
	UserID    *int64 // identified user
	SessionID string // anonymous interactive caller; empty for console jobs
}

// TempFolderService resolves or creates per-caller scratch folders.
type TempFolderService interface {
	// UserTempFolder returns the scratch folder for the scope, creating it
	// (and its physical directory) when missing.
	UserTempFolder(ctx context.Context, scope TempScope) (*models.Folder, error)
}

// AssetPersister is the element-persistence collaborator this core hands
// asset deletion to. keepFile preserves the underlying file on the volume.
type AssetPersister interface {
	DeleteAsset(ctx context.Context, asset *models.Asset, keepFile bool) error
}
