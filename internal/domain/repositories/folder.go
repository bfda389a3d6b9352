package repositories

import (
	"context"

	"mosaic/internal/domain/models"
)

// FolderRepository defines data access operations for folder records.
// Implementations own a read-through cache keyed by id and uid that also
// memoizes misses; the persisted table is the source of truth. The cache
// holds committed state only: calls inside a transaction bypass it.
type FolderRepository interface {
	// GetByID retrieves a folder by ID. Returns ErrNotFound when absent;
	// absence is memoized by the cache.
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// GetByUID retrieves a folder by its stable external identifier.
	GetByUID(ctx context.Context, uid string) (*models.Folder, error)

	// Find returns all folders matching the criteria, AND-combining every
	// non-nil field. Results are cached individually by id.
	Find(ctx context.Context, criteria *models.FolderCriteria) ([]*models.Folder, error)

	// FindOne forces Limit=1 and returns the sole match, or nil when there
	// is none. Not finding a folder is not an error here.
	FindOne(ctx context.Context, criteria *models.FolderCriteria) (*models.Folder, error)

	// Count returns the number of folders matching the criteria.
	Count(ctx context.Context, criteria *models.FolderCriteria) (int64, error)

	// Save inserts the folder when it has no id (assigning id and uid) and
	// updates the existing row otherwise. The uid never changes on update.
	Save(ctx context.Context, folder *models.Folder) error

	// DescendantsOf returns every folder below the given one: same volume,
	// path starting with the folder's path, parent set. The folder itself
	// is excluded.
	DescendantsOf(ctx context.Context, folder *models.Folder) ([]*models.Folder, error)

	// DeleteSubtree removes each listed folder and all of its descendants,
	// deleting the deepest paths first. Records only; physical directories
	// are the mutation service's concern.
	DeleteSubtree(ctx context.Context, ids []int64) error
}
