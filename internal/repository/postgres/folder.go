package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mosaic/internal/domain"
	"mosaic/internal/domain/models"
	"mosaic/internal/domain/repositories"
)

const folderColumns = "id, uid, parent_id, volume_id, name, path, created_at, updated_at"

// folderRepository implements repositories.FolderRepository backed by
// PostgreSQL with an in-memory id/uid cache.
type folderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
	cache  *FolderCache
}

// NewFolderRepository creates a PostgreSQL folder repository.
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &folderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
		cache:  NewFolderCache(),
	}
}

// cacheable reports whether the cache may serve or absorb this call. Inside
// a transaction the cache is bypassed: it holds committed state only, and a
// rollback must not leave phantom entries behind.
func (r *folderRepository) cacheable(ctx context.Context) bool {
	return repositories.GetTx(ctx) == nil
}

func (r *folderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	cacheable := r.cacheable(ctx)
	if cacheable {
		if folder, known := r.cache.LookupID(id); known {
			if folder == nil {
				return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
			}
			return folder, nil
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", folderColumns, r.tables.Folders)

	folder, err := r.scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			if cacheable {
				r.cache.StoreMissID(id)
			}
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder by id: %w", err)
	}

	if cacheable {
		r.cache.StoreHit(folder)
	}
	return folder, nil
}

func (r *folderRepository) GetByUID(ctx context.Context, uid string) (*models.Folder, error) {
	cacheable := r.cacheable(ctx)
	if cacheable {
		if folder, known := r.cache.LookupUID(uid); known {
			if folder == nil {
				return nil, fmt.Errorf("folder %s: %w", uid, domain.ErrNotFound)
			}
			return folder, nil
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE uid = $1", folderColumns, r.tables.Folders)

	folder, err := r.scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, uid))
	if err != nil {
		if IsPgNoRowsError(err) {
			if cacheable {
				r.cache.StoreMissUID(uid)
			}
			return nil, fmt.Errorf("folder %s: %w", uid, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder by uid: %w", err)
	}

	if cacheable {
		r.cache.StoreHit(folder)
	}
	return folder, nil
}

func (r *folderRepository) Find(ctx context.Context, criteria *models.FolderCriteria) ([]*models.Folder, error) {
	where, args := buildFolderWhere(criteria)
	suffix, err := buildFolderSuffix(criteria)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(fmt.Sprintf(
		"SELECT %s FROM %s %s %s", folderColumns, r.tables.Folders, where, suffix,
	))

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find folders: %w", err)
	}
	defer rows.Close()

	cacheable := r.cacheable(ctx)

	var folders []*models.Folder
	for rows.Next() {
		folder, err := r.scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		if cacheable {
			r.cache.StoreHit(folder)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func (r *folderRepository) FindOne(ctx context.Context, criteria *models.FolderCriteria) (*models.Folder, error) {
	criteria.Limit = 1

	folders, err := r.Find(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, nil
	}
	return folders[len(folders)-1], nil
}

func (r *folderRepository) Count(ctx context.Context, criteria *models.FolderCriteria) (int64, error) {
	where, args := buildFolderWhere(criteria)

	query := strings.TrimSpace(fmt.Sprintf(
		"SELECT COUNT(*) FROM %s %s", r.tables.Folders, where,
	))

	var count int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}
	return count, nil
}

func (r *folderRepository) Save(ctx context.Context, folder *models.Folder) error {
	if folder.ID == 0 {
		return r.insert(ctx, folder)
	}
	return r.update(ctx, folder)
}

func (r *folderRepository) insert(ctx context.Context, folder *models.Folder) error {
	folder.UID = uuid.NewString()

	query := fmt.Sprintf(`
		INSERT INTO %s (uid, parent_id, volume_id, name, path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.UID, folder.ParentID, folder.VolumeID, folder.Name, folder.Path,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %q already exists", folder.Name),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("insert folder: %w", err)
	}

	if r.cacheable(ctx) {
		r.cache.StoreHit(folder)
	}
	return nil
}

func (r *folderRepository) update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $2, volume_id = $3, name = $4, path = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.ID, folder.ParentID, folder.VolumeID, folder.Name, folder.Path,
	).Scan(&folder.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("folder %d: %w", folder.ID, domain.ErrNotFound)
		}
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %q already exists", folder.Name),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
		return fmt.Errorf("update folder: %w", err)
	}

	// In a transaction the new row state is not committed yet; drop any
	// cached copy instead of absorbing it.
	if r.cacheable(ctx) {
		r.cache.StoreHit(folder)
	} else {
		r.cache.Evict(folder)
	}
	return nil
}

func (r *folderRepository) DescendantsOf(ctx context.Context, folder *models.Folder) ([]*models.Folder, error) {
	hasParent := true
	criteria := &models.FolderCriteria{
		PathPrefix: &folder.Path,
		HasParent:  &hasParent,
	}
	if folder.VolumeID != nil {
		criteria.VolumeID = models.NullID(*folder.VolumeID)
	} else {
		criteria.VolumeID = models.IsNull()
	}

	matches, err := r.Find(ctx, criteria)
	if err != nil {
		return nil, err
	}

	descendants := make([]*models.Folder, 0, len(matches))
	for _, m := range matches {
		if m.ID == folder.ID {
			continue
		}
		descendants = append(descendants, m)
	}
	return descendants, nil
}

func (r *folderRepository) DeleteSubtree(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		folder, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		descendants, err := r.DescendantsOf(ctx, folder)
		if err != nil {
			return err
		}

		doomed := append(descendants, folder)

		// Deepest paths first so children are gone before their parents.
		sort.SliceStable(doomed, func(i, j int) bool {
			return strings.Count(doomed[i].Path, "/") > strings.Count(doomed[j].Path, "/")
		})

		query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.tables.Folders)
		for _, d := range doomed {
			if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, d.ID); err != nil {
				return fmt.Errorf("delete folder %d: %w", d.ID, err)
			}
			r.cache.Evict(d)
		}
	}
	return nil
}


// rowScanner abstracts pgx.Row and pgx.Rows for scanFolder.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *folderRepository) scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID, &folder.UID, &folder.ParentID, &folder.VolumeID,
		&folder.Name, &folder.Path, &folder.CreatedAt, &folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
