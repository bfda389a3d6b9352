package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"mosaic/internal/domain/models"
	"mosaic/internal/domain/repositories"
)

const assetColumns = "id, uid, folder_id, filename, kind, size, date_modified, date_deleted"

// assetRepository implements repositories.AssetRepository backed by
// PostgreSQL.
type assetRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAssetRepository creates a PostgreSQL asset repository.
func NewAssetRepository(config *RepositoryConfig) repositories.AssetRepository {
	return &assetRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func (r *assetRepository) ListByFolders(ctx context.Context, folderIDs []int64) ([]*models.Asset, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = ANY($1) AND date_deleted IS NULL
		ORDER BY id`, assetColumns, r.tables.Assets)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("list assets by folders: %w", err)
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		var asset models.Asset
		err := rows.Scan(
			&asset.ID, &asset.UID, &asset.FolderID, &asset.Filename,
			&asset.Kind, &asset.Size, &asset.DateModified, &asset.DateDeleted,
		)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, &asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}

	return assets, nil
}

func (r *assetRepository) ListFilenames(ctx context.Context, folderID int64, stem string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT filename FROM %s
		WHERE folder_id = $1 AND date_deleted IS NULL AND filename ILIKE $2 ESCAPE '\'`,
		r.tables.Assets)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderID, escapeLike(stem)+"%")
	if err != nil {
		return nil, fmt.Errorf("list filenames: %w", err)
	}
	defer rows.Close()

	var filenames []string
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, fmt.Errorf("scan filename: %w", err)
		}
		filenames = append(filenames, filename)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filenames: %w", err)
	}

	return filenames, nil
}

func (r *assetRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.tables.Assets)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete asset %d: %w", id, err)
	}
	return nil
}
