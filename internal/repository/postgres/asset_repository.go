package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
)

type assetRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewAssetRepository(db *dbpg.DB, strategy retry.Strategy) domain.AssetRepository {
	return &assetRepository{
		db:       db,
		strategy: strategy,
	}
}

const assetColumns = `id, user_id, folder_id, kind, original_filename, storage_path,
	   mime_type, size, width, height, description, tags, created_at, updated_at`

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	query := `
		INSERT INTO assets (
			id, user_id, folder_id, kind, original_filename, storage_path,
			mime_type, size, width, height, description, tags, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecWithRetry(ctx, r.strategy, query,
		asset.ID,
		asset.UserID,
		asset.FolderID,
		asset.Kind,
		asset.OriginalFilename,
		asset.StoragePath,
		asset.MimeType,
		asset.Size,
		nullInt(asset.Width),
		nullInt(asset.Height),
		nullString(asset.Description),
		nullString(joinTags(asset.Tags)),
		asset.CreatedAt,
		asset.UpdatedAt,
	)

	if err != nil {
		zlog.Logger.Error().Err(err).Str("asset_id", asset.ID).Msg("failed to create asset")
		return fmt.Errorf("create asset: %w", err)
	}

	zlog.Logger.Info().Str("asset_id", asset.ID).Msg("asset created successfully")
	return nil
}

func (r *assetRepository) FindByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	row := r.db.Master.QueryRowContext(ctx, query, id)
	return scanAsset(row)
}

func (r *assetRepository) FindByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1 AND user_id = $2`

	row := r.db.Master.QueryRowContext(ctx, query, id, ownerID)
	return scanAsset(row)
}

func (r *assetRepository) List(ctx context.Context, ownerID string, folderID *string, limit, offset int) ([]*domain.Asset, error) {
	var rows *sql.Rows
	var err error

	if folderID != nil {
		query := `SELECT ` + assetColumns + `
			FROM assets
			WHERE user_id = $1 AND folder_id = $2
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4`
		rows, err = r.db.QueryWithRetry(ctx, r.strategy, query, ownerID, *folderID, limit, offset)
	} else {
		query := `SELECT ` + assetColumns + `
			FROM assets
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		rows, err = r.db.QueryWithRetry(ctx, r.strategy, query, ownerID, limit, offset)
	}

	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to list assets")
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return assets, nil
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM assets WHERE id = $1`

	result, err := r.db.ExecWithRetry(ctx, r.strategy, query, id)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("asset_id", id).Msg("failed to delete asset")
		return fmt.Errorf("delete asset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrAssetNotFound
	}

	zlog.Logger.Info().Str("asset_id", id).Msg("asset deleted successfully")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*domain.Asset, error) {
	var asset domain.Asset
	var folderID, description, tags sql.NullString
	var width, height sql.NullInt32

	err := row.Scan(
		&asset.ID,
		&asset.UserID,
		&folderID,
		&asset.Kind,
		&asset.OriginalFilename,
		&asset.StoragePath,
		&asset.MimeType,
		&asset.Size,
		&width,
		&height,
		&description,
		&tags,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan asset: %w", err)
	}

	if folderID.Valid {
		asset.FolderID = &folderID.String
	}
	if width.Valid {
		asset.Width = int(width.Int32)
	}
	if height.Valid {
		asset.Height = int(height.Int32)
	}
	if description.Valid {
		asset.Description = description.String
	}
	if tags.Valid {
		asset.Tags = splitTags(tags.String)
	}

	return &asset, nil
}

// Tags persist as a comma-joined text column; tag values are trimmed of
// commas at the HTTP boundary so the join is unambiguous.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func nullInt(i int) sql.NullInt32 {
	if i == 0 {
		return sql.NullInt32{Valid: false}
	}
	return sql.NullInt32{Int32: int32(i), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
