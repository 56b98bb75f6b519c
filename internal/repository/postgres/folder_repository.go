package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
)

type folderRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewFolderRepository(db *dbpg.DB, strategy retry.Strategy) domain.FolderRepository {
	return &folderRepository{
		db:       db,
		strategy: strategy,
	}
}

func (r *folderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
		INSERT INTO folders (id, user_id, name, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecWithRetry(ctx, r.strategy, query,
		folder.ID,
		folder.UserID,
		folder.Name,
		folder.ParentID,
		folder.CreatedAt,
	)

	if err != nil {
		zlog.Logger.Error().Err(err).Str("folder_id", folder.ID).Msg("failed to create folder")
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

func (r *folderRepository) FindByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Folder, error) {
	query := `
		SELECT id, user_id, name, parent_id, created_at
		FROM folders
		WHERE id = $1 AND user_id = $2
	`

	var folder domain.Folder
	var parentID sql.NullString

	row := r.db.Master.QueryRowContext(ctx, query, id, ownerID)
	err := row.Scan(&folder.ID, &folder.UserID, &folder.Name, &parentID, &folder.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, domain.ErrFolderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find folder: %w", err)
	}

	if parentID.Valid {
		folder.ParentID = &parentID.String
	}

	return &folder, nil
}

func (r *folderRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Folder, error) {
	query := `
		SELECT id, user_id, name, parent_id, created_at
		FROM folders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, ownerID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to list folders")
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []*domain.Folder
	for rows.Next() {
		var folder domain.Folder
		var parentID sql.NullString
		if err := rows.Scan(&folder.ID, &folder.UserID, &folder.Name, &parentID, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		if parentID.Valid {
			folder.ParentID = &parentID.String
		}
		folders = append(folders, &folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return folders, nil
}

func (r *folderRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM folders WHERE id = $1`

	result, err := r.db.ExecWithRetry(ctx, r.strategy, query, id)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("folder_id", id).Msg("failed to delete folder")
		return fmt.Errorf("delete folder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrFolderNotFound
	}

	return nil
}
