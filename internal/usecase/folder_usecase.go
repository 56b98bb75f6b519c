package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
)

type FolderUsecase struct {
	folders domain.FolderRepository
	assets  domain.AssetRepository
}

func NewFolderUsecase(folders domain.FolderRepository, assets domain.AssetRepository) *FolderUsecase {
	return &FolderUsecase{
		folders: folders,
		assets:  assets,
	}
}

func (u *FolderUsecase) CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", domain.ErrInvalidParameter)
	}

	if parentID != nil {
		if _, err := u.folders.FindByIDForOwner(ctx, *parentID, ownerID); err != nil {
			return nil, err
		}
	}

	folder := &domain.Folder{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now(),
	}

	if err := u.folders.Create(ctx, folder); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to create folder")
		return nil, err
	}

	zlog.Logger.Info().Str("folder_id", folder.ID).Str("name", name).Msg("folder created")
	return folder, nil
}

func (u *FolderUsecase) ListFolders(ctx context.Context, ownerID string) ([]*domain.Folder, error) {
	return u.folders.ListByOwner(ctx, ownerID)
}

// DeleteFolder removes an empty folder. Assets keep the folder association
// authoritative, so deletion is refused while any asset still points here.
func (u *FolderUsecase) DeleteFolder(ctx context.Context, ownerID, id string) error {
	if _, err := u.folders.FindByIDForOwner(ctx, id, ownerID); err != nil {
		return err
	}

	contents, err := u.assets.List(ctx, ownerID, &id, 1, 0)
	if err != nil {
		return err
	}
	if len(contents) > 0 {
		return fmt.Errorf("%w: folder is not empty", domain.ErrInvalidParameter)
	}

	if err := u.folders.Delete(ctx, id); err != nil {
		zlog.Logger.Error().Err(err).Str("folder_id", id).Msg("failed to delete folder")
		return err
	}

	zlog.Logger.Info().Str("folder_id", id).Msg("folder deleted")
	return nil
}
