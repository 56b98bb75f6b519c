package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/infrastructure/cache"
	"github.com/zotdga/zotdga/internal/infrastructure/storage"
)

type AssetUsecase struct {
	assets     domain.AssetRepository
	folders    domain.FolderRepository
	store      storage.Storage
	renditions *cache.RenditionCache
	engine     domain.TransformEngine
	queue      domain.QueueService // nil when thumbnail prewarming is disabled
}

func NewAssetUsecase(
	assets domain.AssetRepository,
	folders domain.FolderRepository,
	store storage.Storage,
	renditions *cache.RenditionCache,
	engine domain.TransformEngine,
	queue domain.QueueService,
) *AssetUsecase {
	return &AssetUsecase{
		assets:     assets,
		folders:    folders,
		store:      store,
		renditions: renditions,
		engine:     engine,
		queue:      queue,
	}
}

func (u *AssetUsecase) Upload(ctx context.Context, ownerID string, in domain.UploadInput) (*domain.Asset, error) {
	if in.FolderID != nil {
		if _, err := u.folders.FindByIDForOwner(ctx, *in.FolderID, ownerID); err != nil {
			return nil, err
		}
	}

	kind := kindFromMime(in.MimeType)
	assetID := uuid.New().String()
	objectPath := path.Join(ownerID, assetID, sanitizeFilename(in.Filename))

	// Buffer image uploads so dimensions can be recorded without re-reading
	// from storage. Video uploads stream straight through.
	reader := in.Reader
	var width, height int
	if kind == domain.KindImage {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("%w: read upload: %v", domain.ErrStorageFailed, err)
		}
		if info, err := u.engine.Probe(ctx, bytes.NewReader(data)); err == nil {
			width, height = info.Width, info.Height
		} else {
			zlog.Logger.Warn().Err(err).Str("filename", in.Filename).Msg("failed to probe uploaded image")
		}
		reader = bytes.NewReader(data)
	}

	if err := u.store.Save(ctx, objectPath, reader); err != nil {
		zlog.Logger.Error().Err(err).Str("filename", in.Filename).Msg("failed to save original file")
		return nil, fmt.Errorf("%w: save original: %v", domain.ErrStorageFailed, err)
	}

	now := time.Now()
	asset := &domain.Asset{
		ID:               assetID,
		UserID:           ownerID,
		FolderID:         in.FolderID,
		Kind:             kind,
		OriginalFilename: in.Filename,
		StoragePath:      objectPath,
		MimeType:         in.MimeType,
		Size:             in.Size,
		Width:            width,
		Height:           height,
		Description:      strings.TrimSpace(in.Description),
		Tags:             in.Tags,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := u.assets.Create(ctx, asset); err != nil {
		_ = u.store.DeleteTree(ctx, path.Dir(objectPath))
		zlog.Logger.Error().Err(err).Str("asset_id", assetID).Msg("failed to create asset record")
		return nil, fmt.Errorf("create asset: %w", err)
	}

	if u.queue != nil && kind == domain.KindImage {
		if err := u.queue.PublishPrewarmTask(ctx, assetID, ownerID); err != nil {
			// Cache stays cold; the first request generates on demand.
			zlog.Logger.Error().Err(err).Str("asset_id", assetID).Msg("failed to publish prewarm task")
		}
	}

	zlog.Logger.Info().
		Str("asset_id", assetID).
		Str("filename", in.Filename).
		Str("kind", string(kind)).
		Int64("size", in.Size).
		Msg("asset uploaded successfully")

	return asset, nil
}

func (u *AssetUsecase) GetAsset(ctx context.Context, ownerID, id string) (*domain.Asset, error) {
	return u.assets.FindByIDForOwner(ctx, id, ownerID)
}

func (u *AssetUsecase) GetOriginal(ctx context.Context, ownerID, id string) (io.ReadCloser, *domain.Asset, error) {
	asset, err := u.assets.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, nil, err
	}

	file, err := u.store.Open(ctx, asset.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			zlog.Logger.Error().
				Str("asset_id", id).
				Str("path", asset.StoragePath).
				Msg("asset record exists but source file is missing")
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrSourceFileMissing, asset.StoragePath)
		}
		return nil, nil, fmt.Errorf("%w: open original: %v", domain.ErrStorageFailed, err)
	}

	return file, asset, nil
}

func (u *AssetUsecase) ListAssets(ctx context.Context, ownerID string, folderID *string, limit, offset int) ([]*domain.Asset, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	assets, err := u.assets.List(ctx, ownerID, folderID, limit, offset)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to list assets")
		return nil, err
	}
	return assets, nil
}

// DeleteAsset removes the registry row, the original bytes and every cached
// rendition. Renditions go first so a stale derivative can never outlive its
// source record.
func (u *AssetUsecase) DeleteAsset(ctx context.Context, ownerID, id string) error {
	asset, err := u.assets.FindByIDForOwner(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := u.renditions.Invalidate(ctx, asset.StorageDir()); err != nil {
		zlog.Logger.Error().Err(err).Str("asset_id", id).Msg("failed to invalidate rendition cache")
	}

	if err := u.store.DeleteTree(ctx, asset.StorageDir()); err != nil {
		zlog.Logger.Error().Err(err).Str("asset_id", id).Msg("failed to delete asset files")
	}

	if err := u.assets.Delete(ctx, id); err != nil {
		zlog.Logger.Error().Err(err).Str("asset_id", id).Msg("failed to delete asset record")
		return err
	}

	zlog.Logger.Info().Str("asset_id", id).Msg("asset deleted successfully")
	return nil
}

func kindFromMime(mimeType string) domain.AssetKind {
	if strings.HasPrefix(mimeType, "video/") {
		return domain.KindVideo
	}
	return domain.KindImage
}

// sanitizeFilename reduces an uploaded filename to a safe path segment. The
// stem also becomes the leading component of rendition cache keys.
func sanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" || out == "_" {
		return "file"
	}
	return out
}
