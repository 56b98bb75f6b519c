package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/infrastructure/cache"
	"github.com/zotdga/zotdga/internal/infrastructure/storage"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// DerivativeUsecase answers transform requests: resolve the source asset,
// serve from the rendition cache, or generate, store and serve on a miss.
// Identical concurrent misses are collapsed into one computation, and total
// decode/encode concurrency is capped by a semaphore.
type DerivativeUsecase struct {
	assets     domain.AssetRepository
	store      storage.Storage
	renditions *cache.RenditionCache
	engine     domain.TransformEngine
	flight     singleflight.Group
	sem        *semaphore.Weighted
}

func NewDerivativeUsecase(
	assets domain.AssetRepository,
	store storage.Storage,
	renditions *cache.RenditionCache,
	engine domain.TransformEngine,
	maxConcurrent int,
) *DerivativeUsecase {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &DerivativeUsecase{
		assets:     assets,
		store:      store,
		renditions: renditions,
		engine:     engine,
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

func (u *DerivativeUsecase) Derive(ctx context.Context, ownerID, assetID string, t domain.Transform) (io.ReadCloser, string, error) {
	asset, err := u.resolveImage(ctx, ownerID, assetID)
	if err != nil {
		return nil, "", err
	}

	key := t.CacheKey(asset.Stem())
	dir := asset.StorageDir()

	rc, hit, err := u.renditions.Lookup(ctx, dir, key)
	if err != nil {
		return nil, "", err
	}
	if hit {
		zlog.Logger.Info().
			Str("asset_id", assetID).
			Str("key", key).
			Msg("serving cached rendition")
		return rc, t.Format.ContentType(), nil
	}

	// Collapse identical concurrent misses into a single generation. The
	// flight runs on a detached context: waiters piggyback on the leader's
	// computation, so the leader hanging up must not fail them all.
	flightKey := path.Join(dir, key)
	genCtx := context.WithoutCancel(ctx)
	_, err, _ = u.flight.Do(flightKey, func() (interface{}, error) {
		return nil, u.generate(genCtx, asset, t, key)
	})
	if err != nil {
		return nil, "", err
	}

	rc, hit, err = u.renditions.Lookup(ctx, dir, key)
	if err != nil {
		return nil, "", err
	}
	if !hit {
		return nil, "", fmt.Errorf("%w: rendition missing after generation", domain.ErrStorageFailed)
	}

	return rc, t.Format.ContentType(), nil
}

func (u *DerivativeUsecase) generate(ctx context.Context, asset *domain.Asset, t domain.Transform, key string) error {
	if err := u.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire transform slot: %w", err)
	}
	defer u.sem.Release(1)

	src, err := u.openSource(ctx, asset)
	if err != nil {
		return err
	}
	defer src.Close()

	zlog.Logger.Info().
		Str("asset_id", asset.ID).
		Str("op", string(t.Op)).
		Str("key", key).
		Msg("generating rendition")

	return u.renditions.Store(ctx, asset.StorageDir(), key, func(w io.Writer) error {
		return u.engine.Transform(ctx, src, t, w)
	})
}

func (u *DerivativeUsecase) Inspect(ctx context.Context, ownerID, assetID string) (*domain.ImageInfo, error) {
	asset, err := u.resolveImage(ctx, ownerID, assetID)
	if err != nil {
		return nil, err
	}

	if err := u.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire transform slot: %w", err)
	}
	defer u.sem.Release(1)

	src, err := u.openSource(ctx, asset)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return u.engine.Probe(ctx, src)
}

func (u *DerivativeUsecase) resolveImage(ctx context.Context, ownerID, assetID string) (*domain.Asset, error) {
	asset, err := u.assets.FindByIDForOwner(ctx, assetID, ownerID)
	if err != nil {
		return nil, err
	}
	if !asset.IsImage() {
		return nil, fmt.Errorf("%w: asset kind is %s", domain.ErrUnsupportedKind, asset.Kind)
	}
	return asset, nil
}

func (u *DerivativeUsecase) openSource(ctx context.Context, asset *domain.Asset) (io.ReadCloser, error) {
	src, err := u.store.Open(ctx, asset.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			// Registry row exists but the bytes are gone: a consistency
			// fault worth louder logging than a plain not-found.
			zlog.Logger.Error().
				Str("asset_id", asset.ID).
				Str("path", asset.StoragePath).
				Msg("asset record exists but source file is missing")
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceFileMissing, asset.StoragePath)
		}
		return nil, fmt.Errorf("%w: open source %s: %v", domain.ErrStorageFailed, asset.StoragePath, err)
	}
	return src, nil
}
