package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/infrastructure/storage"
)

// CacheDir is the per-asset subdirectory renditions live in, sibling to the
// original file.
const CacheDir = "cache"

// RenditionCache maps deterministic transform keys to previously computed
// rendition bytes. Existence in the store is the sole index; there is no
// manifest and entries accumulate until the source asset is deleted.
type RenditionCache struct {
	store storage.Storage
}

func NewRenditionCache(store storage.Storage) *RenditionCache {
	return &RenditionCache{store: store}
}

func entryPath(assetDir, key string) string {
	return path.Join(assetDir, CacheDir, key)
}

// Lookup opens the cached rendition if present. The second return reports
// whether the entry exists; contents are streamed by the caller.
func (c *RenditionCache) Lookup(ctx context.Context, assetDir, key string) (io.ReadCloser, bool, error) {
	p := entryPath(assetDir, key)

	exists, err := c.store.Exists(ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("%w: check cache entry %s: %v", domain.ErrStorageFailed, p, err)
	}
	if !exists {
		return nil, false, nil
	}

	rc, err := c.store.Open(ctx, p)
	if err != nil {
		// Raced with an invalidation between the existence check and the
		// open; treat as a miss.
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: open cache entry %s: %v", domain.ErrStorageFailed, p, err)
	}

	zlog.Logger.Debug().Str("key", key).Str("asset_dir", assetDir).Msg("rendition cache hit")
	return rc, true, nil
}

// Store generates the entry through produce and publishes it atomically.
// Engine failures pass through unchanged; store failures are classified as
// storage errors.
func (c *RenditionCache) Store(ctx context.Context, assetDir, key string, produce func(io.Writer) error) error {
	p := entryPath(assetDir, key)

	if err := c.store.StoreAtomic(ctx, p, produce); err != nil {
		if errors.Is(err, domain.ErrProcessingFailed) {
			return err
		}
		zlog.Logger.Error().Err(err).Str("key", key).Str("asset_dir", assetDir).Msg("failed to store rendition")
		return fmt.Errorf("%w: store cache entry %s: %v", domain.ErrStorageFailed, p, err)
	}

	zlog.Logger.Info().Str("key", key).Str("asset_dir", assetDir).Msg("rendition stored")
	return nil
}

// Invalidate removes every rendition for the asset. Called when the source
// asset is deleted; best-effort, the caller decides whether failure is fatal.
func (c *RenditionCache) Invalidate(ctx context.Context, assetDir string) error {
	if err := c.store.DeleteTree(ctx, path.Join(assetDir, CacheDir)); err != nil {
		return fmt.Errorf("%w: invalidate cache for %s: %v", domain.ErrStorageFailed, assetDir, err)
	}
	zlog.Logger.Info().Str("asset_dir", assetDir).Msg("rendition cache invalidated")
	return nil
}
