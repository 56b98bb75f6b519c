package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/dto"
)

// PrewarmWorker generates the default thumbnail rendition for freshly
// uploaded images so the first gallery view is served from cache.
type PrewarmWorker struct {
	derivatives domain.DerivativeService
	thumbSize   int
}

func NewPrewarmWorker(derivatives domain.DerivativeService, thumbSize int) *PrewarmWorker {
	if thumbSize < domain.MinThumbSize || thumbSize > domain.MaxThumbSize {
		thumbSize = domain.DefaultThumbSize
	}
	return &PrewarmWorker{
		derivatives: derivatives,
		thumbSize:   thumbSize,
	}
}

func (w *PrewarmWorker) HandlePrewarmTask(ctx context.Context, task *dto.PrewarmTask) error {
	zlog.Logger.Info().
		Str("asset_id", task.AssetID).
		Int("size", w.thumbSize).
		Msg("starting thumbnail prewarm task")

	t, err := domain.ParseThumbnail(strconv.Itoa(w.thumbSize), "")
	if err != nil {
		return fmt.Errorf("build prewarm transform: %w", err)
	}

	rc, _, err := w.derivatives.Derive(ctx, task.OwnerID, task.AssetID, t)
	if err != nil {
		// The asset may have been deleted between upload and prewarm, or
		// may not be an image at all. Neither is worth a redelivery.
		if errors.Is(err, domain.ErrAssetNotFound) || errors.Is(err, domain.ErrUnsupportedKind) {
			zlog.Logger.Warn().
				Err(err).
				Str("asset_id", task.AssetID).
				Msg("skipping prewarm task")
			return nil
		}
		zlog.Logger.Error().
			Err(err).
			Str("asset_id", task.AssetID).
			Msg("failed to prewarm thumbnail")
		return fmt.Errorf("prewarm thumbnail %s: %w", task.AssetID, err)
	}

	// Derive already persisted the rendition; drain and discard the stream.
	if _, err := io.Copy(io.Discard, rc); err != nil {
		rc.Close()
		return fmt.Errorf("drain prewarm rendition: %w", err)
	}
	rc.Close()

	zlog.Logger.Info().
		Str("asset_id", task.AssetID).
		Msg("thumbnail prewarmed successfully")

	return nil
}
