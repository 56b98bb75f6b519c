package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/config"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage is a content store addressed by slash-separated object paths.
// Originals live at <owner>/<asset>/<filename>; renditions live under the
// asset's cache/ prefix and are written through StoreAtomic so a failed
// encode never lands on the canonical path.
type Storage interface {
	Save(ctx context.Context, objectPath string, reader io.Reader) error
	StoreAtomic(ctx context.Context, objectPath string, produce func(io.Writer) error) error
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Exists(ctx context.Context, objectPath string) (bool, error)
	Delete(ctx context.Context, objectPath string) error
	DeleteTree(ctx context.Context, prefix string) error
}

func New(cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local":
		zlog.Logger.Info().Msg("Initializing local storage")
		return NewLocalStorage(cfg)
	case "s3":
		zlog.Logger.Info().Msg("Initializing S3 storage")
		return NewS3Storage(cfg)
	default:
		zlog.Logger.Error().Str("type", cfg.Type).Msg("Unsupported storage type, use 'local' or 's3'")
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
