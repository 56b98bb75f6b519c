package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/config"
)

type localStorage struct {
	basePath string
}

func NewLocalStorage(cfg *config.StorageConfig) (Storage, error) {
	if cfg.LocalPath == "" {
		return nil, fmt.Errorf("LocalPath is empty, set storage.local_path in config or env")
	}

	if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &localStorage{basePath: cfg.LocalPath}, nil
}

func (s *localStorage) Save(ctx context.Context, objectPath string, reader io.Reader) error {
	if reader == nil {
		zlog.Logger.Error().Str("path", objectPath).Msg("reader is nil")
		return fmt.Errorf("reader is nil")
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", objectPath, err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to create file")
		return fmt.Errorf("create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to write file")
		return fmt.Errorf("write file %s: %w", fullPath, err)
	}
	if written == 0 {
		zlog.Logger.Error().Str("path", fullPath).Msg("no bytes written to file")
		return fmt.Errorf("no bytes written to file %s", fullPath)
	}

	zlog.Logger.Info().
		Str("path", objectPath).
		Int64("bytes", written).
		Msg("file saved successfully")

	return nil
}

// StoreAtomic writes through a temp file in the target directory and renames
// it into place, so readers never observe a partially written rendition.
func (s *localStorage) StoreAtomic(ctx context.Context, objectPath string, produce func(io.Writer) error) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(objectPath))
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		zlog.Logger.Error().Err(err).Str("dir", dir).Msg("failed to create temp file")
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if err := produce(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, fullPath); err != nil {
		os.Remove(tmpName)
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to publish file")
		return fmt.Errorf("rename %s to %s: %w", tmpName, fullPath, err)
	}

	zlog.Logger.Info().Str("path", objectPath).Msg("file stored atomically")
	return nil
}

func (s *localStorage) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(objectPath))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			zlog.Logger.Warn().Str("path", fullPath).Msg("file not found")
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectPath)
		}
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to open file")
		return nil, fmt.Errorf("open file %s: %w", fullPath, err)
	}

	return file, nil
}

func (s *localStorage) Exists(ctx context.Context, objectPath string) (bool, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(objectPath))

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", fullPath, err)
	}
	return true, nil
}

func (s *localStorage) Delete(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return nil
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(objectPath))

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			zlog.Logger.Warn().Str("path", fullPath).Msg("file not found, skipping delete")
			return nil
		}
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to delete file")
		return fmt.Errorf("delete file %s: %w", fullPath, err)
	}

	zlog.Logger.Info().Str("path", objectPath).Msg("file deleted successfully")
	return nil
}

func (s *localStorage) DeleteTree(ctx context.Context, prefix string) error {
	if prefix == "" {
		return nil
	}

	fullPath := filepath.Join(s.basePath, filepath.FromSlash(prefix))

	if err := os.RemoveAll(fullPath); err != nil {
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to delete tree")
		return fmt.Errorf("delete tree %s: %w", fullPath, err)
	}

	zlog.Logger.Info().Str("prefix", prefix).Msg("tree deleted successfully")
	return nil
}
