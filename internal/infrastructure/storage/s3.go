package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/config"
)

type s3Storage struct {
	client *minio.Client
	bucket string
}

func NewS3Storage(cfg *config.StorageConfig) (Storage, error) {
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}

	creds := credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, "")
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize s3 client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check s3 bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{Region: cfg.S3Region}); err != nil {
			zlog.Logger.Warn().Err(err).Str("bucket", cfg.S3Bucket).Msg("unable to create bucket, ensure it exists and credentials are correct")
		} else {
			zlog.Logger.Info().Str("bucket", cfg.S3Bucket).Msg("created s3 bucket")
		}
	}

	return &s3Storage{
		client: client,
		bucket: cfg.S3Bucket,
	}, nil
}

func (s *s3Storage) Save(ctx context.Context, objectPath string, reader io.Reader) error {
	if reader == nil {
		zlog.Logger.Error().Str("path", objectPath).Msg("reader is nil")
		return fmt.Errorf("reader is nil")
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectPath, reader, -1, minio.PutObjectOptions{})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("object", objectPath).Msg("failed to put object to s3")
		return fmt.Errorf("put object %s: %w", objectPath, err)
	}

	zlog.Logger.Info().Str("path", objectPath).Msg("object saved to s3")
	return nil
}

// StoreAtomic buffers the produced bytes and uploads only on success; object
// puts are atomic on the s3 side, so no temp-object dance is needed.
func (s *s3Storage) StoreAtomic(ctx context.Context, objectPath string, produce func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := produce(&buf); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectPath, &buf, int64(buf.Len()), minio.PutObjectOptions{})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("object", objectPath).Msg("failed to put object to s3")
		return fmt.Errorf("put object %s: %w", objectPath, err)
	}

	zlog.Logger.Info().Str("path", objectPath).Msg("object stored to s3")
	return nil
}

func (s *s3Storage) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("object", objectPath).Msg("failed to get object")
		return nil, fmt.Errorf("get object %s: %w", objectPath, err)
	}

	if _, err := obj.Stat(); err != nil {
		zlog.Logger.Warn().Err(err).Str("object", objectPath).Msg("object not found or inaccessible")
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectPath)
	}

	return obj, nil
}

func (s *s3Storage) Exists(ctx context.Context, objectPath string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectPath, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", objectPath, err)
	}
	return true, nil
}

func (s *s3Storage) Delete(ctx context.Context, objectPath string) error {
	if objectPath == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectPath, minio.RemoveObjectOptions{}); err != nil {
		zlog.Logger.Error().Err(err).Str("path", objectPath).Msg("failed to delete object from s3")
		return fmt.Errorf("remove object %s: %w", objectPath, err)
	}
	zlog.Logger.Info().Str("path", objectPath).Msg("object deleted from s3")
	return nil
}

func (s *s3Storage) DeleteTree(ctx context.Context, prefix string) error {
	if prefix == "" {
		return nil
	}

	var lastErr error
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix + "/", Recursive: true}) {
		if obj.Err != nil {
			lastErr = obj.Err
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			zlog.Logger.Error().Err(err).Str("path", obj.Key).Msg("failed to delete object from s3")
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("delete tree %s: %w", prefix, lastErr)
	}
	zlog.Logger.Info().Str("prefix", prefix).Msg("tree deleted from s3")
	return nil
}
