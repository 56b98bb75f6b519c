package domain

import (
	"context"
	"io"
)

// UploadInput carries one multipart upload into the asset service. Tags and
// Description are optional caller-supplied annotations.
type UploadInput struct {
	FolderID    *string
	Filename    string
	MimeType    string
	Size        int64
	Description string
	Tags        []string
	Reader      io.Reader
}

type AssetService interface {
	Upload(ctx context.Context, ownerID string, in UploadInput) (*Asset, error)
	GetAsset(ctx context.Context, ownerID, id string) (*Asset, error)
	GetOriginal(ctx context.Context, ownerID, id string) (io.ReadCloser, *Asset, error)
	ListAssets(ctx context.Context, ownerID string, folderID *string, limit, offset int) ([]*Asset, error)
	DeleteAsset(ctx context.Context, ownerID, id string) error
}

// DerivativeService answers transform requests against a source asset:
// cache hit streams the stored rendition, cache miss generates, stores and
// streams it. Inspect is the read-only metadata probe.
type DerivativeService interface {
	Derive(ctx context.Context, ownerID, assetID string, t Transform) (io.ReadCloser, string, error)
	Inspect(ctx context.Context, ownerID, assetID string) (*ImageInfo, error)
}

// TransformEngine performs the pixel-level decode → operate → encode work.
type TransformEngine interface {
	Transform(ctx context.Context, reader io.Reader, t Transform, writer io.Writer) error
	Probe(ctx context.Context, reader io.Reader) (*ImageInfo, error)
}

type FolderService interface {
	CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*Folder, error)
	ListFolders(ctx context.Context, ownerID string) ([]*Folder, error)
	DeleteFolder(ctx context.Context, ownerID, id string) error
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	CreateKey(ctx context.Context, userID, label string) (string, error)
	ResolveKey(ctx context.Context, rawKey string) (*User, error)
}

type QueueService interface {
	PublishPrewarmTask(ctx context.Context, assetID, ownerID string) error
	Close() error
}

// ImageInfo is the result of the info probe. Dimensions are re-derived by
// decoding, with EXIF auto-orientation already applied.
type ImageInfo struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	ColorModel  string `json:"color_model"`
	Channels    int    `json:"channels"`
	BitDepth    int    `json:"bit_depth"`
	HasAlpha    bool   `json:"has_alpha"`
	Orientation string `json:"orientation"`
}
