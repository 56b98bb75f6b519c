package domain

import (
	"path"
	"strings"
	"time"
)

type AssetKind string

const (
	KindImage AssetKind = "image"
	KindVideo AssetKind = "video"
)

// Asset is an uploaded media file. The original bytes are immutable after
// upload; renditions are derived on demand and never registered as assets.
type Asset struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	FolderID         *string   `json:"folder_id,omitempty"`
	Kind             AssetKind `json:"kind"`
	OriginalFilename string    `json:"original_filename"`
	StoragePath      string    `json:"storage_path"`
	MimeType         string    `json:"mime_type"`
	Size             int64     `json:"size"`
	Width            int       `json:"width,omitempty"`
	Height           int       `json:"height,omitempty"`
	Description      string    `json:"description,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (a *Asset) IsImage() bool {
	return a.Kind == KindImage
}

// StorageDir is the per-asset directory the original lives in. The rendition
// cache for the asset lives in its cache/ subdirectory.
func (a *Asset) StorageDir() string {
	return path.Dir(a.StoragePath)
}

// Stem returns the original filename without its extension, used as the
// leading component of rendition cache keys.
func (a *Asset) Stem() string {
	base := path.Base(a.StoragePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type APIKey struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	KeyHash    string     `json:"-"`
	Label      string     `json:"label"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
