package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/zotdga/zotdga/internal/config"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/infrastructure/cache"
	"github.com/zotdga/zotdga/internal/infrastructure/storage"
)

type stubFolderRepo struct {
	folders map[string]*domain.Folder
}

func (r *stubFolderRepo) Create(ctx context.Context, folder *domain.Folder) error {
	r.folders[folder.ID] = folder
	return nil
}

func (r *stubFolderRepo) FindByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Folder, error) {
	folder, ok := r.folders[id]
	if !ok || folder.UserID != ownerID {
		return nil, domain.ErrFolderNotFound
	}
	return folder, nil
}

func (r *stubFolderRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Folder, error) {
	return nil, nil
}

func (r *stubFolderRepo) Delete(ctx context.Context, id string) error {
	delete(r.folders, id)
	return nil
}

func setupAssets(t *testing.T) (*AssetUsecase, *stubAssetRepo, storage.Storage, *cache.RenditionCache) {
	t.Helper()
	store, err := storage.NewLocalStorage(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}
	repo := &stubAssetRepo{assets: make(map[string]*domain.Asset)}
	folders := &stubFolderRepo{folders: make(map[string]*domain.Folder)}
	renditions := cache.NewRenditionCache(store)
	uc := NewAssetUsecase(repo, folders, store, renditions, &countingEngine{}, nil)
	return uc, repo, store, renditions
}

func TestUploadRecordsAnnotations(t *testing.T) {
	uc, repo, _, _ := setupAssets(t)

	asset, err := uc.Upload(context.Background(), "user1", domain.UploadInput{
		Filename:    "photo.jpg",
		MimeType:    "image/jpeg",
		Size:        12,
		Description: "  holiday shot  ",
		Tags:        []string{"travel", "beach"},
		Reader:      strings.NewReader("source bytes"),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if asset.Description != "holiday shot" {
		t.Errorf("Description = %q, want %q", asset.Description, "holiday shot")
	}
	if len(asset.Tags) != 2 || asset.Tags[0] != "travel" || asset.Tags[1] != "beach" {
		t.Errorf("Tags = %v, want [travel beach]", asset.Tags)
	}
	if asset.Width != 1 || asset.Height != 1 {
		t.Errorf("dimensions = %dx%d, want 1x1", asset.Width, asset.Height)
	}
	if _, ok := repo.assets[asset.ID]; !ok {
		t.Error("uploaded asset missing from repository")
	}
}

func TestDeleteAssetRemovesOriginalAndRenditions(t *testing.T) {
	uc, repo, store, renditions := setupAssets(t)
	ctx := context.Background()

	asset := seedAsset(t, repo, store, domain.KindImage, true)
	const key = "photo_thumbnail_300x300_q80.jpg"
	err := renditions.Store(ctx, asset.StorageDir(), key, func(w io.Writer) error {
		_, err := w.Write([]byte("rendition"))
		return err
	})
	if err != nil {
		t.Fatalf("Failed to seed rendition: %v", err)
	}

	if err := uc.DeleteAsset(ctx, "user1", "asset1"); err != nil {
		t.Fatalf("DeleteAsset failed: %v", err)
	}

	if exists, _ := store.Exists(ctx, asset.StorageDir()+"/cache/"+key); exists {
		t.Error("rendition survived asset deletion")
	}
	if exists, _ := store.Exists(ctx, asset.StoragePath); exists {
		t.Error("original file survived asset deletion")
	}
	if _, err := repo.FindByID(ctx, "asset1"); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("FindByID after delete = %v, want ErrAssetNotFound", err)
	}
}

func TestDeleteAssetOwnerMismatch(t *testing.T) {
	uc, repo, store, _ := setupAssets(t)
	seedAsset(t, repo, store, domain.KindImage, true)

	if err := uc.DeleteAsset(context.Background(), "user2", "asset1"); !errors.Is(err, domain.ErrAssetNotFound) {
		t.Fatalf("DeleteAsset error = %v, want ErrAssetNotFound", err)
	}
	if exists, _ := store.Exists(context.Background(), "user1/asset1/photo.jpg"); !exists {
		t.Error("foreign delete removed the original file")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"my photo (1).png", "my_photo__1_.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\cat.gif`, "cat.gif"},
		{"семейное.jpg", "________.jpg"},
		{"...", "file"},
		{"", "file"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKindFromMime(t *testing.T) {
	if got := kindFromMime("video/mp4"); got != domain.KindVideo {
		t.Errorf("kindFromMime(video/mp4) = %s, want video", got)
	}
	if got := kindFromMime("image/png"); got != domain.KindImage {
		t.Errorf("kindFromMime(image/png) = %s, want image", got)
	}
	if got := kindFromMime("application/octet-stream"); got != domain.KindImage {
		t.Errorf("kindFromMime(octet-stream) = %s, want image", got)
	}
}
