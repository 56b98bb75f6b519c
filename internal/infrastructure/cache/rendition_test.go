package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/zotdga/zotdga/internal/config"
	"github.com/zotdga/zotdga/internal/infrastructure/storage"
)

func setupCache(t *testing.T) (*RenditionCache, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(&config.StorageConfig{Type: "local", LocalPath: dir})
	if err != nil {
		t.Fatalf("Failed to create local storage: %v", err)
	}
	return NewRenditionCache(store), dir
}

func TestRenditionCacheStoreAndLookup(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, found, err := c.Lookup(ctx, "user1/asset1", "photo_thumb_s300_q80.jpg")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if found {
		t.Fatal("Lookup reported a hit on an empty cache")
	}

	payload := []byte("rendition bytes")
	err = c.Store(ctx, "user1/asset1", "photo_thumb_s300_q80.jpg", func(w io.Writer) error {
		_, err := w.Write(payload)
		return err
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	rc, found, err := c.Lookup(ctx, "user1/asset1", "photo_thumb_s300_q80.jpg")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !found {
		t.Fatal("Lookup missed a stored entry")
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Failed to read entry: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("entry = %q, want %q", got, payload)
	}
}

func TestRenditionCacheFailedProducerLeavesNoEntry(t *testing.T) {
	c, base := setupCache(t)
	ctx := context.Background()

	bang := errors.New("encode exploded")
	err := c.Store(ctx, "user1/asset1", "photo_convert_q80.webp", func(w io.Writer) error {
		w.Write([]byte("partial"))
		return bang
	})
	if !errors.Is(err, bang) {
		t.Fatalf("Store error = %v, want producer error", err)
	}

	_, found, err := c.Lookup(ctx, "user1/asset1", "photo_convert_q80.webp")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if found {
		t.Error("failed producer left an entry at the canonical path")
	}

	// No temp residue either
	entries, err := os.ReadDir(filepath.Join(base, "user1", "asset1", CacheDir))
	if err == nil && len(entries) != 0 {
		t.Errorf("cache dir not empty after failed store: %d entries", len(entries))
	}
}

func TestRenditionCacheInvalidate(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	for _, key := range []string{"a_thumb_s300_q80.jpg", "a_resize_w100_h0_q80.jpg"} {
		err := c.Store(ctx, "user1/asset1", key, func(w io.Writer) error {
			_, err := w.Write([]byte("x"))
			return err
		})
		if err != nil {
			t.Fatalf("Store(%s) failed: %v", key, err)
		}
	}

	if err := c.Invalidate(ctx, "user1/asset1"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	for _, key := range []string{"a_thumb_s300_q80.jpg", "a_resize_w100_h0_q80.jpg"} {
		_, found, err := c.Lookup(ctx, "user1/asset1", key)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if found {
			t.Errorf("entry %s survived invalidation", key)
		}
	}
}

func TestRenditionCacheOwnershipIsolation(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	// Two users, identical source filenames and transform: entries must not
	// collide because each lives under its own asset directory.
	err := c.Store(ctx, "user1/asset1", "photo_thumb_s300_q80.jpg", func(w io.Writer) error {
		_, err := w.Write([]byte("first"))
		return err
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	err = c.Store(ctx, "user2/asset2", "photo_thumb_s300_q80.jpg", func(w io.Writer) error {
		_, err := w.Write([]byte("second"))
		return err
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	rc, _, err := c.Lookup(ctx, "user1/asset1", "photo_thumb_s300_q80.jpg")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "first" {
		t.Errorf("user1 entry = %q, want %q", got, "first")
	}
}
