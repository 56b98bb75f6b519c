package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/zotdga/zotdga/internal/domain"
)

// testImage builds a width×height source with a red top-left quadrant and
// blue everywhere else, encoded as PNG.
func testImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 && y < height/2 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, blue)
			}
		}
	}
	// one transparent pixel so the png encoder keeps the alpha channel
	img.SetNRGBA(width-1, height-1, color.NRGBA{})

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodeOutput(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	return img
}

func TestTransformResizeShrinksToFit(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	src := testImage(t, 200, 100)

	var out bytes.Buffer
	tr := domain.Transform{Op: domain.OpResize, Width: 100, Quality: 80, Format: domain.FormatPNG}
	if err := e.Transform(ctx, bytes.NewReader(src), tr, &out); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	img := decodeOutput(t, out.Bytes())
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("resized to %dx%d, want 100x50", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestTransformResizeNeverUpscales(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	src := testImage(t, 200, 100)

	var out bytes.Buffer
	tr := domain.Transform{Op: domain.OpResize, Width: 4096, Height: 4096, Quality: 80, Format: domain.FormatPNG}
	if err := e.Transform(ctx, bytes.NewReader(src), tr, &out); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	img := decodeOutput(t, out.Bytes())
	if img.Bounds().Dx() > 200 || img.Bounds().Dy() > 100 {
		t.Errorf("upscaled to %dx%d, original was 200x100", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestTransformResizeSingleDimension(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	src := testImage(t, 200, 100)

	var out bytes.Buffer
	tr := domain.Transform{Op: domain.OpResize, Height: 25, Quality: 80, Format: domain.FormatPNG}
	if err := e.Transform(ctx, bytes.NewReader(src), tr, &out); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	img := decodeOutput(t, out.Bytes())
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 25 {
		t.Errorf("resized to %dx%d, want 50x25", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestTransformThumbnailExactSquare(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	for _, dims := range [][2]int{{200, 100}, {100, 200}, {131, 67}} {
		src := testImage(t, dims[0], dims[1])

		var out bytes.Buffer
		tr := domain.Transform{Op: domain.OpThumbnail, Size: 64, Quality: 80, Format: domain.FormatJPEG}
		if err := e.Transform(ctx, bytes.NewReader(src), tr, &out); err != nil {
			t.Fatalf("Transform(%dx%d) failed: %v", dims[0], dims[1], err)
		}

		img := decodeOutput(t, out.Bytes())
		if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
			t.Errorf("thumbnail of %dx%d is %dx%d, want 64x64", dims[0], dims[1], img.Bounds().Dx(), img.Bounds().Dy())
		}
	}
}

func TestTransformCropQuadrant(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	src := testImage(t, 80, 80)

	var out bytes.Buffer
	tr := domain.Transform{Op: domain.OpCrop, X: 0, Y: 0, Width: 40, Height: 40, Quality: 80, Format: domain.FormatPNG}
	if err := e.Transform(ctx, bytes.NewReader(src), tr, &out); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	img := decodeOutput(t, out.Bytes())
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 40 {
		t.Fatalf("cropped to %dx%d, want 40x40", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Top-left quadrant of the source is solid red
	for _, pt := range []image.Point{{0, 0}, {39, 39}, {20, 20}} {
		r, _, b, _ := img.At(pt.X, pt.Y).RGBA()
		if r>>8 != 255 || b>>8 != 0 {
			t.Errorf("pixel at %v = %v, want red", pt, img.At(pt.X, pt.Y))
		}
	}
}

func TestTransformCropOutOfBounds(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	src := testImage(t, 80, 80)

	var out bytes.Buffer
	tr := domain.Transform{Op: domain.OpCrop, X: 60, Y: 60, Width: 40, Height: 40, Quality: 80, Format: domain.FormatJPEG}
	err := e.Transform(ctx, bytes.NewReader(src), tr, &out)
	if !errors.Is(err, domain.ErrProcessingFailed) {
		t.Errorf("error = %v, want ErrProcessingFailed", err)
	}
}

func TestTransformConvert(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	src := testImage(t, 60, 40)

	tests := []struct {
		target domain.ImageFormat
		want   string
	}{
		{domain.FormatJPEG, "jpeg"},
		{domain.FormatWebP, "webp"},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		tr := domain.Transform{Op: domain.OpConvert, Quality: 90, Format: tt.target}
		if err := e.Transform(ctx, bytes.NewReader(src), tr, &out); err != nil {
			t.Fatalf("Transform to %s failed: %v", tt.target, err)
		}

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Bytes()))
		if err != nil {
			t.Fatalf("Failed to decode %s output: %v", tt.target, err)
		}
		if format != tt.want {
			t.Errorf("format = %q, want %q", format, tt.want)
		}
		if cfg.Width != 60 || cfg.Height != 40 {
			t.Errorf("%s output is %dx%d, want 60x40", tt.target, cfg.Width, cfg.Height)
		}
	}
}

func TestTransformCorruptSource(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	var out bytes.Buffer
	tr := domain.Transform{Op: domain.OpResize, Width: 100, Quality: 80, Format: domain.FormatJPEG}
	err := e.Transform(ctx, strings.NewReader("this is not an image"), tr, &out)
	if !errors.Is(err, domain.ErrProcessingFailed) {
		t.Errorf("error = %v, want ErrProcessingFailed", err)
	}
}

func TestProbe(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()
	src := testImage(t, 200, 100)

	info, err := e.Probe(ctx, bytes.NewReader(src))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if info.Width != 200 || info.Height != 100 {
		t.Errorf("dimensions = %dx%d, want 200x100", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format = %q, want png", info.Format)
	}
	if !info.HasAlpha {
		t.Error("HasAlpha = false for an NRGBA png")
	}
	if info.Orientation != "landscape" {
		t.Errorf("orientation = %q, want landscape", info.Orientation)
	}
}

func TestProbeCorruptSource(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	_, err := e.Probe(ctx, strings.NewReader("garbage"))
	if !errors.Is(err, domain.ErrProcessingFailed) {
		t.Errorf("error = %v, want ErrProcessingFailed", err)
	}
}
