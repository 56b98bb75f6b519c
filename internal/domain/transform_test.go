package domain

import (
	"errors"
	"testing"
)

func TestParseResize(t *testing.T) {
	tests := []struct {
		name    string
		width   string
		height  string
		quality string
		format  string
		wantErr bool
	}{
		{name: "width only", width: "800"},
		{name: "height only", height: "600"},
		{name: "both dimensions", width: "800", height: "600"},
		{name: "no dimensions", wantErr: true},
		{name: "width at upper bound", width: "4096"},
		{name: "width above upper bound", width: "4097", wantErr: true},
		{name: "width at lower bound", width: "1"},
		{name: "width zero", width: "0", wantErr: true},
		{name: "width not a number", width: "abc", wantErr: true},
		{name: "quality at upper bound", width: "800", quality: "100"},
		{name: "quality zero", width: "800", quality: "0", wantErr: true},
		{name: "quality above upper bound", width: "800", quality: "101", wantErr: true},
		{name: "explicit format", width: "800", format: "webp"},
		{name: "bad format", width: "800", format: "bmp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := ParseResize(tt.width, tt.height, tt.quality, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseResize(%q, %q, %q, %q) succeeded, want error", tt.width, tt.height, tt.quality, tt.format)
				}
				if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("error = %v, want ErrInvalidParameter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseResize failed: %v", err)
			}
			if tr.Op != OpResize {
				t.Errorf("Op = %q, want %q", tr.Op, OpResize)
			}
		})
	}
}

func TestParseResizeDefaults(t *testing.T) {
	tr, err := ParseResize("800", "", "", "")
	if err != nil {
		t.Fatalf("ParseResize failed: %v", err)
	}
	if tr.Quality != DefaultQuality {
		t.Errorf("Quality = %d, want %d", tr.Quality, DefaultQuality)
	}
	if tr.Format != FormatJPEG {
		t.Errorf("Format = %q, want %q", tr.Format, FormatJPEG)
	}
}

func TestParseCrop(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h string
		wantErr    bool
	}{
		{name: "valid", x: "0", y: "0", w: "100", h: "100"},
		{name: "offset origin", x: "10", y: "20", w: "50", h: "60"},
		{name: "negative x", x: "-1", y: "0", w: "100", h: "100", wantErr: true},
		{name: "zero width", x: "0", y: "0", w: "0", h: "100", wantErr: true},
		{name: "missing y", x: "0", w: "100", h: "100", wantErr: true},
		{name: "missing width", x: "0", y: "0", h: "100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCrop(tt.x, tt.y, tt.w, tt.h, "")
			if tt.wantErr && err == nil {
				t.Fatal("ParseCrop succeeded, want error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("ParseCrop failed: %v", err)
			}
		})
	}
}

func TestParseThumbnail(t *testing.T) {
	tests := []struct {
		name     string
		size     string
		quality  string
		wantSize int
		wantErr  bool
	}{
		{name: "defaults", wantSize: DefaultThumbSize},
		{name: "size at lower bound", size: "50", wantSize: 50},
		{name: "size below lower bound", size: "49", wantErr: true},
		{name: "size at upper bound", size: "1000", wantSize: 1000},
		{name: "size above upper bound", size: "1001", wantErr: true},
		{name: "bad quality", size: "300", quality: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := ParseThumbnail(tt.size, tt.quality)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseThumbnail succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseThumbnail failed: %v", err)
			}
			if tr.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", tr.Size, tt.wantSize)
			}
		})
	}
}

func TestParseConvert(t *testing.T) {
	tr, err := ParseConvert("webp", "90")
	if err != nil {
		t.Fatalf("ParseConvert failed: %v", err)
	}
	if tr.Format != FormatWebP || tr.Quality != 90 {
		t.Errorf("got format %q quality %d, want webp 90", tr.Format, tr.Quality)
	}

	if _, err := ParseConvert("", ""); err == nil {
		t.Error("ParseConvert with empty format succeeded, want error")
	}
	if _, err := ParseConvert("tiff", ""); err == nil {
		t.Error("ParseConvert with unsupported format succeeded, want error")
	}

	tr, err = ParseConvert("jpg", "")
	if err != nil {
		t.Fatalf("ParseConvert failed: %v", err)
	}
	if tr.Format != FormatJPEG {
		t.Errorf("jpg did not normalize to jpeg: %q", tr.Format)
	}
}

func TestCacheKeyDeterminism(t *testing.T) {
	tr, err := ParseResize("800", "600", "75", "png")
	if err != nil {
		t.Fatalf("ParseResize failed: %v", err)
	}

	first := tr.CacheKey("photo")
	for i := 0; i < 10; i++ {
		if got := tr.CacheKey("photo"); got != first {
			t.Fatalf("CacheKey not deterministic: %q vs %q", got, first)
		}
	}
	if first != "photo_resize_w800_h600_q75.png" {
		t.Errorf("CacheKey = %q", first)
	}
}

func TestCacheKeyDistinctness(t *testing.T) {
	base := Transform{Op: OpResize, Width: 800, Height: 600, Quality: 80, Format: FormatJPEG}

	variants := []Transform{
		{Op: OpResize, Width: 801, Height: 600, Quality: 80, Format: FormatJPEG},
		{Op: OpResize, Width: 800, Height: 601, Quality: 80, Format: FormatJPEG},
		{Op: OpResize, Width: 800, Height: 600, Quality: 81, Format: FormatJPEG},
		{Op: OpResize, Width: 800, Height: 600, Quality: 80, Format: FormatPNG},
		{Op: OpCrop, X: 0, Y: 0, Width: 800, Height: 600, Quality: 80, Format: FormatJPEG},
		{Op: OpThumbnail, Size: 300, Quality: 80, Format: FormatJPEG},
		{Op: OpConvert, Quality: 80, Format: FormatJPEG},
	}

	seen := map[string]bool{base.CacheKey("img"): true}
	for i, v := range variants {
		key := v.CacheKey("img")
		if seen[key] {
			t.Errorf("variant %d collides: %q", i, key)
		}
		seen[key] = true
	}
}

func TestFormatContentType(t *testing.T) {
	if got := FormatWebP.ContentType(); got != "image/webp" {
		t.Errorf("ContentType = %q, want image/webp", got)
	}
	if got := FormatJPEG.Ext(); got != "jpg" {
		t.Errorf("Ext = %q, want jpg", got)
	}
}
