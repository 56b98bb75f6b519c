package domain

import (
	"fmt"
	"strconv"
)

type TransformOp string

const (
	OpResize    TransformOp = "resize"
	OpCrop      TransformOp = "crop"
	OpThumbnail TransformOp = "thumbnail"
	OpConvert   TransformOp = "convert"
	OpInfo      TransformOp = "info"
)

type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatWebP ImageFormat = "webp"
	FormatGIF  ImageFormat = "gif"
)

const (
	MinDimension = 1
	MaxDimension = 4096
	MinThumbSize = 50
	MaxThumbSize = 1000
	MinQuality   = 1
	MaxQuality   = 100

	DefaultQuality   = 80
	DefaultThumbSize = 300
)

// Transform is the canonical, validated form of a requested derivative
// operation. A transform together with an asset id fully determines the
// output; no hidden state participates.
type Transform struct {
	Op      TransformOp
	Width   int
	Height  int
	X       int
	Y       int
	Size    int
	Quality int
	Format  ImageFormat
}

// ParseResize validates resize query parameters. At least one of width and
// height is required; values are bounded to [1,4096].
func ParseResize(width, height, quality, format string) (Transform, error) {
	t := Transform{Op: OpResize, Format: FormatJPEG}

	if width == "" && height == "" {
		return t, fmt.Errorf("%w: at least one of width and height is required", ErrInvalidParameter)
	}

	var err error
	if width != "" {
		if t.Width, err = parseDimension("width", width); err != nil {
			return t, err
		}
	}
	if height != "" {
		if t.Height, err = parseDimension("height", height); err != nil {
			return t, err
		}
	}
	if t.Quality, err = parseQuality(quality); err != nil {
		return t, err
	}
	if format != "" {
		if t.Format, err = parseFormat(format); err != nil {
			return t, err
		}
	}

	return t, nil
}

// ParseCrop validates crop query parameters: a non-negative origin and a
// positive extent in absolute pixel coordinates. Bounds against the decoded
// source are checked later by the engine, since they are unknown here.
func ParseCrop(x, y, width, height, quality string) (Transform, error) {
	t := Transform{Op: OpCrop, Format: FormatJPEG}

	var err error
	if t.X, err = parseOffset("x", x); err != nil {
		return t, err
	}
	if t.Y, err = parseOffset("y", y); err != nil {
		return t, err
	}
	if t.Width, err = parseExtent("width", width); err != nil {
		return t, err
	}
	if t.Height, err = parseExtent("height", height); err != nil {
		return t, err
	}
	if t.Quality, err = parseQuality(quality); err != nil {
		return t, err
	}

	return t, nil
}

// ParseThumbnail validates thumbnail query parameters. Size defaults to 300
// and is bounded to [50,1000]; the output is always an exact size×size square.
func ParseThumbnail(size, quality string) (Transform, error) {
	t := Transform{Op: OpThumbnail, Size: DefaultThumbSize, Format: FormatJPEG}

	if size != "" {
		v, err := strconv.Atoi(size)
		if err != nil {
			return t, fmt.Errorf("%w: size must be an integer", ErrInvalidParameter)
		}
		if v < MinThumbSize || v > MaxThumbSize {
			return t, fmt.Errorf("%w: size must be between %d and %d", ErrInvalidParameter, MinThumbSize, MaxThumbSize)
		}
		t.Size = v
	}

	var err error
	if t.Quality, err = parseQuality(quality); err != nil {
		return t, err
	}

	return t, nil
}

// ParseConvert validates convert query parameters. Format is required.
func ParseConvert(format, quality string) (Transform, error) {
	t := Transform{Op: OpConvert}

	if format == "" {
		return t, fmt.Errorf("%w: format is required", ErrInvalidParameter)
	}

	var err error
	if t.Format, err = parseFormat(format); err != nil {
		return t, err
	}
	if t.Quality, err = parseQuality(quality); err != nil {
		return t, err
	}

	return t, nil
}

// InfoTransform is the read-only metadata probe; it takes no parameters and
// produces no cache entry.
func InfoTransform() Transform {
	return Transform{Op: OpInfo}
}

// CacheKey derives the deterministic rendition filename for this transform
// against a source whose filename stem is stem. Parameter values are embedded
// positionally so cache entries stay debuggable on disk; every value is an
// integer or enum string, never user-controlled free text.
func (t Transform) CacheKey(stem string) string {
	switch t.Op {
	case OpResize:
		return fmt.Sprintf("%s_resize_w%d_h%d_q%d.%s", stem, t.Width, t.Height, t.Quality, t.Format.Ext())
	case OpCrop:
		return fmt.Sprintf("%s_crop_x%d_y%d_w%d_h%d_q%d.%s", stem, t.X, t.Y, t.Width, t.Height, t.Quality, t.Format.Ext())
	case OpThumbnail:
		return fmt.Sprintf("%s_thumb_s%d_q%d.%s", stem, t.Size, t.Quality, t.Format.Ext())
	case OpConvert:
		return fmt.Sprintf("%s_convert_q%d.%s", stem, t.Quality, t.Format.Ext())
	default:
		return ""
	}
}

func (f ImageFormat) Ext() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	default:
		return string(f)
	}
}

func (f ImageFormat) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func parseDimension(name, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParameter, name)
	}
	if v < MinDimension || v > MaxDimension {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidParameter, name, MinDimension, MaxDimension)
	}
	return v, nil
}

func parseOffset(name, raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidParameter, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParameter, name)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidParameter, name)
	}
	return v, nil
}

func parseExtent(name, raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidParameter, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParameter, name)
	}
	if v < 1 {
		return 0, fmt.Errorf("%w: %s must be at least 1", ErrInvalidParameter, name)
	}
	return v, nil
}

func parseQuality(raw string) (int, error) {
	if raw == "" {
		return DefaultQuality, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: quality must be an integer", ErrInvalidParameter)
	}
	if v < MinQuality || v > MaxQuality {
		return 0, fmt.Errorf("%w: quality must be between %d and %d", ErrInvalidParameter, MinQuality, MaxQuality)
	}
	return v, nil
}

func parseFormat(raw string) (ImageFormat, error) {
	switch raw {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "gif":
		return FormatGIF, nil
	default:
		return "", fmt.Errorf("%w: format must be one of jpeg, jpg, png, webp, gif", ErrInvalidParameter)
	}
}
