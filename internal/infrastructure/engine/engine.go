package engine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"

	_ "golang.org/x/image/webp" // webp decode support
)

// Engine decodes a source image, applies one transform and encodes the
// result. It is stateless; concurrency limits live with the caller.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Transform(ctx context.Context, reader io.Reader, t domain.Transform, writer io.Writer) error {
	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		zlog.Logger.Error().Err(err).Str("op", string(t.Op)).Msg("failed to decode source image")
		return fmt.Errorf("%w: decode source: %v", domain.ErrProcessingFailed, err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return fmt.Errorf("%w: decoded image is empty", domain.ErrProcessingFailed)
	}

	var out image.Image
	switch t.Op {
	case domain.OpResize:
		out = shrinkToFit(img, t.Width, t.Height)
	case domain.OpCrop:
		out, err = cropRegion(img, t)
		if err != nil {
			return err
		}
	case domain.OpThumbnail:
		out = imaging.Fill(img, t.Size, t.Size, imaging.Center, imaging.Lanczos)
	case domain.OpConvert:
		out = img
	default:
		return fmt.Errorf("%w: unknown operation %q", domain.ErrProcessingFailed, t.Op)
	}

	if err := encode(writer, out, t.Format, t.Quality); err != nil {
		zlog.Logger.Error().Err(err).Str("op", string(t.Op)).Str("format", string(t.Format)).Msg("failed to encode rendition")
		return err
	}

	zlog.Logger.Info().
		Str("op", string(t.Op)).
		Int("source_width", img.Bounds().Dx()).
		Int("source_height", img.Bounds().Dy()).
		Int("output_width", out.Bounds().Dx()).
		Int("output_height", out.Bounds().Dy()).
		Str("format", string(t.Format)).
		Msg("rendition generated")

	return nil
}

// shrinkToFit bounds the image to the requested box, preserving aspect ratio
// and never enlarging beyond the original. A zero dimension means
// unconstrained on that axis.
func shrinkToFit(img image.Image, width, height int) image.Image {
	if width == 0 {
		width = img.Bounds().Dx()
	}
	if height == 0 {
		height = img.Bounds().Dy()
	}
	return imaging.Fit(img, width, height, imaging.Lanczos)
}

// cropRegion extracts an absolute-coordinate rectangle. Bounds depend on the
// decoded dimensions, so out-of-range requests are a processing failure here
// rather than a validation error upstream.
func cropRegion(img image.Image, t domain.Transform) (image.Image, error) {
	rect := image.Rect(t.X, t.Y, t.X+t.Width, t.Y+t.Height)
	if !rect.In(img.Bounds()) {
		return nil, fmt.Errorf("%w: crop region %dx%d at (%d,%d) exceeds source bounds %dx%d",
			domain.ErrProcessingFailed, t.Width, t.Height, t.X, t.Y, img.Bounds().Dx(), img.Bounds().Dy())
	}
	return imaging.Crop(img, rect), nil
}

func encode(w io.Writer, img image.Image, format domain.ImageFormat, quality int) error {
	var err error
	switch format {
	case domain.FormatJPEG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case domain.FormatPNG:
		// lossless, quality hint ignored
		err = imaging.Encode(w, img, imaging.PNG)
	case domain.FormatGIF:
		// palette-based, quality hint ignored
		err = imaging.Encode(w, img, imaging.GIF)
	case domain.FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	default:
		return fmt.Errorf("%w: unknown target format %q", domain.ErrProcessingFailed, format)
	}
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrProcessingFailed, format, err)
	}
	return nil
}

// Probe decodes only as much as needed to report authoritative metadata.
// Dimensions reflect EXIF auto-orientation.
func (e *Engine) Probe(ctx context.Context, reader io.Reader) (*domain.ImageInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read source: %v", domain.ErrProcessingFailed, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", domain.ErrProcessingFailed, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode source: %v", domain.ErrProcessingFailed, err)
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	info := &domain.ImageInfo{
		Width:       width,
		Height:      height,
		Format:      format,
		Orientation: orientationOf(width, height),
	}
	info.ColorModel, info.Channels, info.BitDepth, info.HasAlpha = describeColorModel(cfg.ColorModel)

	return info, nil
}

func orientationOf(width, height int) string {
	switch {
	case width > height:
		return "landscape"
	case height > width:
		return "portrait"
	default:
		return "square"
	}
}

func describeColorModel(m color.Model) (name string, channels, bitDepth int, hasAlpha bool) {
	switch m {
	case color.YCbCrModel:
		return "ycbcr", 3, 8, false
	case color.GrayModel:
		return "gray", 1, 8, false
	case color.Gray16Model:
		return "gray", 1, 16, false
	case color.CMYKModel:
		return "cmyk", 4, 8, false
	case color.RGBAModel:
		return "rgba", 4, 8, true
	case color.NRGBAModel:
		return "nrgba", 4, 8, true
	case color.RGBA64Model:
		return "rgba", 4, 16, true
	case color.NRGBA64Model:
		return "nrgba", 4, 16, true
	}
	if _, ok := m.(color.Palette); ok {
		return "paletted", 1, 8, false
	}
	return "unknown", 0, 0, false
}
