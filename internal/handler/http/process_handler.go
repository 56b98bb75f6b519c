package http

import (
	"io"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
)

// ProcessHandler serves the on-demand derivative endpoints. Every route
// except info resolves to a deterministic cache entry, so repeated requests
// with the same parameters hit storage instead of the transform engine.
type ProcessHandler struct {
	service domain.DerivativeService
}

func NewProcessHandler(service domain.DerivativeService) *ProcessHandler {
	return &ProcessHandler{service: service}
}

func (h *ProcessHandler) RegisterRoutes(engine *ginext.Engine) {
	engine.GET("/process/resize/:id", h.Resize)
	engine.GET("/process/crop/:id", h.Crop)
	engine.GET("/process/thumbnail/:id", h.Thumbnail)
	engine.GET("/process/convert/:id", h.Convert)
	engine.GET("/process/info/:id", h.Info)
}

// Resize GET /process/resize/:id?width=&height=&quality=&format=
func (h *ProcessHandler) Resize(c *ginext.Context) {
	t, err := domain.ParseResize(
		c.Query("width"),
		c.Query("height"),
		c.Query("quality"),
		c.Query("format"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	h.serveDerivative(c, t)
}

// Crop GET /process/crop/:id?x=&y=&width=&height=&quality=
func (h *ProcessHandler) Crop(c *ginext.Context) {
	t, err := domain.ParseCrop(
		c.Query("x"),
		c.Query("y"),
		c.Query("width"),
		c.Query("height"),
		c.Query("quality"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	h.serveDerivative(c, t)
}

// Thumbnail GET /process/thumbnail/:id?size=&quality=
func (h *ProcessHandler) Thumbnail(c *ginext.Context) {
	t, err := domain.ParseThumbnail(c.Query("size"), c.Query("quality"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.serveDerivative(c, t)
}

// Convert GET /process/convert/:id?format=&quality=
func (h *ProcessHandler) Convert(c *ginext.Context) {
	t, err := domain.ParseConvert(c.Query("format"), c.Query("quality"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.serveDerivative(c, t)
}

// Info GET /process/info/:id
func (h *ProcessHandler) Info(c *ginext.Context) {
	id := c.Param("id")

	info, err := h.service.Inspect(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("asset_id", id).Msg("failed to inspect image")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *ProcessHandler) serveDerivative(c *ginext.Context, t domain.Transform) {
	id := c.Param("id")

	rc, contentType, err := h.service.Derive(c.Request.Context(), currentUserID(c), id, t)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("asset_id", id).
			Str("op", string(t.Op)).
			Msg("failed to derive rendition")
		respondError(c, err)
		return
	}
	defer rc.Close()

	// Renditions are immutable for a given parameter set.
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")

	written, err := io.Copy(c.Writer, rc)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("asset_id", id).
			Int64("bytes_written", written).
			Msg("failed to write rendition to response")
	}
}
