package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/dto"
)

type AssetHandler struct {
	service        domain.AssetService
	maxUploadSize  int64
	allowedFormats []string
}

func NewAssetHandler(service domain.AssetService, maxUploadSizeMB int, allowedFormats []string) *AssetHandler {
	return &AssetHandler{
		service:        service,
		maxUploadSize:  int64(maxUploadSizeMB) * 1024 * 1024,
		allowedFormats: allowedFormats,
	}
}

func (h *AssetHandler) RegisterRoutes(engine *ginext.Engine) {
	engine.POST("/api/upload/image", h.Upload)
	engine.GET("/api/files", h.ListFiles)
	engine.GET("/api/files/:id", h.GetFile)
	engine.DELETE("/api/files/:id", h.DeleteFile)
	engine.GET("/uploads/:id", h.GetOriginal)
}

// Upload POST /api/upload/image
func (h *AssetHandler) Upload(c *ginext.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to get file from request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "No file provided",
		})
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "file_too_large",
			Message: fmt.Sprintf("File size exceeds maximum allowed (%d MB)", h.maxUploadSize/(1024*1024)),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !h.isAllowedFormat(ext) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_format",
			Message: fmt.Sprintf("Unsupported file format. Allowed: %v", h.allowedFormats),
		})
		return
	}

	var folderID *string
	if v := c.PostForm("folder_id"); v != "" {
		folderID = &v
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	asset, err := h.service.Upload(c.Request.Context(), currentUserID(c), domain.UploadInput{
		FolderID:    folderID,
		Filename:    header.Filename,
		MimeType:    mimeType,
		Size:        header.Size,
		Description: c.PostForm("description"),
		Tags:        parseTags(c.PostForm("tags")),
		Reader:      file,
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("filename", header.Filename).Msg("failed to upload file")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAssetToResponse(asset, h.getBaseURL(c)))
}

// ListFiles GET /api/files
func (h *AssetHandler) ListFiles(c *ginext.Context) {
	limit := 10
	if l := c.Query("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	var folderID *string
	if v := c.Query("folder_id"); v != "" {
		folderID = &v
	}

	assets, err := h.service.ListAssets(c.Request.Context(), currentUserID(c), folderID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapAssetsToResponse(assets, h.getBaseURL(c), limit, offset))
}

// GetFile GET /api/files/:id
func (h *AssetHandler) GetFile(c *ginext.Context) {
	asset, err := h.service.GetAsset(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MapAssetToResponse(asset, h.getBaseURL(c)))
}

// DeleteFile DELETE /api/files/:id
func (h *AssetHandler) DeleteFile(c *ginext.Context) {
	if err := h.service.DeleteAsset(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetOriginal GET /uploads/:id
func (h *AssetHandler) GetOriginal(c *ginext.Context) {
	id := c.Param("id")

	file, asset, err := h.service.GetOriginal(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", asset.MimeType)
	c.Header("Content-Length", strconv.FormatInt(asset.Size, 10))
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", asset.OriginalFilename))

	written, err := io.Copy(c.Writer, file)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("asset_id", id).
			Int64("bytes_written", written).
			Msg("failed to write original file to response")
		return
	}
}

// parseTags splits the comma-separated tags form field, dropping blanks.
func parseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func (h *AssetHandler) isAllowedFormat(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, allowed := range h.allowedFormats {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

func (h *AssetHandler) getBaseURL(c *ginext.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}
