package http

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/dto"
)

type FolderHandler struct {
	service domain.FolderService
}

func NewFolderHandler(service domain.FolderService) *FolderHandler {
	return &FolderHandler{service: service}
}

func (h *FolderHandler) RegisterRoutes(engine *ginext.Engine) {
	engine.POST("/api/folders", h.CreateFolder)
	engine.GET("/api/folders", h.ListFolders)
	engine.DELETE("/api/folders/:id", h.DeleteFolder)
}

// CreateFolder POST /api/folders
func (h *FolderHandler) CreateFolder(c *ginext.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "Folder name is required",
		})
		return
	}

	folder, err := h.service.CreateFolder(c.Request.Context(), currentUserID(c), req.Name, req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MapFolderToResponse(folder))
}

// ListFolders GET /api/folders
func (h *FolderHandler) ListFolders(c *ginext.Context) {
	folders, err := h.service.ListFolders(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]*dto.FolderResponse, 0, len(folders))
	for _, folder := range folders {
		responses = append(responses, dto.MapFolderToResponse(folder))
	}

	c.JSON(http.StatusOK, responses)
}

// DeleteFolder DELETE /api/folders/:id
func (h *FolderHandler) DeleteFolder(c *ginext.Context) {
	if err := h.service.DeleteFolder(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
