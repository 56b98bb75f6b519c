package dto

import (
	"time"

	"github.com/zotdga/zotdga/internal/domain"
)

type AssetResponse struct {
	ID               string    `json:"id"`
	FolderID         *string   `json:"folder_id,omitempty"`
	Kind             string    `json:"kind"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type"`
	Size             int64     `json:"size"`
	Width            int       `json:"width,omitempty"`
	Height           int       `json:"height,omitempty"`
	Description      string    `json:"description,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	OriginalURL  string `json:"original_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type AssetListResponse struct {
	Files  []*AssetResponse `json:"files"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type FolderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	APIKey string `json:"api_key"`
}

type KeyResponse struct {
	APIKey string `json:"api_key"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func MapAssetToResponse(asset *domain.Asset, baseURL string) *AssetResponse {
	if asset == nil {
		return nil
	}

	resp := &AssetResponse{
		ID:               asset.ID,
		FolderID:         asset.FolderID,
		Kind:             string(asset.Kind),
		OriginalFilename: asset.OriginalFilename,
		MimeType:         asset.MimeType,
		Size:             asset.Size,
		Width:            asset.Width,
		Height:           asset.Height,
		Description:      asset.Description,
		Tags:             asset.Tags,
		CreatedAt:        asset.CreatedAt,
		UpdatedAt:        asset.UpdatedAt,
		OriginalURL:      baseURL + "/uploads/" + asset.ID,
	}

	if asset.IsImage() {
		resp.ThumbnailURL = baseURL + "/process/thumbnail/" + asset.ID
	}

	return resp
}

func MapAssetsToResponse(assets []*domain.Asset, baseURL string, limit, offset int) *AssetListResponse {
	responses := make([]*AssetResponse, 0, len(assets))
	for _, asset := range assets {
		responses = append(responses, MapAssetToResponse(asset, baseURL))
	}

	return &AssetListResponse{
		Files:  responses,
		Total:  len(responses),
		Limit:  limit,
		Offset: offset,
	}
}

func MapFolderToResponse(folder *domain.Folder) *FolderResponse {
	if folder == nil {
		return nil
	}
	return &FolderResponse{
		ID:        folder.ID,
		Name:      folder.Name,
		ParentID:  folder.ParentID,
		CreatedAt: folder.CreatedAt,
	}
}
