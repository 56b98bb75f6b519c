package dto

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateKeyRequest struct {
	Label string `json:"label"`
}

type CreateFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// PrewarmTask asks the worker to generate the default thumbnail rendition
// for a freshly uploaded asset so the first view is a cache hit.
type PrewarmTask struct {
	AssetID string `json:"asset_id"`
	OwnerID string `json:"owner_id"`
}
