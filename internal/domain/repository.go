package domain

import "context"

type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	FindByID(ctx context.Context, id string) (*Asset, error)
	FindByIDForOwner(ctx context.Context, id, ownerID string) (*Asset, error)
	List(ctx context.Context, ownerID string, folderID *string, limit, offset int) ([]*Asset, error)
	Delete(ctx context.Context, id string) error
}

type FolderRepository interface {
	Create(ctx context.Context, folder *Folder) error
	FindByIDForOwner(ctx context.Context, id, ownerID string) (*Folder, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Folder, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	FindByHash(ctx context.Context, keyHash string) (*APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
}
