package domain

import "errors"

var (
	ErrInvalidParameter   = errors.New("invalid transform parameter")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrFolderNotFound     = errors.New("folder not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrSourceFileMissing  = errors.New("source file missing from storage")
	ErrProcessingFailed   = errors.New("image processing failed")
	ErrStorageFailed      = errors.New("storage operation failed")
	ErrQueueFailed        = errors.New("queue operation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAPIKey      = errors.New("invalid api key")
	ErrEmailTaken         = errors.New("email already registered")
	ErrFileTooLarge       = errors.New("file size exceeds maximum allowed")
	ErrInvalidFormat      = errors.New("invalid or unsupported file format")
	ErrUnsupportedKind    = errors.New("operation not supported for this asset kind")
)
