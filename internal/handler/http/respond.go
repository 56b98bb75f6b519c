package http

import (
	"errors"
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/dto"
)

// respondError maps domain errors onto HTTP statuses. Validation failures echo
// the error text so callers can see which parameter was rejected; server-side
// failures return a generic message.
func respondError(c *ginext.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter), errors.Is(err, domain.ErrInvalidFormat):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_parameter",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "file_too_large",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrFolderNotFound),
		errors.Is(err, domain.ErrSourceFileMissing):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "Resource not found",
		})
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidAPIKey):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid credentials",
		})
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:   "email_taken",
			Message: "Email is already registered",
		})
	case errors.Is(err, domain.ErrUnsupportedKind):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "unsupported_kind",
			Message: "Operation is only supported for image assets",
		})
	case errors.Is(err, domain.ErrProcessingFailed):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "processing_failed",
			Message: "Failed to process image",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "server_error",
			Message: "An internal error occurred",
		})
	}
}

func currentUserID(c *ginext.Context) string {
	return c.GetString("user_id")
}
