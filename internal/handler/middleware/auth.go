package middleware

import (
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/domain"
	"github.com/zotdga/zotdga/internal/dto"
)

// openPaths are reachable without an API key.
var openPaths = []string{
	"/health",
	"/api/auth/register",
	"/api/auth/login",
}

// AuthMiddleware resolves the API key from the Authorization header (Bearer
// scheme) or the X-API-Key header and stores the owning user's id in the
// request context under "user_id".
func AuthMiddleware(auth domain.AuthService) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		for _, p := range openPaths {
			if c.Request.URL.Path == p {
				c.Next()
				return
			}
		}

		rawKey := extractAPIKey(c)
		if rawKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "unauthorized",
				Message: "API key is required",
			})
			return
		}

		user, err := auth.ResolveKey(c.Request.Context(), rawKey)
		if err != nil {
			zlog.Logger.Warn().
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("rejected request with invalid api key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid API key",
			})
			return
		}

		c.Set("user_id", user.ID)
		c.Next()
	}
}

func extractAPIKey(c *ginext.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	return strings.TrimSpace(c.GetHeader("X-API-Key"))
}
