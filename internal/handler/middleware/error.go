package middleware

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
	"github.com/zotdga/zotdga/internal/dto"
)

// RecoveryMiddleware converts a handler panic into the API's standard
// {error, message} envelope instead of a dropped connection.
func RecoveryMiddleware() ginext.HandlerFunc {
	return func(c *ginext.Context) {
		defer func() {
			if r := recover(); r != nil {
				zlog.Logger.Error().
					Interface("panic", r).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Msg("request handler panicked")

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Error:   "server_error",
					Message: "An internal error occurred",
				})
			}
		}()

		c.Next()
	}
}
