package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/errs"
)

// ErrorHandler renders the last error a handler recorded with c.Error.
// Anything that is not an *errs.HTTPError becomes a bare 500 and is logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var httpErr *errs.HTTPError
		if !errors.As(err, &httpErr) {
			GetLogger(c).Error().Stack().Err(err).Msg("request failed")
			httpErr = errs.NewInternalServerError()
		}
		c.AbortWithStatusJSON(httpErr.Status, httpErr)
	}
}

// NoRoute reports unknown paths through ErrorHandler.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(errs.NewNotFoundError("Route not found"))
	}
}
