package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/errs"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

// bindJSON decodes the body into v and records a 400 when it cannot.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		_ = c.Error(errs.NewBadRequestError("invalid request body"))
		return false
	}
	return true
}

// notFoundOr maps store.ErrNotFound to a 404 with message and passes other
// errors through.
func notFoundOr(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return errs.NewNotFoundError(message)
	}
	return err
}
