package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

const currentUserKey = "current_user"

// CurrentUser loads the caller's user by token email. The result is kept on
// the request so later guards and handlers reuse it.
func CurrentUser(c *gin.Context, users store.Users) (*models.User, error) {
	if u, ok := c.Get(currentUserKey); ok {
		return u.(*models.User), nil
	}
	u, err := users.FindUserByEmail(c.Request.Context(), GetEmail(c))
	if err != nil {
		return nil, err
	}
	c.Set(currentUserKey, u)
	return u, nil
}

// RequireRole must run after VerifyToken. A caller without a user record is
// forbidden like one with the wrong role.
func RequireRole(users store.Users, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := CurrentUser(c, users)
		if errors.Is(err, store.ErrNotFound) {
			forbidden(c)
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !u.HasRole(role) {
			forbidden(c)
			return
		}
		c.Next()
	}
}

// RequireSelf only lets callers through whose token email equals the path
// parameter param.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetEmail(c) != c.Param(param) {
			forbidden(c)
			return
		}
		c.Next()
	}
}
