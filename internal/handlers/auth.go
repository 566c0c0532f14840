package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/errs"
	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

// IssueToken signs whatever identity claims the client posts, typically
// {email} after it signed in with the identity provider.
func IssueToken(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var claims map[string]interface{}
		if err := c.ShouldBindJSON(&claims); err != nil {
			_ = c.Error(errs.NewBadRequestError("invalid request body"))
			return
		}

		token, err := tokens.GenerateToken(claims)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
