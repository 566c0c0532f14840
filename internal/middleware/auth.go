package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chachabrian/swiftparcel-backend/internal/errs"
	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

const (
	ClaimsKey = "claims"
	EmailKey  = "email"
)

// VerifyToken accepts "Authorization: <scheme> <token>".
func VerifyToken(tokens *utils.TokenManager) gin.HandlerFunc {
	return verify(tokens, false)
}

// VerifySocketToken is VerifyToken plus a token query parameter, for
// websocket clients that cannot set headers. Use it on the upgrade route
// only.
func VerifySocketToken(tokens *utils.TokenManager) gin.HandlerFunc {
	return verify(tokens, true)
}

func verify(tokens *utils.TokenManager, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Fields(authHeader)
			if len(parts) == 2 {
				tokenString = parts[1]
			}
		} else if allowQuery {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			unauthorized(c)
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			GetLogger(c).Debug().Err(err).Msg("rejected token")
			unauthorized(c)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(EmailKey, utils.EmailFromClaims(claims))
		c.Next()
	}
}

// GetEmail returns the email of the verified token, or "".
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailKey)
}

func GetClaims(c *gin.Context) jwt.MapClaims {
	if claims, ok := c.Get(ClaimsKey); ok {
		if mc, ok := claims.(jwt.MapClaims); ok {
			return mc
		}
	}
	return nil
}

func unauthorized(c *gin.Context) {
	_ = c.Error(errs.NewUnauthorizedError())
	c.Abort()
}

func forbidden(c *gin.Context) {
	_ = c.Error(errs.NewForbiddenError())
	c.Abort()
}
