package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/middleware"
	"github.com/chachabrian/swiftparcel-backend/internal/services"
)

// ServeWebSocket streams parcel status events for the token's email.
func ServeWebSocket(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := hub.ServeWS(c.Writer, c.Request, middleware.GetEmail(c)); err != nil {
			// The upgrader has already written the error response.
			middleware.GetLogger(c).Warn().Err(err).Msg("websocket upgrade failed")
		}
	}
}
