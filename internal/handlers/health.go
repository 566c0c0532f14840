package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/middleware"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "swift is running")
	}
}

// Health pings the store with a short deadline.
func Health(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		check := "ok"
		if err := st.Ping(ctx); err != nil {
			middleware.GetLogger(c).Error().Err(err).Msg("store ping failed")
			status, code, check = "unhealthy", http.StatusServiceUnavailable, "unavailable"
		}
		c.JSON(code, gin.H{
			"status": status,
			"checks": gin.H{"store": check},
		})
	}
}
