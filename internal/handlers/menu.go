package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

func ListMenu(menu store.Menu) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := menu.ListMenuItems(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func AddMenuItem(menu store.Menu) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item models.MenuItem
		if !bindJSON(c, &item) {
			return
		}
		item.ID = ""

		result, err := menu.InsertMenuItem(c.Request.Context(), &item)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
