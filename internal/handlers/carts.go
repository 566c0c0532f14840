package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

func ListCart(carts store.Carts) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := carts.ListCartItems(c.Request.Context(), c.Query("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func AddToCart(carts store.Carts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item models.CartItem
		if !bindJSON(c, &item) {
			return
		}
		item.ID = ""

		result, err := carts.InsertCartItem(c.Request.Context(), &item)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func DeleteCartItem(carts store.Carts) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := carts.DeleteCartItem(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
