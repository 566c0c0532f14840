package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

func HomeStats(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		booked, err := st.CountParcels(ctx, models.ParcelStatusPending)
		if err != nil {
			_ = c.Error(err)
			return
		}
		delivered, err := st.CountParcels(ctx, models.ParcelStatusDelivered)
		if err != nil {
			_ = c.Error(err)
			return
		}
		users, err := st.CountUsers(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, models.HomeStats{
			BookedParcelsCount:    booked,
			DeliveredParcelsCount: delivered,
			UsersCount:            users,
		})
	}
}

func AdminStats(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var (
			stats models.AdminStats
			err   error
		)

		if stats.Users, err = st.CountUsers(ctx); err != nil {
			_ = c.Error(err)
			return
		}
		if stats.MenuItems, err = st.CountMenuItems(ctx); err != nil {
			_ = c.Error(err)
			return
		}
		if stats.Orders, err = st.CountPayments(ctx); err != nil {
			_ = c.Error(err)
			return
		}
		if stats.Parcels, err = st.CountParcels(ctx, ""); err != nil {
			_ = c.Error(err)
			return
		}
		if stats.Revenue, err = st.Revenue(ctx); err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func OrderStats(payments store.Payments) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := payments.OrderStats(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
