package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/errs"
	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

const topDeliveryMenLimit = 5

func ListUsers(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := users.ListUsers(c.Request.Context(), store.UserFilter{
			Role:  models.Role(c.Query("role")),
			Email: c.Query("email"),
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func ListDeliveryMen(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := users.ListUsers(c.Request.Context(), store.UserFilter{Role: models.RoleDeliveryMan})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// CreateUser inserts the posted user unless the email is already taken.
func CreateUser(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u models.User
		if !bindJSON(c, &u) {
			return
		}
		u.ID = ""

		result, created, err := users.InsertUserIfAbsent(c.Request.Context(), &u)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if !created {
			c.JSON(http.StatusOK, gin.H{"message": "user already exists", "insertedId": nil})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HasRole answers {key: bool} for the user at :email. A missing user simply
// does not hold the role.
func HasRole(users store.Users, role models.Role, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.FindUserByEmail(c.Request.Context(), c.Param("email"))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{key: u.HasRole(role)})
	}
}

func GetProfile(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.FindUserByEmail(c.Request.Context(), c.Param("email"))
		if err != nil {
			_ = c.Error(notFoundOr(err, "user not found"))
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func MakeAdmin(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := users.SetUserRole(c.Request.Context(), c.Param("id"), models.RoleAdmin)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func ChangeRole(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Role models.Role `json:"role"`
		}
		if !bindJSON(c, &body) {
			return
		}

		result, err := users.SetUserRole(c.Request.Context(), c.Param("id"), body.Role)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func IncrementBookCount(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			TotalAmountInc float64 `json:"totalAmountInc"`
		}
		if !bindJSON(c, &body) {
			return
		}

		result, err := users.IncrementBookings(c.Request.Context(), c.Param("email"), body.TotalAmountInc)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func MarkDelivered(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := users.IncrementDelivered(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func RateDeliveryMan(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Rating float64 `json:"rating"`
		}
		if !bindJSON(c, &body) {
			return
		}
		if body.Rating < 1 || body.Rating > 5 {
			_ = c.Error(errs.NewBadRequestError("rating must be between 1 and 5"))
			return
		}

		result, err := users.AddRating(c.Request.Context(), c.Param("id"), body.Rating)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if result.MatchedCount == 0 {
			_ = c.Error(errs.NewNotFoundError("user not found"))
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func DeleteUser(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := users.DeleteUser(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func TopDeliveryMen(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := users.TopDeliveryMen(c.Request.Context(), topDeliveryMenLimit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
