package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/errs"
	"github.com/chachabrian/swiftparcel-backend/internal/middleware"
	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/services"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

// parcelInput is the booking form. deliveryDate arrives as text and is
// stored as a date.
type parcelInput struct {
	Name                  string              `json:"name"`
	Email                 string              `json:"email"`
	PhoneNumber           string              `json:"phoneNumber"`
	ParcelType            string              `json:"parcelType"`
	ParcelWeight          float64             `json:"parcelWeight"`
	ReceiverName          string              `json:"receiverName"`
	ReceiverPhone         string              `json:"receiverPhone"`
	DeliveryAddress       string              `json:"deliveryAddress"`
	DeliveryDate          string              `json:"deliveryDate"`
	DeliveryDateReq       string              `json:"deliveryDateReq"`
	DeliveryLat           float64             `json:"deliveryLat"`
	DeliveryLong          float64             `json:"deliveryLong"`
	Price                 float64             `json:"price"`
	Status                models.ParcelStatus `json:"status"`
	DeliveryManID         string              `json:"deliveryManId"`
	EstimatedDeliveryDate string              `json:"estimatedDeliveryDate"`
	BookingDate           string              `json:"bookingDate"`
}

// optionalDate parses s, treating an empty string as no date.
func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return utils.ParseDate(s)
}

func ListParcels(parcels store.Parcels) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := parcels.ListParcels(c.Request.Context(), store.ParcelFilter{})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func ListParcelsByEmail(parcels store.Parcels) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := parcels.ListParcels(c.Request.Context(), store.ParcelFilter{Email: c.Param("email")})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func ListDeliveries(parcels store.Parcels) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := parcels.ListParcels(c.Request.Context(), store.ParcelFilter{
			DeliveryManID: c.Param("deliveryManId"),
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func GetParcel(parcels store.Parcels) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := parcels.FindParcel(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(notFoundOr(err, "parcel not found"))
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func CreateParcel(parcels store.Parcels) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in parcelInput
		if !bindJSON(c, &in) {
			return
		}
		deliveryDate, err := optionalDate(in.DeliveryDate)
		if err != nil {
			_ = c.Error(errs.NewBadRequestError("invalid deliveryDate"))
			return
		}
		bookingDate, err := optionalDate(in.BookingDate)
		if err != nil {
			_ = c.Error(errs.NewBadRequestError("invalid bookingDate"))
			return
		}

		p := models.Parcel{
			Name:                  in.Name,
			Email:                 in.Email,
			PhoneNumber:           in.PhoneNumber,
			ParcelType:            in.ParcelType,
			ParcelWeight:          in.ParcelWeight,
			ReceiverName:          in.ReceiverName,
			ReceiverPhone:         in.ReceiverPhone,
			DeliveryAddress:       in.DeliveryAddress,
			DeliveryDate:          deliveryDate,
			DeliveryDateReq:       in.DeliveryDateReq,
			DeliveryLat:           in.DeliveryLat,
			DeliveryLong:          in.DeliveryLong,
			Price:                 in.Price,
			Status:                in.Status,
			DeliveryManID:         in.DeliveryManID,
			EstimatedDeliveryDate: in.EstimatedDeliveryDate,
			BookingDate:           bookingDate,
		}
		if p.Email == "" {
			p.Email = middleware.GetEmail(c)
		}

		result, err := parcels.InsertParcel(c.Request.Context(), &p)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// UpsertParcel overwrites the editable booking details.
func UpsertParcel(parcels store.Parcels) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in parcelInput
		if !bindJSON(c, &in) {
			return
		}
		deliveryDate, err := optionalDate(in.DeliveryDate)
		if err != nil {
			_ = c.Error(errs.NewBadRequestError("invalid deliveryDate"))
			return
		}

		result, err := parcels.UpsertParcelDetails(c.Request.Context(), c.Param("id"), models.ParcelDetails{
			PhoneNumber:     in.PhoneNumber,
			ParcelType:      in.ParcelType,
			ParcelWeight:    in.ParcelWeight,
			ReceiverName:    in.ReceiverName,
			ReceiverPhone:   in.ReceiverPhone,
			DeliveryAddress: in.DeliveryAddress,
			DeliveryDate:    deliveryDate,
			DeliveryDateReq: in.DeliveryDateReq,
			DeliveryLat:     in.DeliveryLat,
			DeliveryLong:    in.DeliveryLong,
			Price:           in.Price,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func UpdateParcelStatus(parcels store.Parcels, events services.ParcelPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u models.StatusUpdate
		if !bindJSON(c, &u) {
			return
		}

		id := c.Param("id")
		result, err := parcels.UpdateParcelStatus(c.Request.Context(), id, u)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if result.MatchedCount > 0 {
			publishStatus(c, parcels, events, id)
		}
		c.JSON(http.StatusOK, result)
	}
}

func CancelParcel(parcels store.Parcels, events services.ParcelPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Status models.ParcelStatus `json:"status"`
		}
		if !bindJSON(c, &body) {
			return
		}

		id := c.Param("id")
		result, err := parcels.SetParcelStatus(c.Request.Context(), id, body.Status)
		if err != nil {
			_ = c.Error(err)
			return
		}
		if result.MatchedCount > 0 {
			publishStatus(c, parcels, events, id)
		}
		c.JSON(http.StatusOK, result)
	}
}

// publishStatus tells the parcel owner about the new status. It never fails
// the request.
func publishStatus(c *gin.Context, parcels store.Parcels, events services.ParcelPublisher, id string) {
	log := middleware.GetLogger(c)
	ctx := context.WithoutCancel(c.Request.Context())

	p, err := parcels.FindParcel(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("parcel_id", id).Msg("could not load parcel for status event")
		return
	}
	err = events.PublishParcelStatus(ctx, services.ParcelStatusUpdate{
		ParcelID:              p.ID,
		Email:                 p.Email,
		Status:                string(p.Status),
		DeliveryManID:         p.DeliveryManID,
		EstimatedDeliveryDate: p.EstimatedDeliveryDate,
	})
	if err != nil {
		log.Warn().Err(err).Str("parcel_id", id).Msg("could not publish parcel status")
	}
}

// UploadParcelImage stores the multipart file parcelImage and links it to
// the parcel.
func UploadParcelImage(parcels store.Parcels, images *services.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := parcels.FindParcel(c.Request.Context(), id); err != nil {
			_ = c.Error(notFoundOr(err, "parcel not found"))
			return
		}

		file, err := c.FormFile("parcelImage")
		if err != nil {
			_ = c.Error(errs.NewBadRequestError("parcel image is required"))
			return
		}

		url, err := images.Upload(c.Request.Context(), file, "parcels")
		if errors.Is(err, services.ErrNotImage) {
			_ = c.Error(errs.NewBadRequestError("parcel image must be an image up to 5MB"))
			return
		}
		if err != nil {
			_ = c.Error(err)
			return
		}

		result, err := parcels.SetParcelImage(c.Request.Context(), id, url)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url, "result": result})
	}
}

// SearchParcelsByDate lists parcels due between startDate and endDate,
// both inclusive.
func SearchParcelsByDate(parcels store.Parcels) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, startErr := utils.ParseDate(c.Query("startDate"))
		end, endErr := utils.ParseDate(c.Query("endDate"))
		if startErr != nil || endErr != nil {
			_ = c.Error(errs.NewBadRequestError("Invalid date format"))
			return
		}

		result, err := parcels.ListParcels(c.Request.Context(), store.ParcelFilter{
			DeliveryFrom: &start,
			DeliveryTo:   &end,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func BookingsByDate(parcels store.Parcels) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := parcels.BookingsByDate(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
