package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/services"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

// CreatePaymentIntent forwards the price to the payment processor and hands
// back the client secret. The amount is not checked against the cart.
func CreatePaymentIntent(intents services.IntentCreator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Price float64 `json:"price"`
		}
		if !bindJSON(c, &body) {
			return
		}

		secret, err := intents.CreatePaymentIntent(c.Request.Context(), services.AmountInCents(body.Price))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
	}
}

func ListPayments(payments store.Payments) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := payments.ListPayments(c.Request.Context(), c.Param("email"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// CreatePayment records the payment, clears the paid cart items and queues
// the confirmation email. The steps are not atomic: a failed cart delete
// leaves the payment in place and is reported as a server error.
func CreatePayment(st store.Store, notifier services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p models.Payment
		if !bindJSON(c, &p) {
			return
		}
		p.ID = ""
		ctx := c.Request.Context()

		paymentResult, err := st.InsertPayment(ctx, &p)
		if err != nil {
			_ = c.Error(err)
			return
		}

		deleteResult, err := st.DeleteCartItems(ctx, p.CartIDs)
		if err != nil {
			_ = c.Error(err)
			return
		}

		notifier.NotifyPaymentConfirmed(context.WithoutCancel(ctx), services.PaymentNotification{
			To:            p.Email,
			Name:          p.Name,
			TransactionID: p.TransactionID,
			Amount:        p.Price,
		})

		c.JSON(http.StatusOK, gin.H{"paymentResult": paymentResult, "deleteResult": deleteResult})
	}
}
