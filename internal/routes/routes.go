// Package routes assembles the gin engine and its routing table.
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/chachabrian/swiftparcel-backend/internal/handlers"
	"github.com/chachabrian/swiftparcel-backend/internal/middleware"
	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/services"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

// Dependencies are the long-lived collaborators handlers are built from.
type Dependencies struct {
	Store    store.Store
	Tokens   *utils.TokenManager
	Intents  services.IntentCreator
	Notifier services.Notifier
	Events   services.ParcelPublisher
	Hub      *services.Hub
	Images   *services.ImageStore
	Logger   zerolog.Logger
	NewRelic *newrelic.Application

	CORSAllowedOrigins []string
}

func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.NewRelic(d.NewRelic),
		middleware.ContextLogger(d.Logger),
		middleware.RequestLogger(),
		cors.New(cors.Config{
			AllowOrigins:     d.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.ErrorHandler(),
	)
	r.NoRoute(middleware.NoRoute())

	Setup(r, d)
	return r
}

// Setup registers every route on r.
func Setup(r *gin.Engine, d Dependencies) {
	st := d.Store
	auth := middleware.VerifyToken(d.Tokens)
	admin := middleware.RequireRole(st, models.RoleAdmin)
	deliveryMan := middleware.RequireRole(st, models.RoleDeliveryMan)

	r.GET("/", handlers.Root())
	r.GET("/health", handlers.Health(st))
	r.POST("/jwt", handlers.IssueToken(d.Tokens))

	users := r.Group("/users")
	{
		users.GET("", auth, handlers.ListUsers(st))
		users.POST("", handlers.CreateUser(st))
		users.GET("/delivery-man", handlers.ListDeliveryMen(st))
		users.GET("/admin/:email", auth, middleware.RequireSelf("email"), handlers.HasRole(st, models.RoleAdmin, "admin"))
		users.GET("/delivery-man/:email", auth, middleware.RequireSelf("email"), handlers.HasRole(st, models.RoleDeliveryMan, "deliveryMan"))
		users.GET("/profile/:email", auth, middleware.RequireSelf("email"), handlers.GetProfile(st))
		users.PATCH("/admin/:id", auth, admin, handlers.MakeAdmin(st))
		users.PATCH("/change-role/:id", auth, handlers.ChangeRole(st))
		users.PATCH("/book-count/:email", auth, handlers.IncrementBookCount(st))
		users.PATCH("/delivered/:id", auth, deliveryMan, handlers.MarkDelivered(st))
		users.PATCH("/rate/:id", auth, handlers.RateDeliveryMan(st))
		users.DELETE("/:id", auth, admin, handlers.DeleteUser(st))
	}
	r.GET("/top-delivery-men", handlers.TopDeliveryMen(st))

	r.GET("/parcel", handlers.ListParcels(st))
	r.GET("/parcel/:email", auth, middleware.RequireSelf("email"), handlers.ListParcelsByEmail(st))
	r.GET("/parcel-details/:id", auth, handlers.GetParcel(st))
	r.POST("/parcel", auth, handlers.CreateParcel(st))
	r.PUT("/parcel/:id", auth, handlers.UpsertParcel(st))
	r.PATCH("/parcel/:id", auth, handlers.UpdateParcelStatus(st, d.Events))
	r.PATCH("/cancel-parcel/:id", auth, handlers.CancelParcel(st, d.Events))
	r.POST("/parcel/:id/image", auth, handlers.UploadParcelImage(st, d.Images))
	r.GET("/deliveries/:deliveryManId", auth, deliveryMan, handlers.ListDeliveries(st))
	r.GET("/parcels/search-date", auth, handlers.SearchParcelsByDate(st))
	r.GET("/bookings-by-date", handlers.BookingsByDate(st))

	r.GET("/home-stats", handlers.HomeStats(st))
	r.GET("/admin-stats", auth, admin, handlers.AdminStats(st))
	r.GET("/order-stats", auth, admin, handlers.OrderStats(st))

	r.GET("/menu", handlers.ListMenu(st))
	r.POST("/menu", auth, admin, handlers.AddMenuItem(st))

	r.POST("/create-payment-intent", handlers.CreatePaymentIntent(d.Intents))
	r.GET("/payments/:email", auth, middleware.RequireSelf("email"), handlers.ListPayments(st))
	r.POST("/payments", handlers.CreatePayment(st, d.Notifier))

	r.GET("/carts", handlers.ListCart(st))
	r.POST("/carts", handlers.AddToCart(st))
	r.DELETE("/carts/:id", handlers.DeleteCartItem(st))

	r.GET("/ws", middleware.VerifySocketToken(d.Tokens), handlers.ServeWebSocket(d.Hub))

	if d.Images != nil && !d.Images.UsesS3() {
		r.Static("/uploads", d.Images.UploadDir())
	}
}
