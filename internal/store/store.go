// Package store defines the persistence port used by the HTTP handlers.
// Adapters live in the mongostore and sqlstore subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
)

var (
	// ErrNotFound is returned by single-document lookups that match nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrInvalidID is returned when an identifier cannot be converted to the
	// adapter's native key type.
	ErrInvalidID = errors.New("store: invalid id")
)

// UserFilter narrows ListUsers. Zero fields match everything.
type UserFilter struct {
	Role  models.Role
	Email string
}

// ParcelFilter narrows ListParcels. Zero fields match everything; the
// delivery range is inclusive on both ends.
type ParcelFilter struct {
	Email         string
	DeliveryManID string
	Status        models.ParcelStatus
	DeliveryFrom  *time.Time
	DeliveryTo    *time.Time
}

type Users interface {
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// InsertUserIfAbsent inserts u unless a user with the same email exists.
	// created is false when the email was already taken.
	InsertUserIfAbsent(ctx context.Context, u *models.User) (res models.InsertResult, created bool, err error)
	SetUserRole(ctx context.Context, id string, role models.Role) (models.UpdateResult, error)
	IncrementBookings(ctx context.Context, email string, amount float64) (models.UpdateResult, error)
	IncrementDelivered(ctx context.Context, id string) (models.UpdateResult, error)
	// AddRating folds rating into the running average of user id.
	AddRating(ctx context.Context, id string, rating float64) (models.UpdateResult, error)
	DeleteUser(ctx context.Context, id string) (models.DeleteResult, error)
	TopDeliveryMen(ctx context.Context, limit int) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type Parcels interface {
	ListParcels(ctx context.Context, f ParcelFilter) ([]models.Parcel, error)
	FindParcel(ctx context.Context, id string) (*models.Parcel, error)
	InsertParcel(ctx context.Context, p *models.Parcel) (models.InsertResult, error)
	UpsertParcelDetails(ctx context.Context, id string, d models.ParcelDetails) (models.UpdateResult, error)
	UpdateParcelStatus(ctx context.Context, id string, u models.StatusUpdate) (models.UpdateResult, error)
	SetParcelStatus(ctx context.Context, id string, status models.ParcelStatus) (models.UpdateResult, error)
	SetParcelImage(ctx context.Context, id, url string) (models.UpdateResult, error)
	// CountParcels counts parcels with the given status, or all parcels when
	// status is empty.
	CountParcels(ctx context.Context, status models.ParcelStatus) (int64, error)
	BookingsByDate(ctx context.Context) ([]models.DailyBookings, error)
}

type Carts interface {
	ListCartItems(ctx context.Context, email string) ([]models.CartItem, error)
	InsertCartItem(ctx context.Context, item *models.CartItem) (models.InsertResult, error)
	DeleteCartItem(ctx context.Context, id string) (models.DeleteResult, error)
	DeleteCartItems(ctx context.Context, ids []string) (models.DeleteResult, error)
}

type Payments interface {
	ListPayments(ctx context.Context, email string) ([]models.Payment, error)
	InsertPayment(ctx context.Context, p *models.Payment) (models.InsertResult, error)
	CountPayments(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (float64, error)
	OrderStats(ctx context.Context) ([]models.CategoryStats, error)
}

type Menu interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	InsertMenuItem(ctx context.Context, item *models.MenuItem) (models.InsertResult, error)
	CountMenuItems(ctx context.Context) (int64, error)
}

// Store is everything the API needs from persistence.
type Store interface {
	Users
	Parcels
	Carts
	Payments
	Menu

	// EnsureIndexes creates the indexes the store relies on for correctness,
	// such as the unique user email.
	EnsureIndexes(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
