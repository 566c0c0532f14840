package sqlstore

import (
	"time"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
)

type userRecord struct {
	ID                string    `gorm:"primaryKey;size:36"`
	Name              string
	Email             string    `gorm:"uniqueIndex;not null"`
	Photo             string
	Phone             string
	Role              string    `gorm:"index;not null;default:user"`
	BookedParcelCount int       `gorm:"not null;default:0"`
	TotalAmount       float64   `gorm:"not null;default:0"`
	ParcelsDelivered  int       `gorm:"not null;default:0"`
	AverageRatings    float64   `gorm:"not null;default:0"`
	ReviewCount       int       `gorm:"not null;default:0"`
	CreatedAt         time.Time
}

func (userRecord) TableName() string {
	return "users"
}

func newUserRecord(u *models.User) userRecord {
	return userRecord{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Photo:             u.Photo,
		Phone:             u.Phone,
		Role:              string(u.Role),
		BookedParcelCount: u.BookedParcelCount,
		TotalAmount:       u.TotalAmount,
		ParcelsDelivered:  u.ParcelsDelivered,
		AverageRatings:    u.AverageRatings,
		ReviewCount:       u.ReviewCount,
		CreatedAt:         u.CreatedAt,
	}
}

func (r userRecord) model() models.User {
	return models.User{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		Photo:             r.Photo,
		Phone:             r.Phone,
		Role:              models.Role(r.Role),
		BookedParcelCount: r.BookedParcelCount,
		TotalAmount:       r.TotalAmount,
		ParcelsDelivered:  r.ParcelsDelivered,
		AverageRatings:    r.AverageRatings,
		ReviewCount:       r.ReviewCount,
		CreatedAt:         r.CreatedAt,
	}
}

type parcelRecord struct {
	ID                    string `gorm:"primaryKey;size:36"`
	Name                  string
	Email                 string `gorm:"index"`
	PhoneNumber           string
	ParcelType            string
	ParcelWeight          float64
	ReceiverName          string
	ReceiverPhone         string
	DeliveryAddress       string
	DeliveryDate          time.Time `gorm:"index"`
	DeliveryDateReq       string
	DeliveryLat           float64
	DeliveryLong          float64
	Price                 float64
	Status                string `gorm:"index"`
	DeliveryManID         string `gorm:"index"`
	EstimatedDeliveryDate string
	BookingDate           time.Time
	ParcelImage           string
}

func (parcelRecord) TableName() string {
	return "parcels"
}

func newParcelRecord(p *models.Parcel) parcelRecord {
	return parcelRecord{
		ID:                    p.ID,
		Name:                  p.Name,
		Email:                 p.Email,
		PhoneNumber:           p.PhoneNumber,
		ParcelType:            p.ParcelType,
		ParcelWeight:          p.ParcelWeight,
		ReceiverName:          p.ReceiverName,
		ReceiverPhone:         p.ReceiverPhone,
		DeliveryAddress:       p.DeliveryAddress,
		DeliveryDate:          p.DeliveryDate,
		DeliveryDateReq:       p.DeliveryDateReq,
		DeliveryLat:           p.DeliveryLat,
		DeliveryLong:          p.DeliveryLong,
		Price:                 p.Price,
		Status:                string(p.Status),
		DeliveryManID:         p.DeliveryManID,
		EstimatedDeliveryDate: p.EstimatedDeliveryDate,
		BookingDate:           p.BookingDate,
		ParcelImage:           p.ParcelImage,
	}
}

func (r parcelRecord) model() models.Parcel {
	return models.Parcel{
		ID:                    r.ID,
		Name:                  r.Name,
		Email:                 r.Email,
		PhoneNumber:           r.PhoneNumber,
		ParcelType:            r.ParcelType,
		ParcelWeight:          r.ParcelWeight,
		ReceiverName:          r.ReceiverName,
		ReceiverPhone:         r.ReceiverPhone,
		DeliveryAddress:       r.DeliveryAddress,
		DeliveryDate:          r.DeliveryDate.UTC(),
		DeliveryDateReq:       r.DeliveryDateReq,
		DeliveryLat:           r.DeliveryLat,
		DeliveryLong:          r.DeliveryLong,
		Price:                 r.Price,
		Status:                models.ParcelStatus(r.Status),
		DeliveryManID:         r.DeliveryManID,
		EstimatedDeliveryDate: r.EstimatedDeliveryDate,
		BookingDate:           r.BookingDate.UTC(),
		ParcelImage:           r.ParcelImage,
	}
}

type cartRecord struct {
	ID     string `gorm:"primaryKey;size:36"`
	Email  string `gorm:"index"`
	MenuID string
	Name   string
	Image  string
	Price  float64
}

func (cartRecord) TableName() string {
	return "carts"
}

func (r cartRecord) model() models.CartItem {
	return models.CartItem{ID: r.ID, Email: r.Email, MenuID: r.MenuID, Name: r.Name, Image: r.Image, Price: r.Price}
}

// paymentRecord stores the referenced ids as JSON arrays; order stats join
// them against the menu in Go.
type paymentRecord struct {
	ID            string `gorm:"primaryKey;size:36"`
	Email         string `gorm:"index"`
	Name          string
	TransactionID string
	Price         float64
	Date          time.Time
	CartIDs       []string `gorm:"serializer:json"`
	MenuItemIDs   []string `gorm:"serializer:json"`
	Status        string
}

func (paymentRecord) TableName() string {
	return "payments"
}

func (r paymentRecord) model() models.Payment {
	return models.Payment{
		ID:            r.ID,
		Email:         r.Email,
		Name:          r.Name,
		TransactionID: r.TransactionID,
		Price:         r.Price,
		Date:          r.Date.UTC(),
		CartIDs:       nonNil(r.CartIDs),
		MenuItemIDs:   nonNil(r.MenuItemIDs),
		Status:        r.Status,
	}
}

type menuItemRecord struct {
	ID       string `gorm:"primaryKey;size:36"`
	Name     string
	Category string `gorm:"index"`
	Price    float64
	Image    string
	Recipe   string
}

func (menuItemRecord) TableName() string {
	return "menu_items"
}

func (r menuItemRecord) model() models.MenuItem {
	return models.MenuItem{ID: r.ID, Name: r.Name, Category: r.Category, Price: r.Price, Image: r.Image, Recipe: r.Recipe}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func convertAll[R any, M any](records []R, conv func(R) M) []M {
	out := make([]M, 0, len(records))
	for _, r := range records {
		out = append(out, conv(r))
	}
	return out
}
