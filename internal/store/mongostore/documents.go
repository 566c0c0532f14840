package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

type userDocument struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name,omitempty"`
	Email             string             `bson:"email"`
	Photo             string             `bson:"photo,omitempty"`
	Phone             string             `bson:"phone,omitempty"`
	Role              string             `bson:"role"`
	BookedParcelCount int                `bson:"bookedParcelCount"`
	TotalAmount       float64            `bson:"totalAmount"`
	ParcelsDelivered  int                `bson:"parcelsDelivered"`
	AverageRatings    float64            `bson:"averageRatings"`
	ReviewCount       int                `bson:"reviewCount"`
	CreatedAt         time.Time          `bson:"createdAt"`
}

func newUserDocument(u *models.User) userDocument {
	return userDocument{
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

func (d userDocument) model() models.User {
	return models.User{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Email:             d.Email,
		Photo:             d.Photo,
		Phone:             d.Phone,
		Role:              models.Role(d.Role),
		BookedParcelCount: d.BookedParcelCount,
		TotalAmount:       d.TotalAmount,
		ParcelsDelivered:  d.ParcelsDelivered,
		AverageRatings:    d.AverageRatings,
		ReviewCount:       d.ReviewCount,
		CreatedAt:         d.CreatedAt,
	}
}

type parcelDocument struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Name                  string             `bson:"name,omitempty"`
	Email                 string             `bson:"email"`
	PhoneNumber           string             `bson:"phoneNumber,omitempty"`
	ParcelType            string             `bson:"parcelType,omitempty"`
	ParcelWeight          float64            `bson:"parcelWeight"`
	ReceiverName          string             `bson:"receiverName,omitempty"`
	ReceiverPhone         string             `bson:"receiverPhone,omitempty"`
	DeliveryAddress       string             `bson:"deliveryAddress,omitempty"`
	DeliveryDate          time.Time          `bson:"deliveryDate,omitempty"`
	DeliveryDateReq       string             `bson:"deliveryDateReq,omitempty"`
	DeliveryLat           float64            `bson:"deliveryLat"`
	DeliveryLong          float64            `bson:"deliveryLong"`
	Price                 float64            `bson:"price"`
	Status                string             `bson:"status"`
	DeliveryManID         string             `bson:"deliveryManId,omitempty"`
	EstimatedDeliveryDate string             `bson:"estimatedDeliveryDate,omitempty"`
	BookingDate           time.Time          `bson:"bookingDate"`
	ParcelImage           string             `bson:"parcelImage,omitempty"`
}

func newParcelDocument(p *models.Parcel) parcelDocument {
	return parcelDocument{
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

func (d parcelDocument) model() models.Parcel {
	return models.Parcel{
		ID:                    d.ID.Hex(),
		Name:                  d.Name,
		Email:                 d.Email,
		PhoneNumber:           d.PhoneNumber,
		ParcelType:            d.ParcelType,
		ParcelWeight:          d.ParcelWeight,
		ReceiverName:          d.ReceiverName,
		ReceiverPhone:         d.ReceiverPhone,
		DeliveryAddress:       d.DeliveryAddress,
		DeliveryDate:          d.DeliveryDate,
		DeliveryDateReq:       d.DeliveryDateReq,
		DeliveryLat:           d.DeliveryLat,
		DeliveryLong:          d.DeliveryLong,
		Price:                 d.Price,
		Status:                models.ParcelStatus(d.Status),
		DeliveryManID:         d.DeliveryManID,
		EstimatedDeliveryDate: d.EstimatedDeliveryDate,
		BookingDate:           d.BookingDate,
		ParcelImage:           d.ParcelImage,
	}
}

type cartDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Email  string             `bson:"email"`
	MenuID string             `bson:"menuId"`
	Name   string             `bson:"name,omitempty"`
	Image  string             `bson:"image,omitempty"`
	Price  float64            `bson:"price"`
}

func (d cartDocument) model() models.CartItem {
	return models.CartItem{
		ID:     d.ID.Hex(),
		Email:  d.Email,
		MenuID: d.MenuID,
		Name:   d.Name,
		Image:  d.Image,
		Price:  d.Price,
	}
}

// paymentDocument keeps the referenced ids as ObjectIDs so the order stats
// pipeline can join them against the menu collection.
type paymentDocument struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Email         string               `bson:"email"`
	Name          string               `bson:"name,omitempty"`
	TransactionID string               `bson:"transactionId"`
	Price         float64              `bson:"price"`
	Date          time.Time            `bson:"date"`
	CartIDs       []primitive.ObjectID `bson:"cartIds"`
	MenuItemIDs   []primitive.ObjectID `bson:"menuItemIds"`
	Status        string               `bson:"status,omitempty"`
}

func newPaymentDocument(p *models.Payment) (paymentDocument, error) {
	cartIDs, err := objectIDs(p.CartIDs)
	if err != nil {
		return paymentDocument{}, fmt.Errorf("cart ids: %w", err)
	}
	menuItemIDs, err := objectIDs(p.MenuItemIDs)
	if err != nil {
		return paymentDocument{}, fmt.Errorf("menu item ids: %w", err)
	}
	return paymentDocument{
		Email:         p.Email,
		Name:          p.Name,
		TransactionID: p.TransactionID,
		Price:         p.Price,
		Date:          p.Date,
		CartIDs:       cartIDs,
		MenuItemIDs:   menuItemIDs,
		Status:        p.Status,
	}, nil
}

func (d paymentDocument) model() models.Payment {
	return models.Payment{
		ID:            d.ID.Hex(),
		Email:         d.Email,
		Name:          d.Name,
		TransactionID: d.TransactionID,
		Price:         d.Price,
		Date:          d.Date,
		CartIDs:       hexIDs(d.CartIDs),
		MenuItemIDs:   hexIDs(d.MenuItemIDs),
		Status:        d.Status,
	}
}

type menuDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Category string             `bson:"category"`
	Price    float64            `bson:"price"`
	Image    string             `bson:"image,omitempty"`
	Recipe   string             `bson:"recipe,omitempty"`
}

func (d menuDocument) model() models.MenuItem {
	return models.MenuItem{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Category: d.Category,
		Price:    d.Price,
		Image:    d.Image,
		Recipe:   d.Recipe,
	}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", store.ErrInvalidID, id)
	}
	return oid, nil
}

func objectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := objectID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func insertResult(res *mongo.InsertOneResult) models.InsertResult {
	out := models.InsertResult{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		out.InsertedID = oid.Hex()
	}
	return out
}

func updateResult(res *mongo.UpdateResult) models.UpdateResult {
	out := models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		id := oid.Hex()
		out.UpsertedID = &id
	}
	return out
}

func deleteResult(res *mongo.DeleteResult) models.DeleteResult {
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}
}

// decodeAll drains cur into documents of type D and converts each with conv.
func decodeAll[D any, M any](ctx context.Context, cur *mongo.Cursor, conv func(D) M) ([]M, error) {
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]M, 0, len(docs))
	for _, d := range docs {
		out = append(out, conv(d))
	}
	return out, nil
}
