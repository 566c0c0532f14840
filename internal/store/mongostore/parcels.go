package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

func parcelFilter(f store.ParcelFilter) bson.M {
	filter := bson.M{}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	if f.DeliveryManID != "" {
		filter["deliveryManId"] = f.DeliveryManID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.DeliveryFrom != nil || f.DeliveryTo != nil {
		rng := bson.M{}
		if f.DeliveryFrom != nil {
			rng["$gte"] = *f.DeliveryFrom
		}
		if f.DeliveryTo != nil {
			rng["$lte"] = *f.DeliveryTo
		}
		filter["deliveryDate"] = rng
	}
	return filter
}

// dateOrNull stores a missing date as null rather than year one.
func dateOrNull(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func (s *Store) ListParcels(ctx context.Context, f store.ParcelFilter) ([]models.Parcel, error) {
	cur, err := s.parcels.Find(ctx, parcelFilter(f))
	if err != nil {
		return nil, fmt.Errorf("find parcels: %w", err)
	}
	return decodeAll(ctx, cur, parcelDocument.model)
}

func (s *Store) FindParcel(ctx context.Context, id string) (*models.Parcel, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc parcelDocument
	err = s.parcels.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find parcel %s: %w", id, err)
	}
	p := doc.model()
	return &p, nil
}

func (s *Store) InsertParcel(ctx context.Context, p *models.Parcel) (models.InsertResult, error) {
	if p.Status == "" {
		p.Status = models.ParcelStatusPending
	}
	if p.BookingDate.IsZero() {
		p.BookingDate = time.Now().UTC()
	}
	doc := newParcelDocument(p)
	doc.ID = primitive.NewObjectID()

	res, err := s.parcels.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert parcel: %w", err)
	}
	p.ID = doc.ID.Hex()
	return insertResult(res), nil
}

func (s *Store) UpsertParcelDetails(ctx context.Context, id string, d models.ParcelDetails) (models.UpdateResult, error) {
	update := bson.M{"$set": bson.M{
		"phoneNumber":     d.PhoneNumber,
		"parcelType":      d.ParcelType,
		"parcelWeight":    d.ParcelWeight,
		"receiverName":    d.ReceiverName,
		"receiverPhone":   d.ReceiverPhone,
		"deliveryAddress": d.DeliveryAddress,
		"deliveryDate":    dateOrNull(d.DeliveryDate),
		"deliveryDateReq": d.DeliveryDateReq,
		"deliveryLat":     d.DeliveryLat,
		"deliveryLong":    d.DeliveryLong,
		"price":           d.Price,
	}}
	return s.updateParcelByID(ctx, id, update, options.Update().SetUpsert(true))
}

func (s *Store) UpdateParcelStatus(ctx context.Context, id string, u models.StatusUpdate) (models.UpdateResult, error) {
	return s.updateParcelByID(ctx, id, bson.M{"$set": bson.M{
		"status":                u.Status,
		"deliveryManId":         u.DeliveryManID,
		"estimatedDeliveryDate": u.EstimatedDeliveryDate,
	}})
}

func (s *Store) SetParcelStatus(ctx context.Context, id string, status models.ParcelStatus) (models.UpdateResult, error) {
	return s.updateParcelByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
}

func (s *Store) SetParcelImage(ctx context.Context, id, url string) (models.UpdateResult, error) {
	return s.updateParcelByID(ctx, id, bson.M{"$set": bson.M{"parcelImage": url}})
}

func (s *Store) CountParcels(ctx context.Context, status models.ParcelStatus) (int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	n, err := s.parcels.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count parcels: %w", err)
	}
	return n, nil
}

func (s *Store) BookingsByDate(ctx context.Context) ([]models.DailyBookings, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"deliveryDate": bson.M{"$type": "date"}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$deliveryDate"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "date": "$_id", "count": 1}}},
	}

	cur, err := s.parcels.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate bookings by date: %w", err)
	}
	var rows []struct {
		Date  string `bson:"date"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode bookings by date: %w", err)
	}

	out := make([]models.DailyBookings, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.DailyBookings{Date: r.Date, Count: r.Count})
	}
	return out, nil
}

func (s *Store) updateParcelByID(ctx context.Context, id string, update interface{}, opts ...*options.UpdateOptions) (models.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := s.parcels.UpdateOne(ctx, bson.M{"_id": oid}, update, opts...)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update parcel %s: %w", id, err)
	}
	return updateResult(res), nil
}
