package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
)

func (s *Store) ListPayments(ctx context.Context, email string) ([]models.Payment, error) {
	cur, err := s.payments.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	return decodeAll(ctx, cur, paymentDocument.model)
}

func (s *Store) InsertPayment(ctx context.Context, p *models.Payment) (models.InsertResult, error) {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	doc, err := newPaymentDocument(p)
	if err != nil {
		return models.InsertResult{}, err
	}
	doc.ID = primitive.NewObjectID()

	res, err := s.payments.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert payment: %w", err)
	}
	p.ID = doc.ID.Hex()
	return insertResult(res), nil
}

func (s *Store) CountPayments(ctx context.Context) (int64, error) {
	n, err := s.payments.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return n, nil
}

func (s *Store) Revenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "totalRevenue": bson.M{"$sum": "$price"}}}},
	}
	cur, err := s.payments.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate revenue: %w", err)
	}
	var rows []struct {
		TotalRevenue float64 `bson:"totalRevenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalRevenue, nil
}

// OrderStats joins every purchased menu item against the menu and sums
// quantity and revenue per category.
func (s *Store) OrderStats(ctx context.Context) ([]models.CategoryStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$menuItemIds"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         menuCollection,
			"localField":   "menuItemIds",
			"foreignField": "_id",
			"as":           "menuItems",
		}}},
		{{Key: "$unwind", Value: "$menuItems"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$menuItems.category",
			"quantity": bson.M{"$sum": 1},
			"revenue":  bson.M{"$sum": "$menuItems.price"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"category": "$_id",
			"quantity": "$quantity",
			"revenue":  "$revenue",
		}}},
		{{Key: "$sort", Value: bson.M{"category": 1}}},
	}

	cur, err := s.payments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate order stats: %w", err)
	}
	var rows []struct {
		Category string  `bson:"category"`
		Quantity int64   `bson:"quantity"`
		Revenue  float64 `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode order stats: %w", err)
	}

	out := make([]models.CategoryStats, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CategoryStats{Category: r.Category, Quantity: r.Quantity, Revenue: r.Revenue})
	}
	return out, nil
}
