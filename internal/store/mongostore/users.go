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

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Email != "" {
		filter["email"] = f.Email
	}

	cur, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return decodeAll(ctx, cur, userDocument.model)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", email, err)
	}
	u := doc.model()
	return &u, nil
}

// InsertUserIfAbsent relies on the unique email index; a duplicate key error
// means the user already exists.
func (s *Store) InsertUserIfAbsent(ctx context.Context, u *models.User) (models.InsertResult, bool, error) {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	doc := newUserDocument(u)
	doc.ID = primitive.NewObjectID()

	res, err := s.users.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return models.InsertResult{}, false, nil
	}
	if err != nil {
		return models.InsertResult{}, false, fmt.Errorf("insert user: %w", err)
	}
	u.ID = doc.ID.Hex()
	return insertResult(res), true, nil
}

func (s *Store) SetUserRole(ctx context.Context, id string, role models.Role) (models.UpdateResult, error) {
	return s.updateUserByID(ctx, id, bson.M{"$set": bson.M{"role": role}})
}

func (s *Store) IncrementBookings(ctx context.Context, email string, amount float64) (models.UpdateResult, error) {
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{
		"$inc": bson.M{"bookedParcelCount": 1, "totalAmount": amount},
	})
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("increment bookings: %w", err)
	}
	return updateResult(res), nil
}

func (s *Store) IncrementDelivered(ctx context.Context, id string) (models.UpdateResult, error) {
	return s.updateUserByID(ctx, id, bson.M{"$inc": bson.M{"parcelsDelivered": 1}})
}

// AddRating recomputes the running average server side so concurrent ratings
// do not overwrite each other.
func (s *Store) AddRating(ctx context.Context, id string, rating float64) (models.UpdateResult, error) {
	count := bson.M{"$ifNull": bson.A{"$reviewCount", 0}}
	avg := bson.M{"$ifNull": bson.A{"$averageRatings", 0}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"averageRatings": bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{avg, count}}, rating}},
				bson.M{"$add": bson.A{count, 1}},
			}},
			"reviewCount": bson.M{"$add": bson.A{count, 1}},
		}}},
	}
	return s.updateUserByID(ctx, id, pipeline)
}

func (s *Store) DeleteUser(ctx context.Context, id string) (models.DeleteResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete user: %w", err)
	}
	return deleteResult(res), nil
}

func (s *Store) TopDeliveryMen(ctx context.Context, limit int) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "parcelsDelivered", Value: -1}, {Key: "averageRatings", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.users.Find(ctx, bson.M{"role": models.RoleDeliveryMan}, opts)
	if err != nil {
		return nil, fmt.Errorf("find top delivery men: %w", err)
	}
	return decodeAll(ctx, cur, userDocument.model)
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *Store) updateUserByID(ctx context.Context, id string, update interface{}) (models.UpdateResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.UpdateResult{}, err
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("update user %s: %w", id, err)
	}
	return updateResult(res), nil
}
