// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

// Collection names match the data the web client was first deployed with.
const (
	usersCollection    = "users"
	parcelsCollection  = "parcelCollection"
	cartsCollection    = "carts"
	paymentsCollection = "payments"
	menuCollection     = "menu"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	parcels  *mongo.Collection
	carts    *mongo.Collection
	payments *mongo.Collection
	menu     *mongo.Collection
}

// Connect dials uri, pings the primary and returns a Store on database.
// timeout bounds every operation issued through the client.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client, database), nil
}

func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		users:    db.Collection(usersCollection),
		parcels:  db.Collection(parcelsCollection),
		carts:    db.Collection(cartsCollection),
		payments: db.Collection(paymentsCollection),
		menu:     db.Collection(menuCollection),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "parcelsDelivered", Value: -1}, {Key: "averageRatings", Value: -1}},
			Options: options.Index().SetName("role_performance"),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = s.parcels.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email")},
		{Keys: bson.D{{Key: "deliveryDate", Value: 1}}, Options: options.Index().SetName("delivery_date")},
		{Keys: bson.D{{Key: "deliveryManId", Value: 1}}, Options: options.Index().SetName("delivery_man")},
	})
	if err != nil {
		return fmt.Errorf("create parcel indexes: %w", err)
	}

	_, err = s.carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email"),
	})
	if err != nil {
		return fmt.Errorf("create cart indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
