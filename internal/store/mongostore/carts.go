package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
)

func (s *Store) ListCartItems(ctx context.Context, email string) ([]models.CartItem, error) {
	cur, err := s.carts.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("find cart items: %w", err)
	}
	return decodeAll(ctx, cur, cartDocument.model)
}

func (s *Store) InsertCartItem(ctx context.Context, item *models.CartItem) (models.InsertResult, error) {
	doc := cartDocument{
		ID:     primitive.NewObjectID(),
		Email:  item.Email,
		MenuID: item.MenuID,
		Name:   item.Name,
		Image:  item.Image,
		Price:  item.Price,
	}
	res, err := s.carts.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert cart item: %w", err)
	}
	item.ID = doc.ID.Hex()
	return insertResult(res), nil
}

func (s *Store) DeleteCartItem(ctx context.Context, id string) (models.DeleteResult, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.DeleteResult{}, err
	}
	res, err := s.carts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete cart item: %w", err)
	}
	return deleteResult(res), nil
}

func (s *Store) DeleteCartItems(ctx context.Context, ids []string) (models.DeleteResult, error) {
	oids, err := objectIDs(ids)
	if err != nil {
		return models.DeleteResult{}, err
	}
	res, err := s.carts.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return models.DeleteResult{}, fmt.Errorf("delete cart items: %w", err)
	}
	return deleteResult(res), nil
}
