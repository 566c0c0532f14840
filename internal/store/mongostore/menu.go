package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
)

func (s *Store) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	cur, err := s.menu.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find menu items: %w", err)
	}
	return decodeAll(ctx, cur, menuDocument.model)
}

func (s *Store) InsertMenuItem(ctx context.Context, item *models.MenuItem) (models.InsertResult, error) {
	doc := menuDocument{
		ID:       primitive.NewObjectID(),
		Name:     item.Name,
		Category: item.Category,
		Price:    item.Price,
		Image:    item.Image,
		Recipe:   item.Recipe,
	}
	res, err := s.menu.InsertOne(ctx, doc)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("insert menu item: %w", err)
	}
	item.ID = doc.ID.Hex()
	return insertResult(res), nil
}

func (s *Store) CountMenuItems(ctx context.Context) (int64, error) {
	n, err := s.menu.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count menu items: %w", err)
	}
	return n, nil
}
