package sqlstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
)

func (s *Store) ListCartItems(ctx context.Context, email string) ([]models.CartItem, error) {
	var records []cartRecord
	if err := s.db.WithContext(ctx).Where("email = ?", email).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find cart items: %w", err)
	}
	return convertAll(records, cartRecord.model), nil
}

func (s *Store) InsertCartItem(ctx context.Context, item *models.CartItem) (models.InsertResult, error) {
	rec := cartRecord{
		ID:     uuid.NewString(),
		Email:  item.Email,
		MenuID: item.MenuID,
		Name:   item.Name,
		Image:  item.Image,
		Price:  item.Price,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.InsertResult{}, fmt.Errorf("insert cart item: %w", err)
	}
	item.ID = rec.ID
	return models.InsertResult{Acknowledged: true, InsertedID: rec.ID}, nil
}

func (s *Store) DeleteCartItem(ctx context.Context, id string) (models.DeleteResult, error) {
	return s.DeleteCartItems(ctx, []string{id})
}

func (s *Store) DeleteCartItems(ctx context.Context, ids []string) (models.DeleteResult, error) {
	if err := checkIDs(ids); err != nil {
		return models.DeleteResult{}, err
	}
	if len(ids) == 0 {
		return models.DeleteResult{Acknowledged: true}, nil
	}
	tx := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&cartRecord{})
	if tx.Error != nil {
		return models.DeleteResult{}, fmt.Errorf("delete cart items: %w", tx.Error)
	}
	return deleteResult(tx), nil
}

func (s *Store) ListPayments(ctx context.Context, email string) ([]models.Payment, error) {
	var records []paymentRecord
	if err := s.db.WithContext(ctx).Where("email = ?", email).Order("date").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find payments: %w", err)
	}
	return convertAll(records, paymentRecord.model), nil
}

func (s *Store) InsertPayment(ctx context.Context, p *models.Payment) (models.InsertResult, error) {
	if err := checkIDs(p.CartIDs); err != nil {
		return models.InsertResult{}, fmt.Errorf("cart ids: %w", err)
	}
	if err := checkIDs(p.MenuItemIDs); err != nil {
		return models.InsertResult{}, fmt.Errorf("menu item ids: %w", err)
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	rec := paymentRecord{
		ID:            uuid.NewString(),
		Email:         p.Email,
		Name:          p.Name,
		TransactionID: p.TransactionID,
		Price:         p.Price,
		Date:          p.Date.UTC(),
		CartIDs:       nonNil(p.CartIDs),
		MenuItemIDs:   nonNil(p.MenuItemIDs),
		Status:        p.Status,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.InsertResult{}, fmt.Errorf("insert payment: %w", err)
	}
	p.ID = rec.ID
	return models.InsertResult{Acknowledged: true, InsertedID: rec.ID}, nil
}

func (s *Store) CountPayments(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&paymentRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return n, nil
}

func (s *Store) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&paymentRecord{}).Select("COALESCE(SUM(price), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

// OrderStats counts every purchased menu item once per occurrence and sums
// its catalogue price per category. Ids missing from the menu are skipped.
func (s *Store) OrderStats(ctx context.Context) ([]models.CategoryStats, error) {
	var payments []paymentRecord
	if err := s.db.WithContext(ctx).Select("menu_item_ids").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	var items []menuItemRecord
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}

	menu := make(map[string]menuItemRecord, len(items))
	for _, it := range items {
		menu[it.ID] = it
	}

	byCategory := make(map[string]*models.CategoryStats)
	for _, p := range payments {
		for _, id := range p.MenuItemIDs {
			it, ok := menu[id]
			if !ok {
				continue
			}
			st, ok := byCategory[it.Category]
			if !ok {
				st = &models.CategoryStats{Category: it.Category}
				byCategory[it.Category] = st
			}
			st.Quantity++
			st.Revenue += it.Price
		}
	}

	out := make([]models.CategoryStats, 0, len(byCategory))
	for _, st := range byCategory {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var records []menuItemRecord
	if err := s.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find menu items: %w", err)
	}
	return convertAll(records, menuItemRecord.model), nil
}

func (s *Store) InsertMenuItem(ctx context.Context, item *models.MenuItem) (models.InsertResult, error) {
	rec := menuItemRecord{
		ID:       uuid.NewString(),
		Name:     item.Name,
		Category: item.Category,
		Price:    item.Price,
		Image:    item.Image,
		Recipe:   item.Recipe,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.InsertResult{}, fmt.Errorf("insert menu item: %w", err)
	}
	item.ID = rec.ID
	return models.InsertResult{Acknowledged: true, InsertedID: rec.ID}, nil
}

func (s *Store) CountMenuItems(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&menuItemRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count menu items: %w", err)
	}
	return n, nil
}
