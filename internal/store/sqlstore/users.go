package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
)

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	var records []userRecord
	err := s.db.WithContext(ctx).
		Where(&userRecord{Role: string(f.Role), Email: f.Email}).
		Order("created_at").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return convertAll(records, userRecord.model), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec userRecord
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", email, err)
	}
	u := rec.model()
	return &u, nil
}

// InsertUserIfAbsent leans on the unique email index: a conflicting insert
// affects no rows and is reported as not created.
func (s *Store) InsertUserIfAbsent(ctx context.Context, u *models.User) (models.InsertResult, bool, error) {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	rec := newUserRecord(u)
	rec.ID = uuid.NewString()

	tx := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&rec)
	if tx.Error != nil {
		return models.InsertResult{}, false, fmt.Errorf("insert user: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return models.InsertResult{}, false, nil
	}
	u.ID = rec.ID
	return models.InsertResult{Acknowledged: true, InsertedID: rec.ID}, true, nil
}

func (s *Store) SetUserRole(ctx context.Context, id string, role models.Role) (models.UpdateResult, error) {
	return s.updateUser(ctx, id, map[string]interface{}{"role": string(role)})
}

func (s *Store) IncrementBookings(ctx context.Context, email string, amount float64) (models.UpdateResult, error) {
	tx := s.db.WithContext(ctx).Model(&userRecord{}).Where("email = ?", email).Updates(map[string]interface{}{
		"booked_parcel_count": gorm.Expr("booked_parcel_count + ?", 1),
		"total_amount":        gorm.Expr("total_amount + ?", amount),
	})
	if tx.Error != nil {
		return models.UpdateResult{}, fmt.Errorf("increment bookings: %w", tx.Error)
	}
	return updateResult(tx), nil
}

func (s *Store) IncrementDelivered(ctx context.Context, id string) (models.UpdateResult, error) {
	return s.updateUser(ctx, id, map[string]interface{}{
		"parcels_delivered": gorm.Expr("parcels_delivered + ?", 1),
	})
}

// AddRating updates the average in one statement; both expressions read the
// row as it was before the update.
func (s *Store) AddRating(ctx context.Context, id string, rating float64) (models.UpdateResult, error) {
	return s.updateUser(ctx, id, map[string]interface{}{
		"average_ratings": gorm.Expr("(average_ratings * review_count + ?) / (review_count + 1)", rating),
		"review_count":    gorm.Expr("review_count + ?", 1),
	})
}

func (s *Store) DeleteUser(ctx context.Context, id string) (models.DeleteResult, error) {
	if err := checkID(id); err != nil {
		return models.DeleteResult{}, err
	}
	tx := s.db.WithContext(ctx).Where("id = ?", id).Delete(&userRecord{})
	if tx.Error != nil {
		return models.DeleteResult{}, fmt.Errorf("delete user: %w", tx.Error)
	}
	return deleteResult(tx), nil
}

func (s *Store) TopDeliveryMen(ctx context.Context, limit int) ([]models.User, error) {
	var records []userRecord
	err := s.db.WithContext(ctx).
		Where("role = ?", string(models.RoleDeliveryMan)).
		Order("parcels_delivered DESC").
		Order("average_ratings DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find top delivery men: %w", err)
	}
	return convertAll(records, userRecord.model), nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *Store) updateUser(ctx context.Context, id string, values map[string]interface{}) (models.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return models.UpdateResult{}, err
	}
	tx := s.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).Updates(values)
	if tx.Error != nil {
		return models.UpdateResult{}, fmt.Errorf("update user %s: %w", id, tx.Error)
	}
	return updateResult(tx), nil
}
