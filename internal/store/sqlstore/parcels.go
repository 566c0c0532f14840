package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

func (s *Store) ListParcels(ctx context.Context, f store.ParcelFilter) ([]models.Parcel, error) {
	q := s.db.WithContext(ctx).Model(&parcelRecord{})
	if f.Email != "" {
		q = q.Where("email = ?", f.Email)
	}
	if f.DeliveryManID != "" {
		q = q.Where("delivery_man_id = ?", f.DeliveryManID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.DeliveryFrom != nil {
		q = q.Where("delivery_date >= ?", f.DeliveryFrom.UTC())
	}
	if f.DeliveryTo != nil {
		q = q.Where("delivery_date <= ?", f.DeliveryTo.UTC())
	}

	var records []parcelRecord
	if err := q.Order("booking_date").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find parcels: %w", err)
	}
	return convertAll(records, parcelRecord.model), nil
}

func (s *Store) FindParcel(ctx context.Context, id string) (*models.Parcel, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var rec parcelRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find parcel %s: %w", id, err)
	}
	p := rec.model()
	return &p, nil
}

func (s *Store) InsertParcel(ctx context.Context, p *models.Parcel) (models.InsertResult, error) {
	if p.Status == "" {
		p.Status = models.ParcelStatusPending
	}
	if p.BookingDate.IsZero() {
		p.BookingDate = time.Now().UTC()
	}
	rec := newParcelRecord(p)
	rec.ID = uuid.NewString()
	rec.DeliveryDate = rec.DeliveryDate.UTC()
	rec.BookingDate = rec.BookingDate.UTC()

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.InsertResult{}, fmt.Errorf("insert parcel: %w", err)
	}
	p.ID = rec.ID
	return models.InsertResult{Acknowledged: true, InsertedID: rec.ID}, nil
}

// UpsertParcelDetails overwrites the detail columns of parcel id, creating
// the row with that id when it does not exist yet.
func (s *Store) UpsertParcelDetails(ctx context.Context, id string, d models.ParcelDetails) (models.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return models.UpdateResult{}, err
	}

	// Insert first so concurrent upserts of a new id never collide on the
	// primary key. Whoever loses the insert falls through to the update.
	rec := parcelRecord{
		ID:              id,
		PhoneNumber:     d.PhoneNumber,
		ParcelType:      d.ParcelType,
		ParcelWeight:    d.ParcelWeight,
		ReceiverName:    d.ReceiverName,
		ReceiverPhone:   d.ReceiverPhone,
		DeliveryAddress: d.DeliveryAddress,
		DeliveryDate:    d.DeliveryDate.UTC(),
		DeliveryDateReq: d.DeliveryDateReq,
		DeliveryLat:     d.DeliveryLat,
		DeliveryLong:    d.DeliveryLong,
		Price:           d.Price,
	}
	ins := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&rec)
	if ins.Error != nil {
		return models.UpdateResult{}, fmt.Errorf("upsert parcel %s: %w", id, ins.Error)
	}
	if ins.RowsAffected > 0 {
		upserted := id
		return models.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &upserted}, nil
	}

	res := s.db.WithContext(ctx).Model(&parcelRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"phone_number":      d.PhoneNumber,
		"parcel_type":       d.ParcelType,
		"parcel_weight":     d.ParcelWeight,
		"receiver_name":     d.ReceiverName,
		"receiver_phone":    d.ReceiverPhone,
		"delivery_address":  d.DeliveryAddress,
		"delivery_date":     d.DeliveryDate.UTC(),
		"delivery_date_req": d.DeliveryDateReq,
		"delivery_lat":      d.DeliveryLat,
		"delivery_long":     d.DeliveryLong,
		"price":             d.Price,
	})
	if res.Error != nil {
		return models.UpdateResult{}, fmt.Errorf("upsert parcel %s: %w", id, res.Error)
	}
	return updateResult(res), nil
}

func (s *Store) UpdateParcelStatus(ctx context.Context, id string, u models.StatusUpdate) (models.UpdateResult, error) {
	return s.updateParcel(ctx, id, map[string]interface{}{
		"status":                  string(u.Status),
		"delivery_man_id":         u.DeliveryManID,
		"estimated_delivery_date": u.EstimatedDeliveryDate,
	})
}

func (s *Store) SetParcelStatus(ctx context.Context, id string, status models.ParcelStatus) (models.UpdateResult, error) {
	return s.updateParcel(ctx, id, map[string]interface{}{"status": string(status)})
}

func (s *Store) SetParcelImage(ctx context.Context, id, url string) (models.UpdateResult, error) {
	return s.updateParcel(ctx, id, map[string]interface{}{"parcel_image": url})
}

func (s *Store) CountParcels(ctx context.Context, status models.ParcelStatus) (int64, error) {
	q := s.db.WithContext(ctx).Model(&parcelRecord{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count parcels: %w", err)
	}
	return n, nil
}

// BookingsByDate groups in Go; date formatting functions differ between
// PostgreSQL and SQLite.
func (s *Store) BookingsByDate(ctx context.Context) ([]models.DailyBookings, error) {
	var dates []time.Time
	err := s.db.WithContext(ctx).Model(&parcelRecord{}).Pluck("delivery_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("load delivery dates: %w", err)
	}

	counts := make(map[string]int64)
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		counts[utils.DayKey(d)]++
	}

	out := make([]models.DailyBookings, 0, len(counts))
	for day, n := range counts {
		out = append(out, models.DailyBookings{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Store) updateParcel(ctx context.Context, id string, values map[string]interface{}) (models.UpdateResult, error) {
	if err := checkID(id); err != nil {
		return models.UpdateResult{}, err
	}
	tx := s.db.WithContext(ctx).Model(&parcelRecord{}).Where("id = ?", id).Updates(values)
	if tx.Error != nil {
		return models.UpdateResult{}, fmt.Errorf("update parcel %s: %w", id, tx.Error)
	}
	return updateResult(tx), nil
}
