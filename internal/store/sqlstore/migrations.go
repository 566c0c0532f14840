package sqlstore

import (
	"context"
	"fmt"
)

// Migrate creates or updates every table the store uses. The unique email
// index on users is what makes InsertUserIfAbsent atomic.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&userRecord{},
		&parcelRecord{},
		&cartRecord{},
		&paymentRecord{},
		&menuItemRecord{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	return s.Migrate(ctx)
}
