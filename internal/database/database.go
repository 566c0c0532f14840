// Package database opens the store selected by configuration.
package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chachabrian/swiftparcel-backend/internal/config"
	"github.com/chachabrian/swiftparcel-backend/internal/store"
	"github.com/chachabrian/swiftparcel-backend/internal/store/mongostore"
	"github.com/chachabrian/swiftparcel-backend/internal/store/sqlstore"
)

// Open connects to the configured store and makes sure its indexes exist.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		st, err = sqlstore.OpenPostgres(cfg.Postgres.DSN, sqlstore.PoolOptions{
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
	default:
		st, err = mongostore.Connect(ctx, cfg.Mongo.ConnectionURI(), cfg.Mongo.Database, cfg.Mongo.Timeout)
	}
	if err != nil {
		return nil, err
	}

	if err := st.EnsureIndexes(ctx); err != nil {
		_ = st.Close(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	log.Info().Str("driver", cfg.Store.Driver).Msg("connected to store")
	return st, nil
}
