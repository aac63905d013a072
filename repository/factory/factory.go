// Package factory opens the record store selected by configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/kp7829294-create/libzone/config"
	"github.com/kp7829294-create/libzone/repository"
	"github.com/kp7829294-create/libzone/repository/memstore"
	"github.com/kp7829294-create/libzone/repository/mongostore"
	"github.com/kp7829294-create/libzone/repository/pgstore"
	"github.com/kp7829294-create/libzone/util/database"
)

// Open connects to the configured backend. It does not migrate.
func Open(ctx context.Context, cfg config.App) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return pgstore.New(pool), nil
	case "mongo":
		client, err := database.NewMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return mongostore.New(client, cfg.MongoDatabase), nil
	case "memory":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
