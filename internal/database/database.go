package database

import (
	"context"
	"fmt"

	"github.com/ibcoder/portfolio/internal/config"
	"github.com/ibcoder/portfolio/internal/domain"
)

// Open returns the store selected by DB_DRIVER.
func Open(ctx context.Context, cfg config.Provider) (domain.Store, error) {
	switch cfg.GetDBDriver() {
	case "sqlite", "":
		return OpenSQLite(ctx, cfg.GetDBDSN())
	case "surreal":
		return OpenSurreal(ctx, SurrealConfig{
			URL:       cfg.GetSurrealURL(),
			Namespace: cfg.GetDBNs(),
			Database:  cfg.GetDBDb(),
			User:      cfg.GetDBUser(),
			Password:  cfg.GetDBPass(),
		})
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.GetDBDriver())
	}
}
