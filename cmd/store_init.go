package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/modelscan/internal/store"
)

// initStore opens the run-history store for the configured driver. Driver
// "none" returns a nil store: history recording is disabled.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "none", "":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "modelscan.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
