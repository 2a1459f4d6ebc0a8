package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/argentech/argentech-backend/config"
	"github.com/argentech/argentech-backend/internal/storage/postgres"
)

type DBOptions struct {
	Config    *config.DatabaseConfig
	ConnectTO time.Duration
	// SkipSchema leaves table creation to external migrations.
	SkipSchema bool
}

// OpenDB connects to Postgres and makes sure the directory tables exist.
func OpenDB(ctx context.Context, opt DBOptions) (*sql.DB, error) {
	if opt.Config == nil {
		return nil, fmt.Errorf("database config is not set")
	}
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 5 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
	defer cancel()

	db, err := postgres.NewConnection(cctx, opt.Config)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if opt.SkipSchema {
		return db, nil
	}
	if err := postgres.EnsureSchema(cctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
