package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/config"
	"github.com/joestump/govuk-admin/internal/db"
	"github.com/joestump/govuk-admin/internal/logging"
)

// setup loads config, builds the logger and opens a migrated database.
func setup(ctx context.Context) (*config.Config, *zap.Logger, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	version, err := db.Migrate(ctx, database, cfg.DB.Driver)
	if err != nil {
		_ = database.Close()
		return nil, nil, nil, err
	}
	logger.Info("database ready", zap.String("driver", cfg.DB.Driver), zap.Int64("schema_version", version))
	return cfg, logger, database, nil
}
