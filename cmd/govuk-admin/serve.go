package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/govuk-admin/internal/admin"
	"github.com/joestump/govuk-admin/internal/build"
	"github.com/joestump/govuk-admin/internal/handler"
	"github.com/joestump/govuk-admin/internal/models"
	"github.com/joestump/govuk-admin/internal/session"
	"github.com/joestump/govuk-admin/internal/store"
	"github.com/joestump/govuk-admin/internal/theme"
	"github.com/joestump/govuk-admin/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, database, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			defer func() { _ = database.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			records := store.NewRecordStore(database)
			if cfg.SeedUsers > 0 {
				seeded, err := models.NewSeeder(records, time.Now().UnixNano()).SeedIfEmpty(ctx, cfg.SeedUsers)
				if err != nil {
					return fmt.Errorf("seed: %w", err)
				}
				if seeded {
					logger.Info("seeded example data", zap.Int("users", cfg.SeedUsers))
				}
			}

			a := admin.New(cfg.ServiceName, logger)
			if err := models.Register(a); err != nil {
				return err
			}

			static, err := fs.Sub(web.StaticFS, "static")
			if err != nil {
				return fmt.Errorf("static assets: %w", err)
			}
			router, err := handler.NewRouter(handler.Deps{
				Admin:          a,
				Records:        records,
				SessionManager: session.NewManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies),
				Theme:          theme.Default(static),
				ServiceName:    cfg.ServiceName,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening",
					zap.String("addr", cfg.HTTP.Addr),
					zap.String("version", build.Version),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
}
