package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/wichananm65/misdis-backend/internal/config"
	"github.com/wichananm65/misdis-backend/internal/database"
	"github.com/wichananm65/misdis-backend/internal/logger"
	"github.com/wichananm65/misdis-backend/internal/server"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:           "misdis",
		Short:         "Administrative backend for federal divisions and user accounts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides APP_ADDR)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	}

	root.AddCommand(serveCmd, migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (config.Config, *zap.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		_ = log.Sync()
		return config.Config{}, nil, nil, err
	}
	return cfg, log, db, nil
}

func migrate(ctx context.Context) error {
	_, log, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer db.Close()

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		return err
	}
	log.Info("migrations applied", zap.Strings("versions", applied))
	return nil
}

func serve(ctx context.Context, addr string) error {
	cfg, log, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer db.Close()

	if addr != "" {
		cfg.Addr = addr
	}
	if cfg.MigrateOnStart {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			log.Info("migrations applied", zap.Strings("versions", applied))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := server.New(cfg, db, log, reg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("driver", cfg.DBDriver))
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
