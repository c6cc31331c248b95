package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/gameshelf/gameshelf/internal/api"
	"github.com/gameshelf/gameshelf/internal/pkg/config"
	"github.com/gameshelf/gameshelf/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. The process stops gracefully on SIGINT or SIGTERM,
waiting for in-flight requests to finish.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			return runServe(cmd.Context(), cfg, autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending PostgreSQL migrations before serving")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, autoMigrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel))

	deps, cleanup, err := wire(ctx, cfg, autoMigrate)
	if err != nil {
		return err
	}
	defer cleanup()

	e := api.NewRouter(deps)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("store", cfg.StoreDriver).Msg("http server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	return shutdown(e)
}

func shutdown(e *echo.Echo) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
