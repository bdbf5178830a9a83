package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-etl-builder/internal/api"
	"go-etl-builder/internal/api/handler"
	"go-etl-builder/internal/config"
	"go-etl-builder/internal/logging"
	"go-etl-builder/internal/metrics"
	"go-etl-builder/internal/pipeline"
	"go-etl-builder/internal/rawstore"
	"go-etl-builder/internal/store"
	"go-etl-builder/internal/workspace"
	"go-etl-builder/pkg/router"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()
	pipeline.SetGlobalLogger(logger)

	db, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	files := rawstore.NewFileStore(cfg.Storage.SourcesDir, logger)
	if err := files.EnsureDir(); err != nil {
		return fmt.Errorf("prepare sources dir: %w", err)
	}

	m := metrics.New()
	h := handler.New(handler.Deps{
		DB:             db,
		Files:          files,
		Workspace:      workspace.New(),
		Pipelines:      pipeline.NewStore(),
		Logger:         logger,
		Metrics:        m,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	r := router.New(logger)
	api.RegisterRoutes(r, h, m)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    cfg.Server.Addr,
			"version": Version,
			"routes":  len(r.Routes()),
		}).Info("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func initConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write the default configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DefaultConfig().SaveToFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", args[0])
			return nil
		},
	}
}
