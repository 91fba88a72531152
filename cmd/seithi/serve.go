package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/Adda-Baaj/seithi/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		parts, err := buildPipeline(cfg, log)
		if err != nil {
			return err
		}
		tracker, closeHistory, err := buildHistory(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = closeHistory() }()

		srv := server.New(server.Options{
			News:      parts.news,
			History:   tracker,
			Auth:      buildAuth(cfg, log),
			Metrics:   parts.metrics,
			Log:       log,
			RateLimit: rate.Limit(cfg.Server.RateLimit),
			RateBurst: cfg.Server.RateBurst,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(cfg.Server.Addr) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
