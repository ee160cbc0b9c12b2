// Package main runs the Credential Gateway, which forwards client requests to
// the content provider and adds the provider credential on the way.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/scry-lexicon/internal/config"
	"github.com/phrazzld/scry-lexicon/internal/gateway"
	"github.com/phrazzld/scry-lexicon/internal/platform/logger"
	"github.com/phrazzld/scry-lexicon/internal/redact"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("gateway exited with error", slog.String("error", redact.Error(err)))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	gw, err := gateway.New(cfg.Gateway, log)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	go func() {
		log.Info("Starting gateway",
			slog.Int("port", cfg.Gateway.Port),
			slog.Int("allowed_hosts", len(cfg.Gateway.AllowedHosts)),
			slog.Bool("client_auth", cfg.Gateway.ClientSecret != ""))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Gateway failed", "error", err)
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("Shutting down gateway...")
	case <-serverCtx.Done():
		log.Info("Gateway context canceled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown failed: %w", err)
	}

	log.Info("Gateway shutdown completed")
	return nil
}
