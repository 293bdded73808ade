package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-admin/internal/api"
	"github.com/celerix-dev/celerix-admin/internal/config"
	"github.com/celerix-dev/celerix-admin/internal/engine"
	"github.com/celerix-dev/celerix-admin/internal/logging"
	"github.com/celerix-dev/celerix-admin/internal/server"
	"github.com/celerix-dev/celerix-admin/internal/vault"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "celerix-admind: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	build := logging.New().Level(cfg.Log.Level).Pretty(cfg.Log.Pretty)
	if cfg.Log.Path != "" {
		build = build.FromPath(cfg.Log.Path)
	}
	logData, err := build.Make()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logData.Close()
	log := logData.Logger

	log.Info().Msg("Starting Celerix Admin Daemon...")

	// 2. Initialize Persistence and the catalog
	persister, err := engine.NewPersistence(cfg.DataDir, log)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	catalog, err := engine.Open(persister, log)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	names, _ := catalog.Collections()
	log.Info().Str("data_dir", cfg.DataDir).Strs("collections", names).Msg("catalog loaded")

	// 3. Initialize the TCP Router
	router := server.NewRouter(catalog, log)

	// 4. Setup TLS
	if !cfg.DisableTLS {
		cert, err := vault.GenerateSelfSignedCert()
		if err != nil {
			return fmt.Errorf("failed to generate TLS certificate: %w", err)
		}
		router.SetCertificate(cert)
		log.Info().Msg("TLS encryption enabled")
	} else {
		log.Warn().Msg("TLS encryption disabled (CELERIX_DISABLE_TLS=true)")
	}

	// 5. Initialize HTTP API
	gin.SetMode(gin.ReleaseMode)
	h := api.NewHandler(catalog, log)
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewEngine(h, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Start servers
	errc := make(chan error, 2)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	go func() {
		log.Info().Str("port", cfg.Port).Msg("TCP router listening")
		if err := router.Listen(cfg.Port); err != nil {
			errc <- fmt.Errorf("TCP server failed: %w", err)
		}
	}()

	// 7. Handle Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received. Finalizing disk writes...")
	case err = <-errc:
		log.Error().Err(err).Msg("server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		log.Warn().Err(serr).Msg("HTTP shutdown")
	}
	router.Stop()
	catalog.Close()
	log.Info().Msg("Persistence complete. Exiting.")
	return err
}
