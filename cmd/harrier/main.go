// Harrier - AML evidence bundles from two CSVs.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opensource-finance/harrier/internal/api"
	"github.com/opensource-finance/harrier/internal/bus"
	"github.com/opensource-finance/harrier/internal/domain"
	"github.com/opensource-finance/harrier/internal/linkstore"
	"github.com/opensource-finance/harrier/internal/manifest"
	"github.com/opensource-finance/harrier/internal/narrative"
	"github.com/opensource-finance/harrier/internal/pipeline"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("HARRIER_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting harrier",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.FromEnv()

	slog.Info("configuration loaded",
		"linkstore", cfg.LinkStore.Type,
		"link_ttl_minutes", cfg.LinkStore.TTLMinutes,
		"eventbus", cfg.EventBus.Type,
		"signing", cfg.Signing.SeedHex != "",
		"narrative", cfg.Narrative.Enabled,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize LinkStore
	store, err := linkstore.New(cfg.LinkStore)
	if err != nil {
		slog.Error("failed to initialize link store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("link store initialized", "type", cfg.LinkStore.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize manifest signer (optional)
	signer, err := manifest.SignerFromConfig(cfg.Signing)
	if err != nil {
		slog.Error("failed to initialize manifest signer", "error", err)
		os.Exit(1)
	}
	if signer != nil {
		slog.Info("manifest signing enabled", "key_id", signer.KeyID())
	} else {
		slog.Info("manifest signing disabled, bundles will carry unsigned manifests")
	}

	// Initialize narrator (optional)
	narrator := narrative.FromConfig(cfg.Narrative)
	if narrator != nil {
		slog.Info("narrative enrichment enabled", "endpoint", cfg.Narrative.Endpoint)
	}

	// Initialize Pipeline
	pipe := pipeline.New(narrator, signer)
	slog.Info("pipeline initialized")

	// Initialize Server
	srv := api.NewServer(*cfg, pipe, store, busImpl, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("harrier is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("harrier shutdown complete")
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  Harrier - AML Evidence Bundle Builder")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /uploads                  - Score a roster + ledger, get a bundle link")
	fmt.Println("    GET  /bundles/{token}          - Download the evidence bundle (zip)")
	fmt.Println("    GET  /bundles/{token}/manifest - Fetch the bundle manifest alone")
	fmt.Println("    GET  /ruleset                  - Show the active ruleset metadata")
	fmt.Println("    GET  /health                   - Health check")
	fmt.Println()
}
