// Package main is the entry point for the Lucia dashboard server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"luciadash/internal/config"
	"luciadash/internal/database"
	"luciadash/internal/logging"
	"luciadash/internal/server"
	"luciadash/internal/telemetry"
	"luciadash/internal/version"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, especially in production
		if os.Getenv("DEBUG") == "true" {
			logging.Printf("No .env file found or error loading it: %v", err)
		}
	}

	// Handle version flag first, before loading configuration
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-version" || os.Args[1] == "version") {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// File logging only in development mode. In production stdout is
	// captured by systemd or the container runtime.
	if cfg.DevMode {
		if err := logging.Initialize(cfg.LogDir); err != nil {
			logging.Warning("Failed to initialize file logging: %v", err)
		} else {
			defer logging.Close()
		}
	}

	logging.Printf("Configuration loaded: %s", cfg)

	ctx := context.Background()
	shutdown, err := telemetry.InitializeFromEnv(ctx)
	if err != nil {
		logging.Warning("Failed to initialize telemetry: %v", err)
		// Continue without telemetry
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				logging.Errorf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	if err := database.Initialize(cfg.DatabasePath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logging.Errorf("Failed to close database: %v", err)
		}
	}()

	srv, err := server.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}
	defer srv.Shutdown()

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	info := version.Get()
	fmt.Printf("%s version %s\n", version.Name, info.Version)
	fmt.Printf("  commit: %s\n", info.Commit)
	fmt.Printf("  built: %s\n", info.BuildDate)
	fmt.Printf("  go: %s\n", info.GoVersion)
	fmt.Printf("  platform: %s\n", info.Platform)
}
