// Package main is a CLI for managing the dashboard's local database
// schema outside the server process.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"luciadash/internal/config"
	"luciadash/internal/migrations"
)

func main() {
	var dbPath string
	flag.StringVar(&dbPath, "db", "", "Path to the database (defaults to the configured path)")
	flag.Usage = usage
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "status"
	}

	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		dbPath = cfg.DatabasePath
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database %s: %v\n", dbPath, err)
		os.Exit(1)
	}

	fmt.Printf("Database: %s\n", dbPath)

	switch command {
	case "up":
		err = migrations.Run(db)
	case "down":
		err = migrations.Down(db)
	case "status":
		err = migrations.Status(db)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: migrate-database [-db path] [up|down|status]\n\n")
	fmt.Fprintf(os.Stderr, "  up      apply all pending migrations\n")
	fmt.Fprintf(os.Stderr, "  down    roll back the most recent migration\n")
	fmt.Fprintf(os.Stderr, "  status  show applied and pending migrations (default)\n\n")
	flag.PrintDefaults()
}
