package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"luciadash/internal/logging"
	"luciadash/internal/migrations"
)

var db *sql.DB

func GetDB() *sql.DB {
	return db
}

func Initialize(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Printf("Database initialized successfully at %s", dbPath)
	return nil
}

func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
