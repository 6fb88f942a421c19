package database

import (
	"context"
	"fmt"

	"github.com/you/staysvc/internal/infrastructure/repositories"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported SQL drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open creates a new database connection for the given driver
func Open(driver, dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	switch driver {
	case DriverPostgres:
		return gorm.Open(postgres.Open(dsn), config)
	case DriverSQLite:
		db, err := gorm.Open(sqlite.Open(dsn), config)
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer; serialize access through one connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// AutoMigrate performs database migration for all marketplace tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&repositories.DBAccount{}); err != nil {
		return fmt.Errorf("failed to migrate accounts table: %w", err)
	}
	if err := db.AutoMigrate(&repositories.DBListing{}); err != nil {
		return fmt.Errorf("failed to migrate listings table: %w", err)
	}
	if err := repositories.BackfillSearchKeys(context.Background(), db); err != nil {
		return fmt.Errorf("failed to backfill listing search keys: %w", err)
	}
	if err := db.AutoMigrate(&repositories.DBBooking{}); err != nil {
		return fmt.Errorf("failed to migrate bookings table: %w", err)
	}
	return nil
}
