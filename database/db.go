// database/db.go - Database Connection (PostgreSQL)
package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

var ErrNotInitialized = errors.New("database not initialized")

// Options tunes the connection.
type Options struct {
	// Verbose logs every SQL statement.
	Verbose bool
	// SkipMigrations leaves the schema alone.
	SkipMigrations bool
}

// Open connects to PostgreSQL at dsn, configures the pool and runs the
// migrations. The connection becomes the package default.
func Open(dsn string, opts Options, log *zap.Logger) (*gorm.DB, error) {
	return OpenDialector(postgres.Open(dsn), opts, log)
}

// OpenDialector is Open for an arbitrary gorm dialector. Tools and tests
// use it with SQLite.
func OpenDialector(dialector gorm.Dialector, opts Options, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if opts.Verbose {
		level = logger.Info
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if dialector.Name() == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// SQLite serialises writers anyway; a single connection also keeps
		// an in-memory database alive and shared.
		sqlDB.SetMaxOpenConns(1)
	}

	log.Info("database connected", zap.String("dialect", dialector.Name()))

	if !opts.SkipMigrations {
		if err := RunMigrations(conn, log); err != nil {
			return nil, err
		}
	}

	db = conn
	return conn, nil
}

// GetDB returns the database instance
func GetDB() (*gorm.DB, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	return db, nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db = nil
	return nil
}
