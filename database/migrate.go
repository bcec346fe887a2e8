// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"

	"discjourney/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	// Core application models
	if err := db.AutoMigrate(
		&models.User{},
		&models.Friend{},
		&models.AchievementDocument{},
		&models.LeaderboardEntry{},
	); err != nil {
		return fmt.Errorf("core migrations: %w", err)
	}

	if err := RunClubMigrations(db, log); err != nil {
		return fmt.Errorf("club migrations: %w", err)
	}

	if err := createCoreIndexes(db); err != nil {
		return fmt.Errorf("core indexes: %w", err)
	}

	log.Info("migrations completed")
	return nil
}

// createCoreIndexes creates indexes for core tables
func createCoreIndexes(db *gorm.DB) error {
	return execAll(db,
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_guest ON users(is_guest)",

		// Friend indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_friends_pair ON friends(user_id, friend_id)",

		// Leaderboard reads sort by points inside one board and period
		"CREATE INDEX IF NOT EXISTS idx_leaderboard_points ON leaderboard_entries(board, period_key, club_id, points DESC)",
	)
}

func execAll(db *gorm.DB, statements ...string) error {
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
