// database/club_migrations.go - Club Database Migrations
package database

import (
	"discjourney/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunClubMigrations creates the club tables. Clubs are managed elsewhere;
// this service only reads memberships.
func RunClubMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Debug("running club migrations")

	if err := db.AutoMigrate(
		&models.Club{},
		&models.ClubMember{},
	); err != nil {
		return err
	}

	return execAll(db,
		"CREATE INDEX IF NOT EXISTS idx_clubs_creator ON clubs(creator_id)",
		"CREATE INDEX IF NOT EXISTS idx_club_members_club_user ON club_members(club_id, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_club_members_user_active ON club_members(user_id, is_active)",
	)
}
