package database

import (
	"testing"

	"discjourney/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenDialectorMigratesAndSetsDefault(t *testing.T) {
	_, err := GetDB()
	require.ErrorIs(t, err, ErrNotInitialized)

	conn, err := OpenDialector(sqlite.Open(":memory:"), Options{}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB() })

	got, err := GetDB()
	require.NoError(t, err)
	assert.Same(t, conn, got)

	for _, table := range []interface{}{
		&models.User{}, &models.Friend{}, &models.AchievementDocument{},
		&models.LeaderboardEntry{}, &models.Club{}, &models.ClubMember{},
	} {
		assert.True(t, conn.Migrator().HasTable(table), "%T", table)
	}
	assert.True(t, conn.Migrator().HasIndex(&models.LeaderboardEntry{}, "idx_leaderboard_slot"))

	// Migrations are re-runnable.
	require.NoError(t, RunMigrations(conn, zap.NewNop()))
}

func TestCloseDBWithoutOpen(t *testing.T) {
	assert.NoError(t, CloseDB())
}
