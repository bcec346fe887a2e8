package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"discjourney/database"
	"discjourney/models"
	"discjourney/progression"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db, zap.NewNop()))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createClub(t *testing.T, db *gorm.DB, name string, creator uint, members ...uint) models.Club {
	t.Helper()
	club := models.Club{Name: name, ClubCode: name[:3], CreatorID: creator, IsActive: true}
	require.NoError(t, db.Create(&club).Error)
	for _, id := range members {
		require.NoError(t, db.Create(&models.ClubMember{
			ClubID: club.ID, UserID: id, Role: models.ClubRoleMember, JoinedAt: time.Now(), IsActive: true,
		}).Error)
	}
	return club
}

func referenceNow(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(progression.DefaultReferenceZone)
	require.NoError(t, err)
	return time.Date(2026, 10, 15, 12, 0, 0, 0, loc)
}

func testCatalog(t *testing.T) *progression.Catalog {
	t.Helper()
	c, _, err := progression.NewCatalog([]progression.Definition{
		{ID: "skill-1", Tab: progression.TabSkill, Points: 10, CategoryID: "putting", TierIndex: 0, Title: "First putt"},
		{ID: "skill-2", Tab: progression.TabSkill, Kind: progression.KindCounter, Target: 2, Points: 40, RequiresID: "skill-1", CategoryID: "putting", TierIndex: 0},
		{ID: "skill-3", Tab: progression.TabSkill, Points: 50, CategoryID: "putting", TierIndex: 1},
		{ID: "secret", Tab: progression.TabSkill, Points: 5, GateRequiresID: "skill-3"},
		{ID: "social-1", Tab: progression.TabSocial, Points: 20},
		{ID: "retired", Tab: progression.TabCollection, Points: 99},
	}, []progression.CategoryCard{{
		ID: "putting", Tab: progression.TabSkill, Title: "Putting",
		Tiers: []progression.Tier{{Index: 0}, {Index: 1}},
	}}, []string{"retired"})
	require.NoError(t, err)
	return c
}
