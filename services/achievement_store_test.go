package services

import (
	"context"
	"testing"

	"discjourney/models"
	"discjourney/progression"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/datatypes"
)

func TestAchievementStoreLoadMissing(t *testing.T) {
	db := openTestDB(t)
	store := NewAchievementStore(db, NewClubService(db), zap.NewNop())

	snap, err := store.Load(context.Background(), 42)
	require.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Empty(t, snap.States)
}

func TestAchievementStoreSaveAndFanOut(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	user := createUser(t, db, "ace")
	club := createClub(t, db, "chainbangers", user.ID, user.ID)
	store := NewAchievementStore(db, NewClubService(db), zap.NewNop())

	c := testCatalog(t)
	now := referenceNow(t)
	res := progression.ApplyToggle(c, progression.NewSnapshot(), progression.TabSkill, "skill-1", now)
	require.True(t, res.Applied)
	summary := progression.Summarize(c, res.Snapshot, now)

	require.NoError(t, store.Save(ctx, user.ID, res.Snapshot, summary))

	loaded, err := store.Load(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.States["skill-1"].IsCompleted)

	var entries []models.LeaderboardEntry
	require.NoError(t, db.Order("board").Find(&entries).Error)
	require.Len(t, entries, 5)

	byBoard := map[models.Board]models.LeaderboardEntry{}
	for _, e := range entries {
		byBoard[e.Board] = e
		assert.Equal(t, 10, e.Points, e.Board)
		assert.Equal(t, "ace", e.DisplayName)
		assert.Equal(t, "Rookie", e.Rank)
	}
	assert.Equal(t, models.AllTimePeriod, byBoard[models.BoardAllTime].PeriodKey)
	assert.Equal(t, "2026-W42", byBoard[models.BoardWeekly].PeriodKey)
	assert.Equal(t, "2026-10", byBoard[models.BoardMonthly].PeriodKey)
	assert.Equal(t, "2026", byBoard[models.BoardYearly].PeriodKey)
	assert.Equal(t, club.ID, byBoard[models.BoardClub].ClubID)

	// A second save updates the same rows in place.
	res = progression.ApplyToggle(c, res.Snapshot, progression.TabSocial, "social-1", now)
	require.NoError(t, store.Save(ctx, user.ID, res.Snapshot, progression.Summarize(c, res.Snapshot, now)))

	var count int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&count).Error)
	assert.EqualValues(t, 5, count)

	var allTime models.LeaderboardEntry
	require.NoError(t, db.Where("board = ?", models.BoardAllTime).First(&allTime).Error)
	assert.Equal(t, 30, allTime.Points)
}

func TestAchievementStoreFanOutUnknownUserIsLogged(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	core, logs := observer.New(zap.ErrorLevel)
	store := NewAchievementStore(db, NewClubService(db), zap.New(core))

	snap := progression.NewSnapshot()
	require.NoError(t, store.Save(ctx, 99, snap, progression.Summary{}))

	assert.Equal(t, 1, logs.FilterMessage("skipping leaderboard fan-out").Len())
	_, err := store.Load(ctx, 99)
	assert.NoError(t, err)
}

func TestAchievementStoreLoadCoercesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	core, logs := observer.New(zap.WarnLevel)
	store := NewAchievementStore(db, NewClubService(db), zap.New(core))

	legacy := `{"skill":[{"id":"skill-1","isCompleted":"true","year":2026},{"id":"skill-2","progress":"lots"}]}`
	require.NoError(t, db.Create(&models.AchievementDocument{UserID: 7, Version: 1, Document: datatypes.JSON(legacy)}).Error)

	snap, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.True(t, snap.States["skill-1"].IsCompleted)
	assert.Equal(t, 0, snap.States["skill-2"].Progress)
	assert.Equal(t, 1, logs.Len())
}
