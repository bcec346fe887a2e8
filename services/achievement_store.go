// services/achievement_store.go - Achievement document persistence
package services

import (
	"context"
	"errors"
	"fmt"

	"discjourney/models"
	"discjourney/progression"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDocumentNotFound = errors.New("achievement document not found")
	ErrUnknownUser      = errors.New("unknown user")
)

// AchievementStore loads and saves achievement documents and keeps the
// leaderboard rows derived from them up to date.
type AchievementStore struct {
	db    *gorm.DB
	clubs *ClubService
	log   *zap.Logger
}

func NewAchievementStore(db *gorm.DB, clubs *ClubService, log *zap.Logger) *AchievementStore {
	return &AchievementStore{db: db, clubs: clubs, log: log}
}

// Load returns the user's stored snapshot. Fields that had to be coerced
// are logged, never returned as errors. A user without a document gets
// ErrDocumentNotFound and an empty snapshot.
func (s *AchievementStore) Load(ctx context.Context, userID uint) (progression.Snapshot, error) {
	var row models.AchievementDocument
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return progression.NewSnapshot(), ErrDocumentNotFound
	}
	if err != nil {
		return progression.Snapshot{}, fmt.Errorf("load achievements for user %d: %w", userID, err)
	}

	snap, warnings := progression.DecodeDocument(row.Document)
	for _, w := range warnings {
		s.log.Warn("coerced stored achievement data",
			zap.Uint("user_id", userID),
			zap.Int("version", row.Version),
			zap.String("detail", w))
	}
	return snap, nil
}

// Save writes the document, then fans the summary out to the leaderboard
// rows. Each leaderboard row is an independent write; failures there are
// logged and do not fail the save.
func (s *AchievementStore) Save(ctx context.Context, userID uint, snap progression.Snapshot, summary progression.Summary) error {
	if err := s.SaveDocument(ctx, userID, snap); err != nil {
		return err
	}
	s.fanOut(ctx, userID, summary)
	return nil
}

// SaveDocument upserts only the document row.
func (s *AchievementStore) SaveDocument(ctx context.Context, userID uint, snap progression.Snapshot) error {
	raw, err := progression.EncodeDocument(snap)
	if err != nil {
		return fmt.Errorf("encode achievements for user %d: %w", userID, err)
	}

	row := models.AchievementDocument{
		UserID:   userID,
		Version:  progression.DocumentVersion,
		Document: datatypes.JSON(raw),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "document", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save achievements for user %d: %w", userID, err)
	}
	return nil
}

func (s *AchievementStore) fanOut(ctx context.Context, userID uint, summary progression.Summary) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "username", "display_name").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrUnknownUser
		}
		s.log.Error("skipping leaderboard fan-out", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	base := models.LeaderboardEntry{
		UserID:      userID,
		DisplayName: user.PublicName(),
		Prestige:    summary.Rank.Prestige,
		Rank:        summary.Rank.Rank,
	}
	entries := []models.LeaderboardEntry{
		withBoard(base, models.BoardAllTime, models.AllTimePeriod, 0, summary.Totals.AllTime),
		withBoard(base, models.BoardWeekly, summary.Periods.Week, 0, summary.Totals.Week),
		withBoard(base, models.BoardMonthly, summary.Periods.Month, 0, summary.Totals.Month),
		withBoard(base, models.BoardYearly, summary.Periods.Year, 0, summary.Totals.Year),
	}

	clubIDs, err := s.clubs.GetUserClubIDs(ctx, userID)
	if err != nil {
		s.log.Error("failed to read club memberships", zap.Uint("user_id", userID), zap.Error(err))
	}
	for _, clubID := range clubIDs {
		entries = append(entries, withBoard(base, models.BoardClub, models.AllTimePeriod, clubID, summary.Totals.AllTime))
	}

	for i := range entries {
		if err := s.upsertEntry(ctx, &entries[i]); err != nil {
			s.log.Error("leaderboard write failed",
				zap.Uint("user_id", userID),
				zap.String("board", string(entries[i].Board)),
				zap.String("period", entries[i].PeriodKey),
				zap.Uint("club_id", entries[i].ClubID),
				zap.Error(err))
		}
	}
}

func withBoard(base models.LeaderboardEntry, board models.Board, period string, clubID uint, points int) models.LeaderboardEntry {
	base.Board = board
	base.PeriodKey = period
	base.ClubID = clubID
	base.Points = points
	return base
}

func (s *AchievementStore) upsertEntry(ctx context.Context, entry *models.LeaderboardEntry) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "board"}, {Name: "period_key"}, {Name: "club_id"}, {Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "points", "prestige", "rank", "updated_at"}),
	}).Create(entry).Error
}
