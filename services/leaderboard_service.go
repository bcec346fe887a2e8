// services/leaderboard_service.go - Leaderboard reads
package services

import (
	"context"
	"errors"
	"fmt"

	"discjourney/models"
	"discjourney/progression"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	ErrUnknownBoard = errors.New("unknown leaderboard")
	ErrNotRanked    = errors.New("user has no leaderboard entry")
)

// LeaderboardRow is one ranked line of a leaderboard.
type LeaderboardRow struct {
	Position    int    `json:"position"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
	Prestige    int    `json:"prestige"`
	Rank        string `json:"rank"`
}

// LeaderboardService reads the rows AchievementStore fans out. Period
// boards only ever return rows for the current period, so rows from an
// earlier week simply stop showing up.
type LeaderboardService struct {
	db    *gorm.DB
	clubs *ClubService
	clock progression.Clock
}

func NewLeaderboardService(db *gorm.DB, clubs *ClubService, clock progression.Clock) *LeaderboardService {
	return &LeaderboardService{db: db, clubs: clubs, clock: clock}
}

// ParseBoard validates a board name from a request. Empty means all-time.
func ParseBoard(name string) (models.Board, error) {
	switch b := models.Board(name); b {
	case "":
		return models.BoardAllTime, nil
	case models.BoardAllTime, models.BoardWeekly, models.BoardMonthly, models.BoardYearly:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBoard, name)
}

// PeriodKey is the current period of board in the reference zone.
func (s *LeaderboardService) PeriodKey(board models.Board) (string, error) {
	now := s.clock.Now()
	keys := progression.KeysFor(now, now.Location())
	switch board {
	case models.BoardAllTime, models.BoardClub:
		return models.AllTimePeriod, nil
	case models.BoardWeekly:
		return keys.Week, nil
	case models.BoardMonthly:
		return keys.Month, nil
	case models.BoardYearly:
		return keys.Year, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBoard, board)
}

func (s *LeaderboardService) boardQuery(ctx context.Context, board models.Board, clubID uint) (*gorm.DB, error) {
	period, err := s.PeriodKey(board)
	if err != nil {
		return nil, err
	}
	return s.db.WithContext(ctx).
		Model(&models.LeaderboardEntry{}).
		Where("leaderboard_entries.board = ? AND leaderboard_entries.period_key = ? AND leaderboard_entries.club_id = ?", board, period, clubID), nil
}

func ordered(q *gorm.DB) *gorm.DB {
	return q.Order("leaderboard_entries.points DESC").
		Order("leaderboard_entries.updated_at ASC").
		Order("leaderboard_entries.user_id ASC")
}

func toRows(entries []models.LeaderboardEntry, offset int) []LeaderboardRow {
	return lo.Map(entries, func(e models.LeaderboardEntry, i int) LeaderboardRow {
		return LeaderboardRow{
			Position:    offset + i + 1,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Points:      e.Points,
			Prestige:    e.Prestige,
			Rank:        e.Rank,
		}
	})
}

// Global returns one page of a board across all users.
func (s *LeaderboardService) Global(ctx context.Context, board models.Board, limit, offset int) ([]LeaderboardRow, error) {
	q, err := s.boardQuery(ctx, board, 0)
	if err != nil {
		return nil, err
	}
	var entries []models.LeaderboardEntry
	if err := ordered(q).Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, err
	}
	return toRows(entries, offset), nil
}

// Friends ranks the user among their friends.
func (s *LeaderboardService) Friends(ctx context.Context, userID uint, board models.Board, limit int) ([]LeaderboardRow, error) {
	friendIDs, err := s.clubs.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := lo.Uniq(append(friendIDs, userID))

	q, err := s.boardQuery(ctx, board, 0)
	if err != nil {
		return nil, err
	}
	var entries []models.LeaderboardEntry
	if err := ordered(q.Where("leaderboard_entries.user_id IN ?", ids)).Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return toRows(entries, 0), nil
}

// Club ranks the active members of a club by all-time points.
func (s *LeaderboardService) Club(ctx context.Context, clubID uint, limit, offset int) ([]LeaderboardRow, error) {
	if _, err := s.clubs.GetClubByID(ctx, clubID); err != nil {
		return nil, err
	}
	q, err := s.boardQuery(ctx, models.BoardClub, clubID)
	if err != nil {
		return nil, err
	}
	q = q.Joins("JOIN club_members ON club_members.club_id = leaderboard_entries.club_id AND club_members.user_id = leaderboard_entries.user_id").
		Where("club_members.is_active = ?", true)

	var entries []models.LeaderboardEntry
	if err := ordered(q).Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, err
	}
	return toRows(entries, offset), nil
}

// UserRank returns the user's own row on a board with its position.
func (s *LeaderboardService) UserRank(ctx context.Context, userID uint, board models.Board) (*LeaderboardRow, error) {
	q, err := s.boardQuery(ctx, board, 0)
	if err != nil {
		return nil, err
	}
	var entry models.LeaderboardEntry
	err = q.Session(&gorm.Session{}).Where("leaderboard_entries.user_id = ?", userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotRanked
	}
	if err != nil {
		return nil, err
	}

	// Same ordering as the list: more points first, ties go to whoever
	// got there earlier.
	var ahead int64
	err = q.Session(&gorm.Session{}).
		Where("leaderboard_entries.points > ? OR (leaderboard_entries.points = ? AND (leaderboard_entries.updated_at < ? OR (leaderboard_entries.updated_at = ? AND leaderboard_entries.user_id < ?)))",
			entry.Points, entry.Points, entry.UpdatedAt, entry.UpdatedAt, entry.UserID).
		Count(&ahead).Error
	if err != nil {
		return nil, err
	}

	row := toRows([]models.LeaderboardEntry{entry}, int(ahead))[0]
	return &row, nil
}
