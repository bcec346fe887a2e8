// models/leaderboard.go
package models

import "time"

type Board string

const (
	BoardAllTime Board = "all_time"
	BoardWeekly  Board = "weekly"
	BoardMonthly Board = "monthly"
	BoardYearly  Board = "yearly"
	BoardClub    Board = "club"
)

// AllTimePeriod is the period key of boards that never roll over.
const AllTimePeriod = "all"

// LeaderboardEntry is one user's row on one board for one period. Club rows
// carry the club id; every other board uses ClubID 0.
type LeaderboardEntry struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Board       Board     `gorm:"size:20;not null;uniqueIndex:idx_leaderboard_slot,priority:1" json:"board"`
	PeriodKey   string    `gorm:"size:16;not null;uniqueIndex:idx_leaderboard_slot,priority:2" json:"period_key"`
	ClubID      uint      `gorm:"not null;default:0;uniqueIndex:idx_leaderboard_slot,priority:3" json:"club_id,omitempty"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_leaderboard_slot,priority:4;index" json:"user_id"`
	DisplayName string    `gorm:"size:100" json:"display_name"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	Prestige    int       `gorm:"not null;default:0" json:"prestige"`
	Rank        string    `gorm:"size:40" json:"rank"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}
