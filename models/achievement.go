// models/achievement.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// AchievementDocument is one user's whole achievement state, stored as a
// single versioned JSON document. The progression package owns its schema.
type AchievementDocument struct {
	UserID    uint           `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Version   int            `gorm:"not null;default:2" json:"version"`
	Document  datatypes.JSON `gorm:"not null" json:"document"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (AchievementDocument) TableName() string {
	return "achievement_documents"
}
