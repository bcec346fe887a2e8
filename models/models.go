// models/models.go - Social graph models
package models

import (
	"time"
)

// Friend represents a friendship between users. Friendships are stored in
// both directions.
type Friend struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	FriendID  uint      `json:"friend_id" gorm:"not null;index"`
	Friend    *User     `json:"friend,omitempty" gorm:"foreignKey:FriendID"`
	CreatedAt time.Time `json:"created_at"`
}
