// models/club.go
package models

import "time"

type ClubRole string

const (
	ClubRoleOwner  ClubRole = "owner"
	ClubRoleAdmin  ClubRole = "admin"
	ClubRoleMember ClubRole = "member"
)

type Club struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"not null;size:100"`
	Description string       `json:"description" gorm:"type:text"`
	HomeCourse  string       `json:"home_course" gorm:"size:100"`
	ClubCode    string       `json:"club_code" gorm:"unique;size:10"`
	IsActive    bool         `json:"is_active" gorm:"default:true;index"`
	CreatorID   uint         `json:"creator_id" gorm:"not null"`
	Members     []ClubMember `json:"members,omitempty" gorm:"foreignKey:ClubID"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Club) TableName() string {
	return "clubs"
}

type ClubMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	ClubID   uint      `json:"club_id" gorm:"not null;index"`
	Club     *Club     `json:"club,omitempty" gorm:"foreignKey:ClubID"`
	UserID   uint      `json:"user_id" gorm:"not null;index"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role     ClubRole  `json:"role" gorm:"not null;default:'member'"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null"`
	IsActive bool      `json:"is_active" gorm:"default:true;index"`
}

func (ClubMember) TableName() string {
	return "club_members"
}
