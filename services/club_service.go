// services/club_service.go - Club and friend reads
package services

import (
	"context"
	"errors"

	"discjourney/models"

	"gorm.io/gorm"
)

var ErrClubNotFound = errors.New("club not found")

// ClubService reads the social graph. Clubs, memberships and friendships
// are written by other parts of the platform.
type ClubService struct {
	db *gorm.DB
}

func NewClubService(db *gorm.DB) *ClubService {
	return &ClubService{db: db}
}

// GetClubByID retrieves an active club
func (s *ClubService) GetClubByID(ctx context.Context, clubID uint) (*models.Club, error) {
	var club models.Club
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", clubID, true).
		First(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClubNotFound
	}
	if err != nil {
		return nil, err
	}
	return &club, nil
}

// GetUserClubs gets all active clubs the user is an active member of
func (s *ClubService) GetUserClubs(ctx context.Context, userID uint) ([]models.Club, error) {
	var clubs []models.Club
	err := s.db.WithContext(ctx).
		Joins("JOIN club_members ON club_members.club_id = clubs.id").
		Where("club_members.user_id = ? AND club_members.is_active = ? AND clubs.is_active = ?", userID, true, true).
		Order("clubs.name").
		Find(&clubs).Error
	return clubs, err
}

// GetUserClubIDs is GetUserClubs reduced to ids.
func (s *ClubService) GetUserClubIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.ClubMember{}).
		Joins("JOIN clubs ON clubs.id = club_members.club_id").
		Where("club_members.user_id = ? AND club_members.is_active = ? AND clubs.is_active = ?", userID, true, true).
		Order("club_members.club_id").
		Pluck("club_members.club_id", &ids).Error
	return ids, err
}

// IsClubMember checks if user is an active member of the club
func (s *ClubService) IsClubMember(ctx context.Context, userID, clubID uint) bool {
	var count int64
	s.db.WithContext(ctx).
		Model(&models.ClubMember{}).
		Where("club_id = ? AND user_id = ? AND is_active = ?", clubID, userID, true).
		Count(&count)
	return count > 0
}

// GetFriendIDs returns the ids of the user's friends
func (s *ClubService) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.Friend{}).
		Where("user_id = ?", userID).
		Order("friend_id").
		Pluck("friend_id", &ids).Error
	return ids, err
}
