// handlers/users.go
package handlers

import (
	"strings"

	"discjourney/middleware"
	"discjourney/models"
	"discjourney/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxProfileFieldLength = 64

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	HomeCourse  *string `json:"home_course"`
	PDGANumber  *string `json:"pdga_number"`
}

// GetCurrentUser returns the caller's profile.
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	var user models.User
	if err := h.db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
		return utils.JSONError(c, 404, "User not found")
	}
	return utils.JSONSuccess(c, fiber.Map{"user": userInfo(user)})
}

// UpdateCurrentUser edits the profile fields. A new display name is copied
// onto the caller's existing leaderboard rows right away.
func (h *Handler) UpdateCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{
		"display_name": req.DisplayName,
		"home_course":  req.HomeCourse,
		"pdga_number":  req.PDGANumber,
	} {
		if value == nil {
			continue
		}
		v := strings.TrimSpace(*value)
		if len(v) > maxProfileFieldLength {
			return utils.JSONError(c, 400, column+" is too long")
		}
		updates[column] = v
	}

	db := h.db.WithContext(c.UserContext())
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return utils.JSONError(c, 404, "User not found")
	}
	if len(updates) == 0 {
		return utils.JSONSuccess(c, fiber.Map{"user": userInfo(user)})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}
		return tx.Model(&models.LeaderboardEntry{}).
			Where("user_id = ?", userID).
			Update("display_name", user.PublicName()).Error
	})
	if err != nil {
		h.log.Error("failed to update profile", zap.Uint("user_id", userID), zap.Error(err))
		return utils.JSONError(c, 500, "Failed to update profile")
	}
	return utils.JSONSuccess(c, fiber.Map{"user": userInfo(user)})
}
