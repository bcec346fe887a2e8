// handlers/achievements.go
package handlers

import (
	"time"

	"discjourney/middleware"
	"discjourney/progression"
	"discjourney/services"
	"discjourney/utils"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

type IncrementRequest struct {
	Delta *int `json:"delta"`
}

// achievementState is the JSON shape of one evaluated achievement.
type achievementState struct {
	ID            string           `json:"id"`
	Kind          progression.Kind `json:"kind"`
	Target        int              `json:"target,omitempty"`
	Progress      int              `json:"progress"`
	IsCompleted   bool             `json:"is_completed"`
	CompletedDate *time.Time       `json:"completed_date,omitempty"`
	CompletedYear *int             `json:"completed_year,omitempty"`
}

// rejectionStatus maps a rejected mutation to an HTTP status. A mutation
// that changes nothing is not an error.
func rejectionStatus(r progression.Reason) int {
	switch r {
	case progression.ReasonUnknown:
		return fiber.StatusNotFound
	case progression.ReasonWrongTab, progression.ReasonWrongKind, progression.ReasonNoTarget:
		return fiber.StatusBadRequest
	case progression.ReasonDisabled, progression.ReasonLocked:
		return fiber.StatusConflict
	}
	return fiber.StatusOK
}

// GetAchievements returns the caller's achievements screen.
func (h *Handler) GetAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	view, err := h.progress.View(c.UserContext(), userID)
	if err != nil {
		h.log.Error("failed to build achievement view", zap.Uint("user_id", userID), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return utils.JSONSuccess(c, fiber.Map{
		"achievements": view.Achievements,
		"categories":   view.Categories,
		"summary":      view.Summary,
	})
}

// ToggleAchievement flips a toggle achievement.
// POST /api/achievements/:tab/:id/toggle
func (h *Handler) ToggleAchievement(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	tab := progression.Tab(fiberutils.CopyString(c.Params("tab")))
	if !tab.Valid() {
		return utils.JSONError(c, 400, "Unknown tab")
	}
	out, err := h.progress.Toggle(c.UserContext(), userID, tab, fiberutils.CopyString(c.Params("id")))
	return h.mutationResponse(c, userID, out, err)
}

// IncrementAchievement adds delta to a counter achievement.
// POST /api/achievements/:tab/:id/increment {"delta": n}
func (h *Handler) IncrementAchievement(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	tab := progression.Tab(fiberutils.CopyString(c.Params("tab")))
	if !tab.Valid() {
		return utils.JSONError(c, 400, "Unknown tab")
	}

	var req IncrementRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, 400, "Invalid request body")
	}
	if req.Delta == nil {
		return utils.JSONError(c, 400, "delta is required")
	}

	out, err := h.progress.Increment(c.UserContext(), userID, tab, fiberutils.CopyString(c.Params("id")), *req.Delta)
	return h.mutationResponse(c, userID, out, err)
}

func (h *Handler) mutationResponse(c *fiber.Ctx, userID uint, out *services.MutationOutcome, err error) error {
	if err != nil {
		h.log.Error("mutation failed", zap.Uint("user_id", userID), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	res := out.Result
	if !res.Applied {
		status := rejectionStatus(res.Reason)
		if status != fiber.StatusOK {
			return c.Status(status).JSON(fiber.Map{
				"success": false,
				"applied": false,
				"reason":  res.Reason,
				"error":   "Achievement cannot be updated: " + string(res.Reason),
			})
		}
	}

	newlyUnlocked := res.NewlyUnlocked
	if newlyUnlocked == nil {
		newlyUnlocked = []string{}
	}
	body := fiber.Map{
		"applied":        res.Applied,
		"reason":         res.Reason,
		"newly_unlocked": newlyUnlocked,
		"tier_up":        res.TierUp,
		"summary":        out.Summary,
	}
	if res.Applied {
		e := res.Achievement
		body["achievement"] = achievementState{
			ID:            e.ID,
			Kind:          e.Kind,
			Target:        e.Target,
			Progress:      e.Progress,
			IsCompleted:   e.IsCompleted,
			CompletedDate: e.CompletedDate,
			CompletedYear: e.CompletedYear,
		}
	}
	return utils.JSONSuccess(c, body)
}

// GetProgression returns totals, rank, mastery and completion.
func (h *Handler) GetProgression(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	summary, err := h.progress.Summary(c.UserContext(), userID)
	if err != nil {
		h.log.Error("failed to summarize progression", zap.Uint("user_id", userID), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return utils.JSONSuccess(c, fiber.Map{"progression": summary})
}
