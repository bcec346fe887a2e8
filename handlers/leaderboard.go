// handlers/leaderboard.go
package handlers

import (
	"errors"
	"strconv"

	"discjourney/middleware"
	"discjourney/models"
	"discjourney/services"
	"discjourney/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	scopeGlobal  = "global"
	scopeFriends = "friends"
	scopeClub    = "club"
)

// GetLeaderboard returns one page of a leaderboard.
// GET /api/leaderboard?board=weekly&scope=global&limit=50&offset=0
// GET /api/leaderboard?scope=club&club_id=3
func (h *Handler) GetLeaderboard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	limit := utils.QueryInt(c, "limit", 50, 1, 100)
	offset := utils.QueryInt(c, "offset", 0, 0, 1<<30)
	ctx := c.UserContext()

	scope := c.Query("scope", scopeGlobal)
	var (
		rows  []services.LeaderboardRow
		board models.Board
	)
	switch scope {
	case scopeGlobal, scopeFriends:
		board, err = services.ParseBoard(c.Query("board"))
		if err != nil {
			return utils.JSONError(c, 400, err.Error())
		}
		if scope == scopeGlobal {
			rows, err = h.leaderboards.Global(ctx, board, limit, offset)
		} else {
			rows, err = h.leaderboards.Friends(ctx, userID, board, limit)
		}

	case scopeClub:
		clubID, perr := strconv.ParseUint(c.Query("club_id"), 10, 64)
		if perr != nil || clubID == 0 {
			return utils.JSONError(c, 400, "club_id is required")
		}
		if !h.clubs.IsClubMember(ctx, userID, uint(clubID)) {
			return utils.JSONError(c, 403, "Not a member of this club")
		}
		board = models.BoardClub
		rows, err = h.leaderboards.Club(ctx, uint(clubID), limit, offset)

	default:
		return utils.JSONError(c, 400, "scope must be global, friends or club")
	}

	if errors.Is(err, services.ErrClubNotFound) {
		return utils.JSONError(c, 404, "Club not found")
	}
	if err != nil {
		h.log.Error("failed to read leaderboard", zap.String("scope", scope), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	period, _ := h.leaderboards.PeriodKey(board)
	return utils.JSONSuccess(c, fiber.Map{
		"board":   board,
		"scope":   scope,
		"period":  period,
		"entries": rows,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetMyRank returns the caller's own position on a board.
// GET /api/leaderboard/me?board=monthly
func (h *Handler) GetMyRank(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	board, err := services.ParseBoard(c.Query("board"))
	if err != nil {
		return utils.JSONError(c, 400, err.Error())
	}

	row, err := h.leaderboards.UserRank(c.UserContext(), userID, board)
	if errors.Is(err, services.ErrNotRanked) {
		return utils.JSONSuccess(c, fiber.Map{"board": board, "ranked": false})
	}
	if err != nil {
		h.log.Error("failed to read rank", zap.Uint("user_id", userID), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return utils.JSONSuccess(c, fiber.Map{"board": board, "ranked": true, "entry": row})
}
