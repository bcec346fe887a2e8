// handlers/handlers.go - HTTP handlers and route table
package handlers

import (
	"discjourney/middleware"
	"discjourney/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds what the HTTP layer needs from the rest of the server.
type Handler struct {
	db           *gorm.DB
	auth         *middleware.Auth
	progress     *services.ProgressService
	leaderboards *services.LeaderboardService
	clubs        *services.ClubService
	hub          *services.EventHub
	log          *zap.Logger
}

type Deps struct {
	DB           *gorm.DB
	Auth         *middleware.Auth
	Progress     *services.ProgressService
	Leaderboards *services.LeaderboardService
	Clubs        *services.ClubService
	Hub          *services.EventHub
	Log          *zap.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		db:           d.DB,
		auth:         d.Auth,
		progress:     d.Progress,
		leaderboards: d.Leaderboards,
		clubs:        d.Clubs,
		hub:          d.Hub,
		log:          log,
	}
}

// Routes mounts the API under app. authLimit guards the credential
// endpoints and may be nil.
func (h *Handler) Routes(app *fiber.App, authLimit fiber.Handler) {
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	if authLimit != nil {
		authGroup.Use(authLimit)
	}
	authGroup.Post("/guest", h.GuestLogin)
	authGroup.Post("/login", h.Login)
	authGroup.Post("/register", h.Register)
	authGroup.Post("/upgrade", h.auth.Required, h.UpgradeGuest)

	userGroup := api.Group("/users", h.auth.Required)
	userGroup.Get("/me", h.GetCurrentUser)
	userGroup.Put("/me", h.UpdateCurrentUser)

	achievementGroup := api.Group("/achievements", h.auth.Required)
	achievementGroup.Get("/", h.GetAchievements)
	achievementGroup.Post("/:tab/:id/toggle", h.ToggleAchievement)
	achievementGroup.Post("/:tab/:id/increment", h.IncrementAchievement)

	api.Get("/progression", h.auth.Required, h.GetProgression)

	leaderboardGroup := api.Group("/leaderboard", h.auth.Required)
	leaderboardGroup.Get("/", h.GetLeaderboard)
	leaderboardGroup.Get("/me", h.GetMyRank)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", h.auth.WebSocket, websocket.New(h.EventFeed))
}
