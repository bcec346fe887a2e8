// middleware/ratelimit.go
package middleware

import (
	"discjourney/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit limits requests per client IP using a sliding window.
func RateLimit(limit config.RateLimit, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               limit.Max,
		Expiration:        limit.Window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   message,
			})
		},
	})
}

// GeneralRateLimit guards the whole API.
func GeneralRateLimit(cfg *config.Config) fiber.Handler {
	return RateLimit(cfg.GeneralLimit, "Too many requests, please try again later")
}

// AuthRateLimit is the stricter budget for login and registration.
func AuthRateLimit(cfg *config.Config) fiber.Handler {
	return RateLimit(cfg.AuthLimit, "Too many authentication attempts, please try again later")
}
