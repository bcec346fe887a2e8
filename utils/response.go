// utils/response.go - JSON response helpers for fiber handlers
package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// JSONError sends {"success": false, "error": message} with status.
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// JSONSuccess sends a success envelope. Maps are merged into the envelope,
// anything else is placed under "data".
func JSONSuccess(c *fiber.Ctx, data interface{}) error {
	response := fiber.Map{
		"success": true,
	}

	switch v := data.(type) {
	case fiber.Map:
		for k, val := range v {
			response[k] = val
		}
	case map[string]interface{}:
		for k, val := range v {
			response[k] = val
		}
	case nil:
	default:
		response["data"] = data
	}

	return c.JSON(response)
}

// QueryInt reads an integer query parameter clamped to [min, max].
func QueryInt(c *fiber.Ctx, key string, defaultValue, min, max int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
