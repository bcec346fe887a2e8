package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"discjourney/config"
	"discjourney/handlers"
	"discjourney/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		AppEnv:       env,
		CORSOrigins:  "http://localhost:3000",
		GeneralLimit: config.RateLimit{Max: 100, Window: time.Minute},
		AuthLimit:    config.RateLimit{Max: 5, Window: time.Minute},
	}
}

func errorBody(t *testing.T, env string, handlerErr error) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler(testConfig(env), zap.NewNop())})
	app.Get("/", func(c *fiber.Ctx) error { return handlerErr })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandlerHidesInternalErrorsInProduction(t *testing.T) {
	status, body := errorBody(t, config.EnvProduction, fiber.ErrInternalServerError)
	assert.Equal(t, 500, status)
	assert.Equal(t, "An error occurred. Please try again later.", body["error"])
	assert.Equal(t, false, body["success"])

	status, body = errorBody(t, config.EnvDevelopment, fiber.NewError(500, "boom"))
	assert.Equal(t, 500, status)
	assert.Equal(t, "boom", body["error"])
}

func TestErrorHandlerKeepsClientErrors(t *testing.T) {
	status, body := errorBody(t, config.EnvProduction, fiber.NewError(401, "User not authenticated"))
	assert.Equal(t, 401, status)
	assert.Equal(t, "User not authenticated", body["error"])
}

func TestHealthAndRoutes(t *testing.T) {
	cfg := testConfig(config.EnvDevelopment)
	h := handlers.New(handlers.Deps{Auth: middleware.NewAuth("0123456789abcdef0123456789abcdef", nil, nil)})
	app := newApp(cfg, h, zap.NewNop())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/achievements", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/ws/events", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
