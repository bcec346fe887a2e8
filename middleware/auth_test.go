package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"discjourney/config"
	"discjourney/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func authApp(a *Auth) *fiber.App {
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		id, err := GetUserID(c)
		if err != nil {
			return err
		}
		name, _ := GetUsername(c)
		return c.JSON(fiber.Map{"id": id, "name": name, "guest": IsGuest(c)})
	}
	app.Get("/me", a.Required, whoami)
	app.Get("/ws", a.WebSocket, whoami)
	return app
}

func TestRequiredAcceptsIssuedToken(t *testing.T) {
	a := NewAuth(testSecret, nil, nil)
	token, err := a.IssueToken(models.User{ID: 7, Username: "anna", IsGuest: true})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := authApp(a).Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequiredRejects(t *testing.T) {
	a := NewAuth(testSecret, nil, nil)
	other := NewAuth("another-secret-another-secret-xx", nil, nil)
	foreign, err := other.IssueToken(models.User{ID: 7})
	require.NoError(t, err)

	expired := NewAuth(testSecret, nil, nil)
	expired.now = func() time.Time { return time.Now().Add(-2 * TokenTTL) }
	old, err := expired.IssueToken(models.User{ID: 7})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 7}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Token abc"},
		{"wrong secret", "Bearer " + foreign},
		{"expired", "Bearer " + old},
		{"no expiry", "Bearer " + none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := authApp(a).Test(req)
			require.NoError(t, err)
			assert.Equal(t, 401, resp.StatusCode)
		})
	}
}

func TestWebSocketTokenSources(t *testing.T) {
	a := NewAuth(testSecret, nil, nil)
	token, err := a.IssueToken(models.User{ID: 3, Username: "bo"})
	require.NoError(t, err)
	app := authApp(a)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Cookie", "token="+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestGetUserIDWithoutLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := GetUserID(c)
		return err
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(config.RateLimit{Max: 2, Window: time.Minute}, "slow down"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
