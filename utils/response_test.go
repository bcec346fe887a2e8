package utils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, handler fiber.Handler, target string) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestJSONError(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return JSONError(c, fiber.StatusBadRequest, "nope")
	}, "/")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "nope", body["error"])
}

func TestJSONSuccessMergesMaps(t *testing.T) {
	_, body := call(t, func(c *fiber.Ctx) error {
		return JSONSuccess(c, fiber.Map{"count": 3})
	}, "/")
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 3, body["count"])

	_, body = call(t, func(c *fiber.Ctx) error {
		return JSONSuccess(c, []int{1, 2})
	}, "/")
	assert.Len(t, body["data"], 2)
}

func TestQueryInt(t *testing.T) {
	cases := map[string]int{
		"/":           25,
		"/?limit=10":  10,
		"/?limit=0":   1,
		"/?limit=900": 100,
		"/?limit=abc": 25,
	}
	for target, want := range cases {
		_, body := call(t, func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"limit": QueryInt(c, "limit", 25, 1, 100)})
		}, target)
		assert.EqualValues(t, want, body["limit"], target)
	}
}
