package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadTokenRoundTrip(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	sign := GenerateDownloadToken("s3cret")

	token, err := sign("42", "dana@example.com", expires)
	require.NoError(t, err)

	claims, err := ParseDownloadToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.OrderID)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.True(t, claims.ExpiresAt.Time.Equal(expires))

	_, err = ParseDownloadToken("other", token)
	assert.Error(t, err)
}

func TestExpiredDownloadTokenIsRejected(t *testing.T) {
	token, err := GenerateDownloadToken("s3cret")("42", "a@b.co", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = ParseDownloadToken("s3cret", token)
	assert.Error(t, err)
}

func sessionApp() *fiber.App {
	app := fiber.New()
	app.Get("/sessions/:id", Session(), func(c *fiber.Ctx) error {
		return c.SendString(GetSessionID(c))
	})
	return app
}

func TestSessionMiddleware(t *testing.T) {
	app := sessionApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/sessions/session_1773480600000_abc123xyz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, id := range []string{"payment_data", "session_x_abc", "session_1_ABC"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/sessions/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, id)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(RateLimitConfig{RequestsPerMinute: 1, Burst: 2}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{204, 204, 429}, codes)
}

func TestRateLimitDisabled(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(RateLimitConfig{}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	l := newRateLimiter(RateLimitConfig{RequestsPerMinute: 60, Burst: 1, EntryTTL: time.Minute, CleanupInterval: time.Minute})
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("ip:a"))
	assert.False(t, l.allow("ip:a"))

	now = now.Add(2 * time.Minute)
	assert.True(t, l.allow("ip:b"))
	assert.NotContains(t, l.entries, "ip:a")
}
