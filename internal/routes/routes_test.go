package routes

import (
	"net/http/httptest"
	"testing"

	"github.com/arnold/blueprint-api/internal/config"
	"github.com/arnold/blueprint-api/internal/handlers"
	"github.com/arnold/blueprint-api/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteTable(t *testing.T) {
	handlers.Init(&config.Config{AppURL: "http://localhost:8080"}, storage.NewMemoryStore(0))
	t.Cleanup(handlers.Sessions.CloseAll)

	app := fiber.New()
	Setup(app)

	cases := []struct {
		method, path string
		status       int
	}{
		{"GET", "/health", fiber.StatusOK},
		{"GET", "/metrics", fiber.StatusOK},
		{"GET", "/api/verify-payment", fiber.StatusMethodNotAllowed},
		{"PUT", "/api/send-email", fiber.StatusMethodNotAllowed},
		{"GET", "/api/lemon-webhook", fiber.StatusMethodNotAllowed},
		{"POST", "/api/lemon-webhook", fiber.StatusInternalServerError},
		{"POST", "/api/sessions", fiber.StatusCreated},
		{"GET", "/api/sessions/not-a-session", fiber.StatusBadRequest},
		{"GET", "/api/sessions/session_1_abc/export/pdf", fiber.StatusNotFound},
		{"GET", "/api/sessions/session_1_abc/snapshot/export/pdf", fiber.StatusNotFound},
		{"GET", "/ws/sessions/session_1_abc", fiber.StatusUpgradeRequired},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}
