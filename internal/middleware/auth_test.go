package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/config"
	"tasktracker/pkg/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("GO_ENV", "test")
	logger.InitLoggers()
	code := m.Run()
	logger.SyncLoggers()
	os.Exit(code)
}

func signToken(t *testing.T, secret []byte, userID int, role string, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     expiry.Unix(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func newGateApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userID": c.Locals("userID"),
			"role":   c.Locals("role"),
		})
	})
	app.Get("/admin", RequireAuth, RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	app := newGateApp()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer header", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong signature", "Bearer " + signToken(t, []byte("other-secret"), 1, "user", time.Now().Add(time.Hour))},
		{"expired", "Bearer " + signToken(t, config.SecretKey, 1, "user", time.Now().Add(-time.Minute))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := request(t, app, "/me", tt.header)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	app := newGateApp()

	token := signToken(t, config.SecretKey, 42, "user", time.Now().Add(time.Hour))
	resp := request(t, app, "/me", "Bearer "+token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireAdminGatesByRole(t *testing.T) {
	app := newGateApp()

	userToken := signToken(t, config.SecretKey, 1, "user", time.Now().Add(time.Hour))
	resp := request(t, app, "/admin", "Bearer "+userToken)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := signToken(t, config.SecretKey, 2, "admin", time.Now().Add(time.Hour))
	resp = request(t, app, "/admin", "Bearer "+adminToken)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseToken(t *testing.T) {
	token := signToken(t, config.SecretKey, 7, "admin", time.Now().Add(time.Hour))
	userID, role, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
	assert.Equal(t, "admin", role)

	_, _, err = ParseToken("not.a.jwt")
	assert.Error(t, err)
}
