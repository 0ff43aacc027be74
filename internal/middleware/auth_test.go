package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func mustSign(t *testing.T, userID uint, admin bool, ttl time.Duration) string {
	t.Helper()
	tok, err := SignToken(testSecret, userID, admin, ttl)
	require.NoError(t, err)
	return tok
}

func TestAuthRequired(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	app := fiber.New()
	app.Get("/test", auth.Required(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals(LocalUserID), "isAdmin": c.Locals(LocalIsAdmin)})
	})

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
		expectedAdmin  bool
	}{
		{"Happy Path", "Bearer " + mustSign(t, 123, false, time.Hour), http.StatusOK, 123, false},
		{"Admin Claim", "Bearer " + mustSign(t, 7, true, time.Hour), http.StatusOK, 7, true},
		{"Missing Header", "", http.StatusUnauthorized, 0, false},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0, false},
		{"Malformed Token", "Bearer malformed.token.here", http.StatusUnauthorized, 0, false},
		{"Expired Token", "Bearer " + mustSign(t, 123, false, -time.Hour), http.StatusUnauthorized, 0, false},
		{"Missing Subject", "Bearer " + noneToken, http.StatusUnauthorized, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(tt.expectedUserID), body["userID"])
				assert.Equal(t, tt.expectedAdmin, body["isAdmin"])
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	app := fiber.New()
	app.Get("/feed", auth.Optional(), func(c *fiber.Ctx) error {
		uid, _ := c.Locals(LocalUserID).(uint)
		return c.JSON(fiber.Map{"userID": uid})
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRequired(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	app := fiber.New()
	app.Get("/admin", auth.Required(), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, tc := range []struct {
		admin  bool
		status int
	}{{false, http.StatusForbidden}, {true, http.StatusNoContent}} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+mustSign(t, 1, tc.admin, time.Hour))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode)
	}
}
