package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/models"
	"github.com/arzan03/CampusKart/internal/services"
)

func newProtectedApp(tokens *services.TokenService) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(), RequestLogger())
	app.Get("/me", Protected(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":        UserID(c).Hex(),
			"username":  Username(c),
			"user_type": UserType(c),
		})
	})
	return app
}

func TestProtected(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Username: "amy", UserType: models.UserTypeAdmin}
	valid, err := tokens.Generate(user)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		query      string
		upgrade    bool
		wantStatus int
		wantBody   string
	}{
		{name: "no token", wantStatus: fiber.StatusUnauthorized, wantBody: "No token provided"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: fiber.StatusUnauthorized, wantBody: "No token provided"},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantStatus: fiber.StatusUnauthorized, wantBody: "Invalid token"},
		{name: "valid header", header: "Bearer " + valid, wantStatus: fiber.StatusOK, wantBody: user.ID.Hex()},
		{name: "query token on plain request", query: "?token=" + valid, wantStatus: fiber.StatusUnauthorized, wantBody: "No token provided"},
		{name: "query token on websocket upgrade", query: "?token=" + valid, upgrade: true, wantStatus: fiber.StatusOK, wantBody: "amy"},
	}

	app := newProtectedApp(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.wantBody)
		})
	}
}

func TestProtectedSetsCaller(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Username: "amy", UserType: models.UserTypeDeveloper}
	token, err := tokens.Generate(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp, err := newProtectedApp(tokens).Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, user.ID.Hex(), got["id"])
	assert.Equal(t, "amy", got["username"])
	assert.Equal(t, models.UserTypeDeveloper, got["user_type"])
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
