package middleware

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/services"
)

const (
	LocalUserID   = "user_id"
	localUsername = "username"
	localUserType = "user_type"
)

// TokenParser is implemented by *services.TokenService.
type TokenParser interface {
	Parse(token string) (*services.Claims, error)
}

// Protected validates the bearer token and stores the caller in Locals.
func Protected(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := BearerToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}
		id, err := primitive.ObjectIDFromHex(claims.ID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
		}

		c.Locals(LocalUserID, id)
		c.Locals(localUsername, claims.Username)
		c.Locals(localUserType, claims.UserType)
		return c.Next()
	}
}

// BearerToken reads "Authorization: Bearer <token>". Only WebSocket
// upgrades may pass the token as the token query parameter instead.
func BearerToken(c *fiber.Ctx) string {
	if header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if websocket.IsWebSocketUpgrade(c) {
		return c.Query("token")
	}
	return ""
}

// UserID returns the caller set by Protected, or NilObjectID.
func UserID(c *fiber.Ctx) primitive.ObjectID {
	id, _ := c.Locals(LocalUserID).(primitive.ObjectID)
	return id
}

func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(localUsername).(string)
	return name
}

func UserType(c *fiber.Ctx) string {
	t, _ := c.Locals(localUserType).(string)
	return t
}
