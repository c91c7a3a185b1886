package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/middleware"
	"github.com/arzan03/CampusKart/internal/socket"
)

type SocketHandler struct {
	hub   *socket.Hub
	chats socket.Authorizer
}

func NewSocketHandler(hub *socket.Hub, chats socket.Authorizer) *SocketHandler {
	return &SocketHandler{hub: hub, chats: chats}
}

// RequireUpgrade rejects plain HTTP requests to the socket endpoint.
func (h *SocketHandler) RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Serve upgrades the connection. It must run after middleware.Protected.
func (h *SocketHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals(middleware.LocalUserID).(primitive.ObjectID)
		if !ok {
			_ = conn.Close()
			return
		}
		socket.NewClient(h.hub, conn, userID, h.chats).Run()
	})
}
