package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/CampusKart/internal/middleware"
)

type ChatHandler struct {
	chats ChatService
}

func NewChatHandler(chats ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func (h *ChatHandler) GetOrCreate(c *fiber.Ctx) error {
	var request struct {
		SellerID string `json:"sellerId"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	chat, err := h.chats.GetOrCreate(c.UserContext(), middleware.UserID(c), c.Params("productId"), request.SellerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	chats, err := h.chats.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(chats)
}

func (h *ChatHandler) Get(c *fiber.Ctx) error {
	chat, err := h.chats.Get(c.UserContext(), middleware.UserID(c), c.Params("chatId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var request struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	chat, err := h.chats.SendMessage(c.UserContext(), middleware.UserID(c), c.Params("chatId"), request.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(chat)
}
