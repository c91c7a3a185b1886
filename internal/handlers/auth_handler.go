package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/CampusKart/internal/middleware"
	"github.com/arzan03/CampusKart/internal/services"
)

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request services.RegisterInput
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, token, err := h.auth.Register(c.UserContext(), request)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}
	identifier := request.Username
	if identifier == "" {
		identifier = request.Email
	}

	user, token, err := h.auth.Login(c.UserContext(), identifier, request.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user, "token": token})
}

// Verify returns the caller. A token for a deleted user is a 401.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	user, err := h.auth.Verify(c.UserContext(), middleware.UserID(c).Hex())
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Message: "User not found"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// Me returns the caller. Unlike Verify, a deleted user is a 404.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.Verify(c.UserContext(), middleware.UserID(c).Hex())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}
