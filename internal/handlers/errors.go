package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/CampusKart/internal/logging"
	"github.com/arzan03/CampusKart/internal/services"
)

const internalErrorMessage = "Something went wrong!"

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type httpError struct {
	status  int
	message string
}

// domainErrors maps service errors to responses. Anything not listed is a 500.
var domainErrors = []struct {
	err error
	httpError
}{
	{services.ErrInvalidCredentials, httpError{fiber.StatusUnauthorized, "Invalid credentials"}},
	{services.ErrInvalidToken, httpError{fiber.StatusUnauthorized, "Invalid token"}},
	{services.ErrForbidden, httpError{fiber.StatusForbidden, "Not authorized"}},
	{services.ErrUserNotFound, httpError{fiber.StatusNotFound, "User not found"}},
	{services.ErrProductNotFound, httpError{fiber.StatusNotFound, "Product not found"}},
	{services.ErrChatNotFound, httpError{fiber.StatusNotFound, "Chat not found"}},
	{services.ErrCategoryNotFound, httpError{fiber.StatusNotFound, "Category not found"}},
	{services.ErrSelfChat, httpError{fiber.StatusBadRequest, "Cannot create a chat with yourself"}},
	{services.ErrInvalidID, httpError{fiber.StatusBadRequest, "Invalid id"}},
	{services.ErrEmptyQuery, httpError{fiber.StatusBadRequest, "Search query is required"}},
	{services.ErrInvalidImage, httpError{fiber.StatusBadRequest, "Only image files are allowed!"}},
	{services.ErrImageTooLarge, httpError{fiber.StatusBadRequest, "Image is too large"}},
	{services.ErrTooManyImages, httpError{fiber.StatusBadRequest, "Too many images"}},
	{services.ErrNoPicture, httpError{fiber.StatusBadRequest, "No profile picture provided"}},
	{services.ErrForeignPicture, httpError{fiber.StatusBadRequest, "Invalid profile picture URL"}},
}

// respondError writes the response for a known domain error and hands
// everything else to the app ErrorHandler.
func respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Message: verr.Message, Errors: verr.Fields})
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return c.Status(d.status).JSON(errorResponse{Message: d.message})
		}
	}
	return err
}

// ErrorHandler is the catch-all: fiber errors keep their status, anything
// else is logged and answered with a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(errorResponse{Message: ferr.Message})
	}

	logging.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Message: internalErrorMessage})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Message: message})
}
