package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/CampusKart/internal/middleware"
	"github.com/arzan03/CampusKart/internal/services"
)

type UserHandler struct {
	users    UserService
	products ProductService
}

func NewUserHandler(users UserService, products ProductService) *UserHandler {
	return &UserHandler{users: users, products: products}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	user, err := h.users.Profile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile accepts JSON or a multipart form with an optional
// profile_picture file.
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var request services.ProfileUpdate
	if isMultipart(c) {
		request = services.ProfileUpdate{
			Name:  c.FormValue("name"),
			Email: c.FormValue("email"),
			Phone: c.FormValue("phone"),
			Bio:   c.FormValue("bio"),
		}
	} else if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	picture, closeFiles, err := formUpload(c, "profile_picture")
	if err != nil {
		return err
	}
	defer closeFiles()

	user, err := h.users.UpdateProfile(c.UserContext(), middleware.UserID(c), request, picture)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}

func (h *UserHandler) UpdateProfilePicture(c *fiber.Ctx) error {
	picture, closeFiles, err := formUpload(c, "profile_picture")
	if err != nil {
		return err
	}
	defer closeFiles()

	var url string
	if picture == nil {
		if isMultipart(c) {
			url = c.FormValue("profile_picture_url")
		} else {
			var request struct {
				ProfilePictureURL string `json:"profile_picture_url"`
			}
			if len(c.Body()) > 0 {
				if err := c.BodyParser(&request); err != nil {
					return badRequest(c, "Invalid request body")
				}
			}
			url = request.ProfilePictureURL
		}
	}

	user, err := h.users.UpdateProfilePicture(c.UserContext(), middleware.UserID(c), picture, url)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile picture updated successfully", "user": user})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Public(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Products(c *fiber.Ctx) error {
	products, err := h.products.BySeller(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}
