package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/CampusKart/internal/middleware"
	"github.com/arzan03/CampusKart/internal/services"
)

type ProductHandler struct {
	products ProductService
}

func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.products.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	products, err := h.products.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) ByCategory(c *fiber.Ctx) error {
	products, err := h.products.ByCategory(c.UserContext(), c.Params("category"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var request services.ProductInput
	if isMultipart(c) {
		price, err := formPrice(c)
		if err != nil {
			return respondError(c, err)
		}
		request = services.ProductInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Price:       price,
			Category:    c.FormValue("category"),
			Condition:   c.FormValue("condition"),
		}
	} else if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	uploads, closeFiles, err := formUploads(c, "images")
	if err != nil {
		return err
	}
	defer closeFiles()

	product, err := h.products.Create(c.UserContext(), middleware.UserID(c), request, uploads)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var request services.ProductUpdate
	if isMultipart(c) {
		price, err := formPrice(c)
		if err != nil {
			return respondError(c, err)
		}
		request = services.ProductUpdate{
			Title:       formString(c, "title"),
			Description: formString(c, "description"),
			Price:       price,
			Category:    formString(c, "category"),
			Condition:   formString(c, "condition"),
			Status:      formString(c, "status"),
		}
	} else if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "Invalid request body")
	}

	uploads, closeFiles, err := formUploads(c, "images")
	if err != nil {
		return err
	}
	defer closeFiles()

	product, err := h.products.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), request, uploads)
	if errors.Is(err, services.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{Message: "Not authorized to update this product"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	err := h.products.Delete(c.UserContext(), middleware.UserID(c), middleware.UserType(c), c.Params("id"))
	if errors.Is(err, services.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{Message: "Not authorized to delete this product"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// formPrice parses the price form field. A missing price is nil.
func formPrice(c *fiber.Ctx) (*float64, error) {
	raw := strings.TrimSpace(c.FormValue("price"))
	if raw == "" {
		return nil, nil
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &services.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{"price": "Price must be a number"},
		}
	}
	return &price, nil
}
