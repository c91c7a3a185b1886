package handlers

import "github.com/gofiber/fiber/v2"

type CategoryHandler struct {
	products ProductService
}

func NewCategoryHandler(products ProductService) *CategoryHandler {
	return &CategoryHandler{products: products}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.products.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	category, products, err := h.products.Category(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"category": category, "products": products})
}
