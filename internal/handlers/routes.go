package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers groups every route handler.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Chats      *ChatHandler
	Socket     *SocketHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts the API. protected authenticates the caller.
func RegisterRoutes(app *fiber.App, h *Handlers, protected fiber.Handler) {
	api := app.Group("/api")
	api.Get("/health", h.Health.Check)

	auth := api.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Get("/verify", protected, h.Auth.Verify)
	auth.Get("/me", protected, h.Auth.Me)

	users := api.Group("/users")
	users.Get("/profile", protected, h.Users.Profile)
	users.Put("/profile", protected, h.Users.UpdateProfile)
	users.Put("/profile-picture", protected, h.Users.UpdateProfilePicture)
	users.Get("/:id", h.Users.Get)
	users.Get("/:id/products", h.Users.Products)

	// Static segments go before /:id.
	products := api.Group("/products")
	products.Get("/", h.Products.List)
	products.Get("/search", h.Products.Search)
	products.Get("/category/:category", h.Products.ByCategory)
	products.Get("/:id", h.Products.Get)
	products.Post("/", protected, h.Products.Create)
	products.Put("/:id", protected, h.Products.Update)
	products.Delete("/:id", protected, h.Products.Delete)

	categories := api.Group("/categories")
	categories.Get("/", h.Categories.List)
	categories.Get("/:slug", h.Categories.Get)

	chats := api.Group("/chats", protected)
	chats.Post("/product/:productId", h.Chats.GetOrCreate)
	chats.Get("/user", h.Chats.List)
	chats.Get("/:chatId", h.Chats.Get)
	chats.Post("/:chatId/message", h.Chats.SendMessage)

	if h.Socket != nil {
		app.Get("/ws", h.Socket.RequireUpgrade, protected, h.Socket.Serve())
	}
}
