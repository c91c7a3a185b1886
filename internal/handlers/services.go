package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/models"
	"github.com/arzan03/CampusKart/internal/services"
	"github.com/arzan03/CampusKart/internal/storage"
)

// AuthService is implemented by *services.AuthService.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, identifier, password string) (*models.User, string, error)
	Verify(ctx context.Context, userID string) (*models.User, error)
}

// UserService is implemented by *services.UserService.
type UserService interface {
	Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Public(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in services.ProfileUpdate, picture *storage.Upload) (*models.User, error)
	UpdateProfilePicture(ctx context.Context, id primitive.ObjectID, upload *storage.Upload, url string) (*models.User, error)
}

// ProductService is implemented by *services.ProductService.
type ProductService interface {
	List(ctx context.Context) ([]models.ProductView, error)
	Search(ctx context.Context, query string) ([]models.ProductView, error)
	ByCategory(ctx context.Context, category string) ([]models.ProductView, error)
	BySeller(ctx context.Context, sellerID string) ([]models.ProductView, error)
	Get(ctx context.Context, productID string) (*models.ProductView, error)
	Create(ctx context.Context, sellerID primitive.ObjectID, in services.ProductInput, uploads []storage.Upload) (*models.ProductView, error)
	Update(ctx context.Context, userID primitive.ObjectID, productID string, upd services.ProductUpdate, uploads []storage.Upload) (*models.ProductView, error)
	Delete(ctx context.Context, userID primitive.ObjectID, userType, productID string) error
	Categories(ctx context.Context) ([]models.CategorySummary, error)
	Category(ctx context.Context, slug string) (models.Category, []models.ProductView, error)
}

// ChatService is implemented by *services.ChatService.
type ChatService interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID, productID, sellerID string) (*models.ChatView, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChatView, error)
	Get(ctx context.Context, userID primitive.ObjectID, chatID string) (*models.ChatView, error)
	SendMessage(ctx context.Context, userID primitive.ObjectID, chatID, content string) (*models.ChatView, error)
	IsParticipant(ctx context.Context, userID primitive.ObjectID, chatID string) (bool, error)
}
