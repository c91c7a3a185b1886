package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/models"
	"github.com/arzan03/CampusKart/internal/services"
	"github.com/arzan03/CampusKart/internal/storage"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Verify(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Public(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in services.ProfileUpdate, picture *storage.Upload) (*models.User, error) {
	args := m.Called(ctx, id, in, picture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfilePicture(ctx context.Context, id primitive.ObjectID, upload *storage.Upload, url string) (*models.User, error) {
	args := m.Called(ctx, id, upload, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) views(args mock.Arguments) ([]models.ProductView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductView), args.Error(1)
}

func (m *MockProductService) view(args mock.Arguments) (*models.ProductView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductView), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context) ([]models.ProductView, error) {
	return m.views(m.Called(ctx))
}

func (m *MockProductService) Search(ctx context.Context, query string) ([]models.ProductView, error) {
	return m.views(m.Called(ctx, query))
}

func (m *MockProductService) ByCategory(ctx context.Context, category string) ([]models.ProductView, error) {
	return m.views(m.Called(ctx, category))
}

func (m *MockProductService) BySeller(ctx context.Context, sellerID string) ([]models.ProductView, error) {
	return m.views(m.Called(ctx, sellerID))
}

func (m *MockProductService) Get(ctx context.Context, productID string) (*models.ProductView, error) {
	return m.view(m.Called(ctx, productID))
}

func (m *MockProductService) Create(ctx context.Context, sellerID primitive.ObjectID, in services.ProductInput, uploads []storage.Upload) (*models.ProductView, error) {
	return m.view(m.Called(ctx, sellerID, in, uploads))
}

func (m *MockProductService) Update(ctx context.Context, userID primitive.ObjectID, productID string, upd services.ProductUpdate, uploads []storage.Upload) (*models.ProductView, error) {
	return m.view(m.Called(ctx, userID, productID, upd, uploads))
}

func (m *MockProductService) Delete(ctx context.Context, userID primitive.ObjectID, userType, productID string) error {
	args := m.Called(ctx, userID, userType, productID)
	return args.Error(0)
}

func (m *MockProductService) Categories(ctx context.Context) ([]models.CategorySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategorySummary), args.Error(1)
}

func (m *MockProductService) Category(ctx context.Context, slug string) (models.Category, []models.ProductView, error) {
	args := m.Called(ctx, slug)
	var products []models.ProductView
	if args.Get(1) != nil {
		products = args.Get(1).([]models.ProductView)
	}
	return args.Get(0).(models.Category), products, args.Error(2)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) view(args mock.Arguments) (*models.ChatView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatView), args.Error(1)
}

func (m *MockChatService) GetOrCreate(ctx context.Context, userID primitive.ObjectID, productID, sellerID string) (*models.ChatView, error) {
	return m.view(m.Called(ctx, userID, productID, sellerID))
}

func (m *MockChatService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChatView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatView), args.Error(1)
}

func (m *MockChatService) Get(ctx context.Context, userID primitive.ObjectID, chatID string) (*models.ChatView, error) {
	return m.view(m.Called(ctx, userID, chatID))
}

func (m *MockChatService) SendMessage(ctx context.Context, userID primitive.ObjectID, chatID, content string) (*models.ChatView, error) {
	return m.view(m.Called(ctx, userID, chatID, content))
}

func (m *MockChatService) IsParticipant(ctx context.Context, userID primitive.ObjectID, chatID string) (bool, error) {
	args := m.Called(ctx, userID, chatID)
	return args.Bool(0), args.Error(1)
}
