package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/db"
	"github.com/arzan03/CampusKart/internal/models"
)

type chatFixture struct {
	chats    *MockChatRepository
	products *MockProductRepository
	users    *MockUserRepository
	svc      *ChatService

	buyer, seller *models.User
	product       *models.Product
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		chats:    new(MockChatRepository),
		products: new(MockProductRepository),
		users:    new(MockUserRepository),
		buyer:    &models.User{ID: primitive.NewObjectID(), Name: "Rory"},
		seller:   &models.User{ID: primitive.NewObjectID(), Name: "Amy"},
	}
	f.product = &models.Product{ID: primitive.NewObjectID(), Title: "Bike", Price: 80, Seller: f.seller.ID}
	f.svc = NewChatService(f.chats, f.products, f.users)

	f.users.On("FindByIDs", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]*models.User{
		f.buyer.ID:  f.buyer,
		f.seller.ID: f.seller,
	}, nil).Maybe()
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]*models.Product{
		f.product.ID: f.product,
	}, nil).Maybe()
	return f
}

func (f *chatFixture) chat() *models.Chat {
	return &models.Chat{ID: primitive.NewObjectID(), Buyer: f.buyer.ID, Seller: f.seller.ID, Product: f.product.ID}
}

func TestChatService_GetOrCreate(t *testing.T) {
	t.Run("reuses the existing chat", func(t *testing.T) {
		f := newChatFixture()
		existing := f.chat()
		f.products.On("FindByID", mock.Anything, f.product.ID).Return(f.product, nil)
		f.chats.On("FindBetween", mock.Anything, f.product.ID, f.buyer.ID, f.seller.ID).Return(existing, nil)

		view, err := f.svc.GetOrCreate(context.Background(), f.buyer.ID, f.product.ID.Hex(), f.seller.ID.Hex())

		require.NoError(t, err)
		assert.Equal(t, existing.ID, view.ID)
		f.chats.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("creates a chat with the caller as buyer", func(t *testing.T) {
		f := newChatFixture()
		f.products.On("FindByID", mock.Anything, f.product.ID).Return(f.product, nil)
		f.chats.On("FindBetween", mock.Anything, f.product.ID, f.buyer.ID, f.seller.ID).Return(nil, db.ErrNotFound)
		f.chats.On("Insert", mock.Anything, mock.MatchedBy(func(c *models.Chat) bool {
			return c.Buyer == f.buyer.ID && c.Seller == f.seller.ID && c.Product == f.product.ID
		})).Return(nil)

		view, err := f.svc.GetOrCreate(context.Background(), f.buyer.ID, f.product.ID.Hex(), f.seller.ID.Hex())

		require.NoError(t, err)
		assert.Equal(t, f.buyer.Participant(), view.Buyer)
		assert.Equal(t, f.product.Summary(), view.Product)
		f.chats.AssertExpectations(t)
	})

	t.Run("rejects a chat with yourself", func(t *testing.T) {
		f := newChatFixture()
		_, err := f.svc.GetOrCreate(context.Background(), f.seller.ID, f.product.ID.Hex(), f.seller.ID.Hex())
		assert.ErrorIs(t, err, ErrSelfChat)
	})

	t.Run("requires a seller id", func(t *testing.T) {
		f := newChatFixture()
		_, err := f.svc.GetOrCreate(context.Background(), f.buyer.ID, f.product.ID.Hex(), "")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "sellerId")
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newChatFixture()
		missing := primitive.NewObjectID()
		f.products.On("FindByID", mock.Anything, missing).Return(nil, db.ErrNotFound)
		_, err := f.svc.GetOrCreate(context.Background(), f.buyer.ID, missing.Hex(), f.seller.ID.Hex())
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestChatService_SendMessage(t *testing.T) {
	f := newChatFixture()
	chat := f.chat()
	missing := primitive.NewObjectID()
	f.chats.On("FindByID", mock.Anything, chat.ID).Return(chat, nil)
	f.chats.On("FindByID", mock.Anything, missing).Return(nil, db.ErrNotFound)

	withMessage := *chat
	withMessage.Messages = []models.Message{{ID: primitive.NewObjectID(), Sender: f.buyer.ID, Content: "Still available?"}}
	f.chats.On("PushMessage", mock.Anything, chat.ID, mock.MatchedBy(func(m models.Message) bool {
		return m.Sender == f.buyer.ID && m.Content == "Still available?" && !m.Timestamp.IsZero()
	})).Return(&withMessage, nil)

	view, err := f.svc.SendMessage(context.Background(), f.buyer.ID, chat.ID.Hex(), "  Still available?  ")
	require.NoError(t, err)
	require.Len(t, view.Messages, 1)
	assert.Equal(t, f.buyer.Participant(), view.Messages[0].Sender)

	_, err = f.svc.SendMessage(context.Background(), f.buyer.ID, missing.Hex(), "hello")
	assert.ErrorIs(t, err, ErrChatNotFound)

	_, err = f.svc.SendMessage(context.Background(), primitive.NewObjectID(), chat.ID.Hex(), "hello")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.SendMessage(context.Background(), f.buyer.ID, chat.ID.Hex(), "   ")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	f.chats.AssertNumberOfCalls(t, "PushMessage", 1)
}

func TestChatService_IsParticipant(t *testing.T) {
	f := newChatFixture()
	chat := f.chat()
	f.chats.On("FindByID", mock.Anything, chat.ID).Return(chat, nil)

	ok, err := f.svc.IsParticipant(context.Background(), f.seller.ID, chat.ID.Hex())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsParticipant(context.Background(), primitive.NewObjectID(), chat.ID.Hex())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.IsParticipant(context.Background(), f.seller.ID, "bad")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestChatService_ListForUser(t *testing.T) {
	f := newChatFixture()
	chats := []models.Chat{*f.chat(), *f.chat()}
	f.chats.On("FindForUser", mock.Anything, f.seller.ID).Return(chats, nil)

	views, err := f.svc.ListForUser(context.Background(), f.seller.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, chats[0].ID, views[0].ID)
	f.users.AssertNumberOfCalls(t, "FindByIDs", 1)
}
