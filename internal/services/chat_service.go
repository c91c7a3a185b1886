package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/db"
	"github.com/arzan03/CampusKart/internal/models"
)

type ChatService struct {
	chats    ChatRepository
	products ProductRepository
	users    UserRepository
}

func NewChatService(chats ChatRepository, products ProductRepository, users UserRepository) *ChatService {
	return &ChatService{chats: chats, products: products, users: users}
}

// GetOrCreate returns the chat between userID and sellerID about the product,
// creating it with userID as buyer when none exists.
func (s *ChatService) GetOrCreate(ctx context.Context, userID primitive.ObjectID, productID, sellerID string) (*models.ChatView, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, &ValidationError{
			Message: "Seller ID is required",
			Fields:  map[string]string{"sellerId": "Seller ID is required"},
		}
	}
	pid, err := ParseID(productID)
	if err != nil {
		return nil, err
	}
	sid, err := ParseID(sellerID)
	if err != nil {
		return nil, err
	}
	if sid == userID {
		return nil, ErrSelfChat
	}

	if _, err := s.products.FindByID(ctx, pid); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	chat, err := s.chats.FindBetween(ctx, pid, userID, sid)
	switch {
	case errors.Is(err, db.ErrNotFound):
		chat = &models.Chat{Buyer: userID, Seller: sid, Product: pid}
		if err := s.chats.Insert(ctx, chat); err != nil {
			return nil, fmt.Errorf("create chat: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("find chat: %w", err)
	}

	views, err := s.populate(ctx, []models.Chat{*chat})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListForUser returns the user's chats, most recent activity first.
func (s *ChatService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.ChatView, error) {
	chats, err := s.chats.FindForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, chats)
}

func (s *ChatService) Get(ctx context.Context, userID primitive.ObjectID, chatID string) (*models.ChatView, error) {
	chat, err := s.participantChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	views, err := s.populate(ctx, []models.Chat{*chat})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// SendMessage appends a message from userID and returns the updated chat.
func (s *ChatService) SendMessage(ctx context.Context, userID primitive.ObjectID, chatID, content string) (*models.ChatView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{
			Message: "Message content is required",
			Fields:  map[string]string{"content": "Message content is required"},
		}
	}

	chat, err := s.participantChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	updated, err := s.chats.PushMessage(ctx, chat.ID, models.Message{
		Sender:    userID,
		Content:   content,
		Timestamp: time.Now(),
	})
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("push message: %w", err)
	}

	views, err := s.populate(ctx, []models.Chat{*updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// IsParticipant reports whether userID is the buyer or seller of chatID.
func (s *ChatService) IsParticipant(ctx context.Context, userID primitive.ObjectID, chatID string) (bool, error) {
	_, err := s.participantChat(ctx, userID, chatID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrForbidden):
		return false, nil
	default:
		return false, err
	}
}

func (s *ChatService) participantChat(ctx context.Context, userID primitive.ObjectID, chatID string) (*models.Chat, error) {
	id, err := ParseID(chatID)
	if err != nil {
		return nil, err
	}
	chat, err := s.chats.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if !chat.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	return chat, nil
}

// populate resolves participants, senders and products in two batched lookups.
func (s *ChatService) populate(ctx context.Context, chats []models.Chat) ([]models.ChatView, error) {
	var userIDs, productIDs []primitive.ObjectID
	seenUser := map[primitive.ObjectID]bool{}
	seenProduct := map[primitive.ObjectID]bool{}
	addUser := func(id primitive.ObjectID) {
		if !seenUser[id] {
			seenUser[id] = true
			userIDs = append(userIDs, id)
		}
	}
	for _, c := range chats {
		addUser(c.Buyer)
		addUser(c.Seller)
		for _, m := range c.Messages {
			addUser(m.Sender)
		}
		if !seenProduct[c.Product] {
			seenProduct[c.Product] = true
			productIDs = append(productIDs, c.Product)
		}
	}

	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	views := make([]models.ChatView, len(chats))
	for i, c := range chats {
		views[i] = models.NewChatView(c, users, products[c.Product])
	}
	return views, nil
}
