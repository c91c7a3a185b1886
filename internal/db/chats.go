package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arzan03/CampusKart/internal/models"
)

// ChatRepository stores buyer/seller conversations in the "chats" collection.
type ChatRepository struct {
	coll *mongo.Collection
}

func NewChatRepository(database *mongo.Database) *ChatRepository {
	return &ChatRepository{coll: database.Collection(chatsCollection)}
}

func (r *ChatRepository) Insert(ctx context.Context, chat *models.Chat) error {
	now := time.Now()
	if chat.ID.IsZero() {
		chat.ID = primitive.NewObjectID()
	}
	if chat.Messages == nil {
		chat.Messages = []models.Message{}
	}
	chat.LastMessage = now
	chat.CreatedAt = now
	chat.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, chat)
	return mapWriteError(err)
}

func (r *ChatRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chat, error) {
	var chat models.Chat
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chat); err != nil {
		return nil, mapFindError(err)
	}
	return &chat, nil
}

// FindBetween finds the chat about product between a and b, in either role.
func (r *ChatRepository) FindBetween(ctx context.Context, product, a, b primitive.ObjectID) (*models.Chat, error) {
	filter := bson.M{
		"product": product,
		"$or": bson.A{
			bson.M{"buyer": a, "seller": b},
			bson.M{"buyer": b, "seller": a},
		},
	}
	var chat models.Chat
	if err := r.coll.FindOne(ctx, filter).Decode(&chat); err != nil {
		return nil, mapFindError(err)
	}
	return &chat, nil
}

// FindForUser lists the user's chats, most recent activity first.
func (r *ChatRepository) FindForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"buyer": userID},
		bson.M{"seller": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "lastMessage", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	defer cursor.Close(ctx)

	chats := []models.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	return chats, nil
}

// PushMessage appends msg and bumps lastMessage in a single update.
func (r *ChatRepository) PushMessage(ctx context.Context, chatID primitive.ObjectID, msg models.Message) (*models.Chat, error) {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"lastMessage": msg.Timestamp, "updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var chat models.Chat
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": chatID}, update, opts).Decode(&chat); err != nil {
		return nil, mapFindError(err)
	}
	return &chat, nil
}
