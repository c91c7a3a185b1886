package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Content   string             `bson:"content" json:"content"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type Chat struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Buyer       primitive.ObjectID `bson:"buyer" json:"buyer"`
	Seller      primitive.ObjectID `bson:"seller" json:"seller"`
	Product     primitive.ObjectID `bson:"product" json:"product"`
	Messages    []Message          `bson:"messages" json:"messages"`
	LastMessage time.Time          `bson:"lastMessage" json:"lastMessage"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether userID is the buyer or the seller.
func (c *Chat) HasParticipant(userID primitive.ObjectID) bool {
	return c.Buyer == userID || c.Seller == userID
}

// MessageView is a message with its sender populated.
type MessageView struct {
	ID        primitive.ObjectID `json:"_id"`
	Sender    any                `json:"sender"`
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
}

// ChatView is a chat with buyer, seller, product and senders populated.
// References that no longer resolve are left as bare ids.
type ChatView struct {
	ID          primitive.ObjectID `json:"_id"`
	Buyer       any                `json:"buyer"`
	Seller      any                `json:"seller"`
	Product     any                `json:"product"`
	Messages    []MessageView      `json:"messages"`
	LastMessage time.Time          `json:"lastMessage"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NewChatView populates c from the given lookups.
func NewChatView(c Chat, users map[primitive.ObjectID]*User, product *Product) ChatView {
	participant := func(id primitive.ObjectID) any {
		if u, ok := users[id]; ok && u != nil {
			return u.Participant()
		}
		return id
	}

	v := ChatView{
		ID:          c.ID,
		Buyer:       participant(c.Buyer),
		Seller:      participant(c.Seller),
		Product:     c.Product,
		Messages:    make([]MessageView, 0, len(c.Messages)),
		LastMessage: c.LastMessage,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if product != nil {
		v.Product = product.Summary()
	}
	for _, m := range c.Messages {
		v.Messages = append(v.Messages, MessageView{
			ID:        m.ID,
			Sender:    participant(m.Sender),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return v
}
