package socket

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/CampusKart/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	authTimeout    = 5 * time.Second
)

var clientIDCounter atomic.Uint64

// Conn is the part of *websocket.Conn the client uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Authorizer decides whether a user may join a chat room.
// *services.ChatService implements it.
type Authorizer interface {
	IsParticipant(ctx context.Context, userID primitive.ObjectID, chatID string) (bool, error)
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type newMessageData struct {
	ChatID  string          `json:"chatId"`
	Message json.RawMessage `json:"message"`
}

// Client is one authenticated WebSocket connection.
type Client struct {
	id     uint64
	userID primitive.ObjectID
	hub    *Hub
	conn   Conn
	auth   Authorizer
	send   chan []byte

	// joined is only touched by the read loop.
	joined map[string]struct{}
}

func NewClient(hub *Hub, conn Conn, userID primitive.ObjectID, auth Authorizer) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		userID: userID,
		hub:    hub,
		conn:   conn,
		auth:   auth,
		send:   make(chan []byte, 256),
		joined: make(map[string]struct{}),
	}
}

// Run registers the client and serves it until the connection closes.
// It blocks, as the fiber websocket handler must.
func (c *Client) Run() {
	if !c.hub.Register(c) {
		_ = c.conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close")
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reject("", "malformed message")
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg inbound) {
	switch msg.Event {
	case EventJoinChat:
		chatID, ok := decodeChatID(msg.Data)
		if !ok {
			c.reject(msg.Event, "chat id is required")
			return
		}
		c.joinRoom(msg.Event, chatID)

	case EventLeaveChat:
		chatID, ok := decodeChatID(msg.Data)
		if !ok {
			c.reject(msg.Event, "chat id is required")
			return
		}
		delete(c.joined, chatID)
		c.hub.Leave(c, chatID)

	case EventNewMessage:
		var data newMessageData
		if err := json.Unmarshal(msg.Data, &data); err != nil || strings.TrimSpace(data.ChatID) == "" || !hasValue(data.Message) {
			c.reject(msg.Event, "chatId and message are required")
			return
		}
		if _, in := c.joined[data.ChatID]; !in && !c.joinRoom(msg.Event, data.ChatID) {
			return
		}
		c.hub.BroadcastToRoom(data.ChatID, EventMessageReceived, data)

	default:
		c.reject(msg.Event, "unknown event")
	}
}

// joinRoom checks that the user belongs to the chat and joins its room.
func (c *Client) joinRoom(event, chatID string) bool {
	if _, in := c.joined[chatID]; in {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	ok, err := c.auth.IsParticipant(ctx, c.userID, chatID)
	if err != nil {
		logging.Debug().Err(err).Str("chat_id", chatID).Msg("socket join check failed")
	}
	if err != nil || !ok {
		c.reject(event, "not a participant of this chat")
		return false
	}

	c.joined[chatID] = struct{}{}
	c.hub.Join(c, chatID)
	return true
}

func (c *Client) reject(event, reason string) {
	c.hub.SendTo(c, EventError, map[string]string{"event": event, "message": reason})
}

// hasValue reports whether raw holds a JSON value other than null.
func hasValue(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}

func decodeChatID(raw json.RawMessage) (string, bool) {
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		// Also accept {"chatId": "..."}.
		var obj struct {
			ChatID string `json:"chatId"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", false
		}
		id = obj.ChatID
	}
	id = strings.TrimSpace(id)
	return id, id != ""
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("socket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
