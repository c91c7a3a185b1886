package socket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/arzan03/CampusKart/internal/logging"
	"github.com/arzan03/CampusKart/internal/metrics"
)

const (
	EventJoinChat        = "join_chat"
	EventLeaveChat       = "leave_chat"
	EventNewMessage      = "new_message"
	EventMessageReceived = "message_received"
	EventError           = "error"
)

// Message is an outbound envelope.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type membership struct {
	client *Client
	room   string
}

type roomMessage struct {
	room    string
	payload []byte
}

type clientMessage struct {
	client  *Client
	payload []byte
}

// Hub tracks connected clients and the rooms they joined. All mutations
// happen on the RunWithContext goroutine; mu only guards readers.
type Hub struct {
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	broadcast  chan roomMessage
	direct     chan clientMessage
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan membership),
		broadcast:  make(chan roomMessage, 256),
		direct:     make(chan clientMessage, 64),
		done:       make(chan struct{}),
	}
}

// RunWithContext processes hub events until ctx is canceled, then closes
// every client. Membership changes are handled before pending broadcasts.
func (h *Hub) RunWithContext(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.register:
			h.addClient(c)
			continue
		case c := <-h.unregister:
			h.removeClient(c)
			continue
		case m := <-h.join:
			h.addToRoom(m)
			continue
		case m := <-h.leave:
			h.removeFromRoom(m)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case m := <-h.join:
			h.addToRoom(m)
		case m := <-h.leave:
			h.removeFromRoom(m)
		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)
		case msg := <-h.direct:
			h.sendToClient(msg)
		}
	}
}

// Register adds c to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Join puts c into room. It returns after the hub has applied the change.
func (h *Hub) Join(c *Client, room string) {
	select {
	case h.join <- membership{client: c, room: room}:
	case <-h.done:
	}
}

func (h *Hub) Leave(c *Client, room string) {
	select {
	case h.leave <- membership{client: c, room: room}:
	case <-h.done:
	}
}

// BroadcastToRoom sends event to every client in room. The message is dropped
// when the broadcast queue is full.
func (h *Hub) BroadcastToRoom(room, event string, data any) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		logging.Error().Err(err).Str("event", event).Msg("failed to encode socket message")
		return
	}

	select {
	case h.broadcast <- roomMessage{room: room, payload: payload}:
	case <-h.done:
	default:
		logging.Warn().Str("room", room).Str("event", event).Msg("broadcast channel full, dropping message")
	}
}

// SendTo queues event for a single client. Send channels are only written
// from the hub goroutine, so replies go through here too.
func (h *Hub) SendTo(c *Client, event string, data any) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		logging.Error().Err(err).Str("event", event).Msg("failed to encode socket message")
		return
	}

	select {
	case h.direct <- clientMessage{client: c, payload: payload}:
	case <-h.done:
	default:
		logging.Warn().Uint64("client_id", c.id).Str("event", event).Msg("direct channel full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of clients joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.SocketConnections.Set(float64(n))
	logging.Debug().Uint64("client_id", c.id).Str("user_id", c.userID.Hex()).Int("total_clients", n).Msg("socket client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
	metrics.SocketConnections.Set(float64(len(h.clients)))
}

// dropLocked forgets c and closes its send channel. Callers hold mu.
func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for room, members := range h.rooms {
		if _, in := members[c]; in {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(c.send)
	metrics.SocketRooms.Set(float64(len(h.rooms)))
}

func (h *Hub) addToRoom(m membership) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[m.client]; !ok {
		return
	}
	members, ok := h.rooms[m.room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[m.room] = members
	}
	members[m.client] = struct{}{}
	metrics.SocketRooms.Set(float64(len(h.rooms)))
}

func (h *Hub) removeFromRoom(m membership) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[m.room]
	if !ok {
		return
	}
	delete(members, m.client)
	if len(members) == 0 {
		delete(h.rooms, m.room)
	}
	metrics.SocketRooms.Set(float64(len(h.rooms)))
}

// broadcastToRoom delivers in client id order and drops clients whose send
// buffer is full.
func (h *Hub) broadcastToRoom(msg roomMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[msg.room]
	clients := make([]*Client, 0, len(members))
	for c := range members {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, c := range clients {
		select {
		case c.send <- msg.payload:
		default:
			logging.Warn().Uint64("client_id", c.id).Msg("socket client too slow, disconnecting")
			metrics.SocketClientsDropped.Inc()
			h.dropLocked(c)
		}
	}
	if len(clients) > 0 {
		metrics.ChatMessagesRelayed.Inc()
	}
	metrics.SocketConnections.Set(float64(len(h.clients)))
}

func (h *Hub) sendToClient(msg clientMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[msg.client]; !ok {
		return
	}
	select {
	case msg.client.send <- msg.payload:
	default:
		metrics.SocketClientsDropped.Inc()
		h.dropLocked(msg.client)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	n := len(h.clients)
	for c := range h.clients {
		h.dropLocked(c)
	}
	h.mu.Unlock()

	metrics.SocketConnections.Set(0)
	logging.Info().Str("component", "socket-hub").Int("clients_closed", n).Msg("socket hub stopped")
}
