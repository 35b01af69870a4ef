package server

import (
	"context"
	"log/slog"

	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// roomMessage is an encoded message addressed to everyone watching a game.
type roomMessage struct {
	gameID  uuid.UUID
	payload []byte
}

type membership struct {
	client *Client
	gameID uuid.UUID
}

// Hub maintains the set of active clients and the games they watch. It is
// the engine's Publisher: committed updates are encoded once and fanned out
// to the game's room, through Redis when a client is configured so that
// every instance sharing the Redis sees them.
type Hub struct {
	rdb        *redis.Client
	clients    map[*Client]bool
	rooms      map[uuid.UUID]*room
	broadcast  chan roomMessage
	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan *Client
	done       chan struct{}
}

// NewHub creates a hub. rdb may be nil, in which case updates only reach
// clients of this process.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:        rdb,
		clients:    make(map[*Client]bool),
		rooms:      make(map[uuid.UUID]*room),
		broadcast:  make(chan roomMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case m := <-h.join:
			h.joinRoom(m.client, m.gameID)
		case client := <-h.leave:
			h.leaveRoom(client)
		case message := <-h.broadcast:
			h.broadcastToRoom(message)
		}
	}
}

// Publish implements engine.Publisher.
func (h *Hub) Publish(ctx context.Context, update engine.Update) {
	for _, payload := range encodeUpdate(update) {
		if h.rdb != nil {
			if err := h.rdb.Publish(ctx, roomChannel(update.GameID), payload).Err(); err != nil {
				slog.Warn("Publish game update", "game_id", update.GameID, "error", err)
			}
			continue
		}
		h.deliver(ctx, roomMessage{gameID: update.GameID, payload: payload})
	}
}

func (h *Hub) deliver(ctx context.Context, m roomMessage) {
	select {
	case h.broadcast <- m:
	case <-ctx.Done():
	case <-h.done:
	}
}

// sendHub hands a request to the Run loop unless it has stopped.
func sendHub[T any](h *Hub, ch chan T, v T) {
	select {
	case ch <- v:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
}

func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		h.leaveRoom(client)
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) joinRoom(client *Client, gameID uuid.UUID) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	if client.room != nil {
		if client.room.gameID == gameID {
			return
		}
		h.leaveRoom(client)
	}

	r, ok := h.rooms[gameID]
	if !ok {
		r = newRoom(gameID)
		h.rooms[gameID] = r
		if h.rdb != nil {
			r.subscribe(h)
		}
	}
	r.clients[client] = true
	client.room = r
}

func (h *Hub) leaveRoom(client *Client) {
	r := client.room
	if r == nil {
		return
	}
	delete(r.clients, client)
	client.room = nil
	if len(r.clients) == 0 {
		r.close()
		delete(h.rooms, r.gameID)
	}
}

func (h *Hub) broadcastToRoom(m roomMessage) {
	r, ok := h.rooms[m.gameID]
	if !ok {
		return
	}
	for client := range r.clients {
		select {
		case client.send <- m.payload:
		default:
			slog.Warn("Dropping slow websocket client", "client", client.uuid, "game_id", m.gameID)
			h.leaveRoom(client)
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for _, r := range h.rooms {
		r.close()
	}
	for client := range h.clients {
		close(client.send)
	}
	h.rooms = map[uuid.UUID]*room{}
	h.clients = map[*Client]bool{}
}
