package server

import (
	"context"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const roomChannelPrefix = "numpoker:game:"

func roomChannel(gameID uuid.UUID) string {
	return roomChannelPrefix + gameID.String()
}

// room is the set of clients watching one game. Rooms are owned by the hub's
// Run loop.
type room struct {
	gameID  uuid.UUID
	clients map[*Client]bool
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
}

func newRoom(gameID uuid.UUID) *room {
	return &room{
		gameID:  gameID,
		clients: make(map[*Client]bool),
	}
}

// subscribe relays messages published on the game's channel, by any
// instance, into the hub.
func (r *room) subscribe(h *Hub) {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.pubsub = h.rdb.Subscribe(ctx, roomChannel(r.gameID))

	go func(pubsub *redis.PubSub, gameID uuid.UUID) {
		if _, err := pubsub.Receive(ctx); err != nil {
			slog.Warn("Subscribe to game channel", "game_id", gameID, "error", err)
			return
		}
		for msg := range pubsub.Channel() {
			h.deliver(ctx, roomMessage{gameID: gameID, payload: []byte(msg.Payload)})
		}
	}(r.pubsub, r.gameID)
}

func (r *room) close() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.pubsub != nil {
		// Close may block on the network; the hub loop must not.
		go func(pubsub *redis.PubSub) {
			if err := pubsub.Close(); err != nil {
				slog.Warn("Close game subscription", "game_id", r.gameID, "error", err)
			}
		}(r.pubsub)
		r.pubsub = nil
	}
}
