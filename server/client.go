package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	commandTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn // Websocket connection
	send    chan []byte     // Buffered channel of outbound bytes
	uuid    string
	engine  engine.GameEngine
	watcher engine.GameWatcher

	// gameID is the game this client drives; only the read pump touches it
	gameID uuid.UUID
	// room is owned by the hub's Run loop
	room *room
}

func newClient(conn *websocket.Conn, hub *Hub, e engine.GameEngine, watcher engine.GameWatcher) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		uuid:    uuid.New().String(),
		engine:  e,
		watcher: watcher,
	}
}

func (c *Client) disconnect() {
	sendHub(c.hub, c.hub.unregister, c)
	c.conn.Close()
}

// readPump pumps events from the websocket connection to the engine.
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer c.disconnect()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn("Set read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Websocket unexpected close", "error", err)
			}
			break
		}
		if err = c.processEvents(message); err != nil {
			slog.Warn("Process websocket message", "client", c.uuid, "error", err)
			safeSend(c, createErrorMessage(err))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Warn("Write websocket message", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Warn("Write websocket ping", "error", err)
				return
			}
		}
	}
}

// ServeWs handles websocket requests from the peer. A ?game=<id> query joins
// that game straight away. watcher may be nil.
func ServeWs(hub *Hub, e engine.GameEngine, watcher engine.GameWatcher, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Upgrade websocket", "error", err)
		return
	}
	client := newClient(conn, hub, e, watcher)

	sendHub(hub, hub.register, client)
	safeSend(client, createClientUUID(client))

	if raw := r.URL.Query().Get("game"); raw != "" {
		if gameID, err := uuid.Parse(raw); err != nil {
			safeSend(client, createErrorMessage(fmt.Errorf("%w: invalid game ID", errBadMessage)))
		} else if err := handleJoinGame(client, gameID); err != nil {
			safeSend(client, createErrorMessage(err))
		}
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()
}

var (
	errBadMessage = errors.New("bad message")
	errNoGame     = errors.New("no game joined")
)

func decode(rawMessage []byte, v interface{}) error {
	if err := json.Unmarshal(rawMessage, v); err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}
	return nil
}

func (c *Client) processEvents(rawMessage []byte) error {
	var baseMessage base
	if err := decode(rawMessage, &baseMessage); err != nil {
		return err
	}
	if baseMessage.Action == "" {
		return fmt.Errorf("%w: missing action", errBadMessage)
	}

	switch baseMessage.Action {

	case actionNewGame:
		var msg newGame
		if err := decode(rawMessage, &msg); err != nil {
			return err
		}
		return handleNewGame(c, msg.Difficulty)

	case actionJoinGame:
		var msg joinGame
		if err := decode(rawMessage, &msg); err != nil {
			return err
		}
		gameID, err := uuid.Parse(msg.GameID)
		if err != nil {
			return fmt.Errorf("%w: invalid game ID", errBadMessage)
		}
		return handleJoinGame(c, gameID)

	case actionLeaveGame:
		handleLeaveGame(c)
		return nil

	case actionGetGame:
		return handleGetGame(c)

	case actionSelectCard:
		var msg selectCard
		if err := decode(rawMessage, &msg); err != nil {
			return err
		}
		return handleSelectCard(c, msg.Index)

	case actionPlaceBet:
		var msg placeBet
		if err := decode(rawMessage, &msg); err != nil {
			return err
		}
		return handlePlaceBet(c, msg.Amount)

	case actionPlayerFold, "fold":
		fold := game.FoldAmount
		return handlePlaceBet(c, &fold)

	case actionStartRound:
		return handleStartRound(c)

	default:
		return fmt.Errorf("%w: unexpected action %q", errBadMessage, baseMessage.Action)
	}
}
