package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inbound struct {
	Action  string          `json:"action"`
	Uuid    string          `json:"uuid"`
	Game    *dto.GameView   `json:"game"`
	Event   *dto.EventView  `json:"event"`
	Decay   *dto.DecayView  `json:"decay"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Raw     json.RawMessage `json:"-"`
}

func setupHub(t *testing.T) (*httptest.Server, engine.GameEngine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil)
	go hub.Run(ctx)

	e := engine.NewGameEngine(engine.Settings{
		Game: game.Config{
			LookaheadTrials: 50,
			InsightTrials:   200,
			ShowdownTrials:  2000,
			Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		DefaultDifficulty: ai.Easy,
		Seed:              5,
	}, engine.WithPublisher(hub))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, e, nil, w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, e
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := readUntil(t, conn, actionUpdateClientUUID, nil)
	require.NotEmpty(t, msg.Uuid)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

// readUntil reads messages until one with the wanted action matches keep.
func readUntil(t *testing.T, conn *websocket.Conn, action string, keep func(inbound) bool) inbound {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", action)

		var msg inbound
		require.NoError(t, json.Unmarshal(raw, &msg))
		msg.Raw = raw
		if msg.Action == action && (keep == nil || keep(msg)) {
			return msg
		}
	}
}

func inPhase(phase game.Phase) func(inbound) bool {
	return func(m inbound) bool { return m.Game != nil && m.Game.Phase == string(phase) }
}

func TestHub_PlayOverWebsocket(t *testing.T) {
	srv, _ := setupHub(t)
	conn := dial(t, srv)

	send(t, conn, map[string]interface{}{"action": actionNewGame, "difficulty": "easy"})
	created := readUntil(t, conn, actionUpdateGame, nil)
	require.NotNil(t, created.Game)
	assert.Equal(t, string(game.PhaseSelect), created.Game.Phase)
	assert.Equal(t, string(ai.Easy), created.Game.Difficulty)

	send(t, conn, map[string]interface{}{"action": actionSelectCard, "index": 0})
	selected := readUntil(t, conn, actionGameEvent, func(m inbound) bool {
		return m.Event != nil && m.Event.Type == string(events.NumberSelectedEvent)
	})
	assert.NotZero(t, selected.Event.Version)
	readUntil(t, conn, actionUpdateGame, inPhase(game.PhaseBetting))

	send(t, conn, map[string]interface{}{"action": actionPlayerFold})
	result := readUntil(t, conn, actionUpdateGame, inPhase(game.PhaseResult))
	require.NotNil(t, result.Game.Result)
	assert.Equal(t, string(game.AI), result.Game.Result.Winner)

	send(t, conn, map[string]interface{}{"action": actionPlaceBet, "amount": 1})
	failed := readUntil(t, conn, actionError, nil)
	assert.Equal(t, http.StatusConflict, failed.Status)

	send(t, conn, map[string]interface{}{"action": actionStartRound})
	next := readUntil(t, conn, actionUpdateGame, inPhase(game.PhaseSelect))
	assert.Equal(t, 2, next.Game.Round)
}

func TestHub_SpectatorReceivesUpdates(t *testing.T) {
	srv, _ := setupHub(t)
	player := dial(t, srv)
	spectator := dial(t, srv)

	send(t, player, map[string]interface{}{"action": actionNewGame})
	created := readUntil(t, player, actionUpdateGame, nil)

	send(t, spectator, map[string]interface{}{"action": actionJoinGame, "gameID": created.Game.GameID.String()})
	joined := readUntil(t, spectator, actionUpdateGame, nil)
	assert.Equal(t, created.Game.GameID, joined.Game.GameID)

	send(t, player, map[string]interface{}{"action": actionSelectCard, "index": 1})
	seen := readUntil(t, spectator, actionUpdateGame, inPhase(game.PhaseBetting))
	assert.Equal(t, created.Game.GameID, seen.Game.GameID)
}

func TestHub_RejectsBadMessages(t *testing.T) {
	srv, _ := setupHub(t)
	conn := dial(t, srv)

	tests := []struct {
		name   string
		msg    interface{}
		status int
	}{
		{"unknown action", map[string]interface{}{"action": "deal-game"}, http.StatusBadRequest},
		{"missing action", map[string]interface{}{"index": 1}, http.StatusBadRequest},
		{"command before joining", map[string]interface{}{"action": actionStartRound}, http.StatusConflict},
		{"bad game id", map[string]interface{}{"action": actionJoinGame, "gameID": "nope"}, http.StatusBadRequest},
		{"unknown game", map[string]interface{}{"action": actionJoinGame, "gameID": uuid.NewString()}, http.StatusNotFound},
		{"bad difficulty", map[string]interface{}{"action": actionNewGame, "difficulty": "brutal"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msg)
			msg := readUntil(t, conn, actionError, nil)
			assert.Equal(t, tt.status, msg.Status, msg.Message)
		})
	}

	send(t, conn, map[string]interface{}{"action": actionNewGame})
	readUntil(t, conn, actionUpdateGame, nil)
	send(t, conn, map[string]interface{}{"action": actionSelectCard, "index": 9})
	msg := readUntil(t, conn, actionError, nil)
	assert.Equal(t, http.StatusBadRequest, msg.Status)
	assert.Contains(t, msg.Message, "index must be at most 4")
}

func TestEncodeUpdate(t *testing.T) {
	gameID := uuid.New()
	view := &dto.GameView{GameID: gameID, Phase: string(game.PhaseSelect)}
	ev := events.NewOxygenDecayed(gameID, true, false, 29, 30, false, 3)

	messages := encodeUpdate(engine.Update{
		GameID: gameID,
		View:   view,
		Events: []events.DomainEvent{ev},
		Decay:  &dto.DecayView{HumanDecayed: true, Game: view},
	})
	require.Len(t, messages, 3)

	var actions []string
	for _, raw := range messages {
		var b base
		require.NoError(t, json.Unmarshal(raw, &b))
		actions = append(actions, b.Action)
	}
	assert.Equal(t, []string{actionGameEvent, actionOxygenDecay, actionUpdateGame}, actions)
}

func TestHub_PublishWithoutRoomDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.Publish(context.Background(), engine.Update{GameID: uuid.New(), View: &dto.GameView{}})
		}
		cancel()
		hub.Publish(context.Background(), engine.Update{GameID: uuid.New(), View: &dto.GameView{}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestServeWs_JoinsGameFromQuery(t *testing.T) {
	srv, e := setupHub(t)
	view, err := e.CreateGame(context.Background(), dto.CreateGameCommand{})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?game=" + view.GameID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	joined := readUntil(t, conn, actionUpdateGame, nil)
	assert.Equal(t, view.GameID, joined.Game.GameID)

	send(t, conn, map[string]interface{}{"action": actionSelectCard, "index": 0})
	readUntil(t, conn, actionUpdateGame, inPhase(game.PhaseBetting))
	send(t, conn, map[string]interface{}{"action": "fold"})
	readUntil(t, conn, actionUpdateGame, inPhase(game.PhaseResult))
}
