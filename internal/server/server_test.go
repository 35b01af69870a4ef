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
	"github.com/anhbaysgalan1/numpoker/internal/config"
	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:       "test",
		Port:              "0",
		RateLimitRPS:      100,
		RateLimitBurst:    100,
		Seed:              3,
		StartingChips:     30,
		OxygenInterval:    time.Hour,
		LookaheadTrials:   50,
		InsightTrials:     200,
		ShowdownTrials:    2000,
		SolverFallback:    "strict",
		DefaultDifficulty: "easy",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *NumPokerServer {
	t.Helper()
	s, err := NewNumPokerServer(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		s.oxygen.Stop()
		s.rateLimiter.Close()
	})
	return s
}

func quietEngine(t *testing.T, chips int) engine.GameEngine {
	t.Helper()
	return engine.NewGameEngine(engine.Settings{
		Game: game.Config{
			StartingChips:   chips,
			LookaheadTrials: 50,
			InsightTrials:   200,
			ShowdownTrials:  2000,
			Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		DefaultDifficulty: ai.Easy,
		Seed:              9,
	})
}

func intPtr(n int) *int { return &n }

func TestNewNumPokerServer_InvalidDifficulty(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultDifficulty = "impossible"
	_, err := NewNumPokerServer(cfg)
	assert.ErrorIs(t, err, ai.ErrUnknownDifficulty)
}

func TestNewNumPokerServer_BadRedisURL(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "not-a-url"
	_, err := NewNumPokerServer(cfg)
	assert.Error(t, err)
}

func TestHandler_Health(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandler_GameLifecycleWatchesOxygen(t *testing.T) {
	s := newTestServer(t, testConfig())
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/games", strings.NewReader(`{"difficulty":"normal"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var view dto.GameView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, string(ai.Normal), view.Difficulty)
	assert.Equal(t, 1, s.oxygen.Active())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/games/"+view.GameID.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.oxygen.Active())
}

func TestHandler_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	s := newTestServer(t, cfg)
	h := s.Handler()

	req := func() int {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, req())
	assert.Equal(t, http.StatusTooManyRequests, req())

	// health is outside the limited API
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOxygenScheduler_EndsGame(t *testing.T) {
	e := quietEngine(t, 3)
	view, err := e.CreateGame(context.Background(), dto.CreateGameCommand{})
	require.NoError(t, err)

	s := NewOxygenScheduler(e, 5*time.Millisecond)
	defer s.Stop()
	s.Watch(view.GameID)
	s.Watch(view.GameID)
	assert.LessOrEqual(t, s.Active(), 1)

	assert.Eventually(t, func() bool { return s.Active() == 0 }, 2*time.Second, 5*time.Millisecond)

	got, err := e.GetGame(context.Background(), view.GameID)
	require.NoError(t, err)
	assert.Equal(t, string(game.PhaseGameOver), got.Phase)
}

func TestOxygenScheduler_PausedBetweenRounds(t *testing.T) {
	ctx := context.Background()
	e := quietEngine(t, 30)
	view, err := e.CreateGame(ctx, dto.CreateGameCommand{})
	require.NoError(t, err)
	_, err = e.SelectCard(ctx, dto.SelectCardCommand{GameID: view.GameID, Index: intPtr(0)})
	require.NoError(t, err)
	view, err = e.PlaceBet(ctx, dto.PlaceBetCommand{GameID: view.GameID, Amount: intPtr(game.FoldAmount)})
	require.NoError(t, err)
	require.Equal(t, string(game.PhaseResult), view.Phase)

	s := NewOxygenScheduler(e, 2*time.Millisecond)
	defer s.Stop()
	s.Watch(view.GameID)
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, 1, s.Active())
	got, err := e.GetGame(ctx, view.GameID)
	require.NoError(t, err)
	assert.Equal(t, view.Human.Chips, got.Human.Chips)
	assert.Equal(t, view.AI.Chips, got.AI.Chips)
}

func TestOxygenScheduler_DisabledAndForget(t *testing.T) {
	e := quietEngine(t, 30)
	view, err := e.CreateGame(context.Background(), dto.CreateGameCommand{})
	require.NoError(t, err)

	disabled := NewOxygenScheduler(e, 0)
	disabled.Watch(view.GameID)
	assert.Equal(t, 0, disabled.Active())
	disabled.Stop()

	s := NewOxygenScheduler(e, time.Hour)
	s.Watch(view.GameID)
	assert.Equal(t, 1, s.Active())
	s.Forget(view.GameID)
	assert.Equal(t, 0, s.Active())
	s.Stop()
}
