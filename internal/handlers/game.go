package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/anhbaysgalan1/numpoker/internal/engine/repositories"
	"github.com/anhbaysgalan1/numpoker/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type GameHandler struct {
	engine  engine.GameEngine
	watcher engine.GameWatcher
}

// NewGameHandler creates the REST handler. watcher may be nil.
func NewGameHandler(e engine.GameEngine, watcher engine.GameWatcher) *GameHandler {
	return &GameHandler{engine: e, watcher: watcher}
}

func (h *GameHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateGame)
	r.Get("/{gameID}", h.GetGame)
	r.Delete("/{gameID}", h.DeleteGame)
	r.Post("/{gameID}/select", h.SelectCard)
	r.Post("/{gameID}/bet", h.PlaceBet)
	r.Post("/{gameID}/rounds", h.StartRound)
	r.Get("/{gameID}/history", h.GetHistory)
	r.Get("/{gameID}/events", h.GetEvents)

	return r
}

// ListRules returns the rule table
func (h *GameHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"rules":        h.engine.ListRules(r.Context()),
		"difficulties": ai.Difficulties(),
	})
}

// CreateGame deals a new game
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var cmd dto.CreateGameCommand
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if err := validation.Validate(cmd); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.engine.CreateGame(r.Context(), cmd)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if h.watcher != nil {
		h.watcher.Watch(view.GameID)
	}
	writeJSONResponse(w, http.StatusCreated, view)
}

// GetGame returns the current game view
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}
	view, err := h.engine.GetGame(r.Context(), gameID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// DeleteGame abandons a game
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}
	if err := h.engine.DeleteGame(r.Context(), gameID); err != nil {
		writeEngineError(w, err)
		return
	}
	if h.watcher != nil {
		h.watcher.Forget(gameID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectCard locks in the human's number
func (h *GameHandler) SelectCard(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}
	var cmd dto.SelectCardCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}
	cmd.GameID = gameID

	view, err := h.engine.SelectCard(r.Context(), cmd)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// PlaceBet applies a bet; -1 folds
func (h *GameHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}
	var cmd dto.PlaceBetCommand
	if !decodeAndValidate(w, r, &cmd) {
		return
	}
	cmd.GameID = gameID

	view, err := h.engine.PlaceBet(r.Context(), cmd)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// StartRound opens the next round, or ends the game when a side is out of
// numbers
func (h *GameHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}
	view, err := h.engine.StartRound(r.Context(), gameID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

// GetHistory lists resolved rounds
func (h *GameHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}
	history, err := h.engine.GetHistory(r.Context(), gameID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"rounds": history,
		"total":  len(history),
	})
}

// GetEvents lists committed domain events, optionally after ?from=version
func (h *GameHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	gameID, ok := parseGameID(w, r)
	if !ok {
		return
	}

	var from int64
	if s := r.URL.Query().Get("from"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			writeErrorResponse(w, http.StatusBadRequest, "from must be a non-negative integer")
			return
		}
		from = v
	}

	evs, err := h.engine.GetEvents(r.Context(), gameID, from)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"events": evs,
	})
}

func parseGameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "gameID")
	if err := validation.ValidateUUID(raw); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid game ID")
		return uuid.Nil, false
	}
	return uuid.MustParse(raw), true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validation.Validate(v); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, ai.ErrUnknownDifficulty),
		errors.Is(err, game.ErrInvalidIndex),
		errors.Is(err, game.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNotStarted),
		errors.Is(err, game.ErrNumbersExhausted):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeEngineError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Engine error", "error", err)
		writeErrorResponse(w, status, "Internal server error")
		return
	}
	writeErrorResponse(w, status, err.Error())
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, map[string]string{
		"error": message,
	})
}
