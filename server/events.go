package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	apphandlers "github.com/anhbaysgalan1/numpoker/internal/application/handlers"
	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/anhbaysgalan1/numpoker/internal/handlers"
	"github.com/anhbaysgalan1/numpoker/internal/validation"
	"github.com/google/uuid"
)

// safeSend sends a message to a client's send channel without panicking on
// closed channels
func safeSend(c *Client, message []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Attempted to send message to closed channel", "client", c.uuid)
		}
	}()

	select {
	case c.send <- message:
	default:
		slog.Warn("Unable to send message to client, channel unavailable", "client", c.uuid)
	}
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

func handleNewGame(c *Client, difficulty string) error {
	cmd := dto.CreateGameCommand{Difficulty: difficulty}
	if err := validation.Validate(cmd); err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}

	ctx, cancel := commandContext()
	defer cancel()

	view, err := c.engine.CreateGame(ctx, cmd)
	if err != nil {
		return err
	}
	if c.watcher != nil {
		c.watcher.Watch(view.GameID)
	}
	c.enter(view)
	return nil
}

func handleJoinGame(c *Client, gameID uuid.UUID) error {
	ctx, cancel := commandContext()
	defer cancel()

	view, err := c.engine.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	c.enter(view)
	return nil
}

// enter moves the client into the game's room. The view is sent directly
// since updates committed before the join were published to nobody here.
func (c *Client) enter(view *dto.GameView) {
	c.gameID = view.GameID
	sendHub(c.hub, c.hub.join, membership{client: c, gameID: view.GameID})
	safeSend(c, createUpdatedGame(view))
}

func handleLeaveGame(c *Client) {
	c.gameID = uuid.Nil
	sendHub(c.hub, c.hub.leave, c)
}

func handleGetGame(c *Client) error {
	if c.gameID == uuid.Nil {
		return errNoGame
	}
	ctx, cancel := commandContext()
	defer cancel()

	view, err := c.engine.GetGame(ctx, c.gameID)
	if err != nil {
		return err
	}
	safeSend(c, createUpdatedGame(view))
	return nil
}

// The game commands below answer through the hub: the engine publishes the
// committed update to the room, this client included.

func handleSelectCard(c *Client, index *int) error {
	if c.gameID == uuid.Nil {
		return errNoGame
	}
	cmd := dto.SelectCardCommand{GameID: c.gameID, Index: index}
	if err := validation.Validate(cmd); err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}

	ctx, cancel := commandContext()
	defer cancel()
	_, err := c.engine.SelectCard(ctx, cmd)
	return err
}

func handlePlaceBet(c *Client, amount *int) error {
	if c.gameID == uuid.Nil {
		return errNoGame
	}
	cmd := dto.PlaceBetCommand{GameID: c.gameID, Amount: amount}
	if err := validation.Validate(cmd); err != nil {
		return fmt.Errorf("%w: %v", errBadMessage, err)
	}

	ctx, cancel := commandContext()
	defer cancel()
	_, err := c.engine.PlaceBet(ctx, cmd)
	return err
}

func handleStartRound(c *Client) error {
	if c.gameID == uuid.Nil {
		return errNoGame
	}
	ctx, cancel := commandContext()
	defer cancel()
	_, err := c.engine.StartRound(ctx, c.gameID)
	return err
}

// encodeUpdate turns a committed update into the messages sent to a room:
// one per event, then the oxygen tick if there was one, then the new view.
func encodeUpdate(u engine.Update) [][]byte {
	messages := make([][]byte, 0, len(u.Events)+2)
	for _, ev := range apphandlers.ConvertEvents(u.Events) {
		messages = append(messages, marshal(gameEvent{
			base:   base{actionGameEvent},
			GameID: u.GameID.String(),
			Event:  ev,
		}))
	}
	if u.Decay != nil {
		messages = append(messages, marshal(oxygenDecay{
			base:   base{actionOxygenDecay},
			GameID: u.GameID.String(),
			Decay:  u.Decay,
		}))
	}
	if u.View != nil {
		messages = append(messages, createUpdatedGame(u.View))
	}
	return messages
}

func createUpdatedGame(view *dto.GameView) []byte {
	return marshal(updateGame{base{actionUpdateGame}, view})
}

func createClientUUID(c *Client) []byte {
	return marshal(updateClientUUID{base{actionUpdateClientUUID}, c.uuid})
}

// createErrorMessage reports a failed message back to its sender, with the
// status the REST API would have answered.
func createErrorMessage(err error) []byte {
	status := handlers.StatusFor(err)
	message := err.Error()
	switch {
	case errors.Is(err, errBadMessage):
		status = http.StatusBadRequest
	case errors.Is(err, errNoGame):
		status = http.StatusConflict
	case status == http.StatusInternalServerError:
		message = "Internal server error"
	}
	return marshal(errorMessage{
		base:    base{actionError},
		Message: message,
		Status:  status,
		Time:    currentTime(),
	})
}

func currentTime() string {
	return time.Now().Format("15:04")
}

func marshal(v interface{}) []byte {
	resp, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Marshal websocket message", "error", err)
	}
	return resp
}
