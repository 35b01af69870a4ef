package server

import (
	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
)

// inbound (client) actions
const (
	actionNewGame    string = "new-game"
	actionJoinGame   string = "join-game"
	actionLeaveGame  string = "leave-game"
	actionGetGame    string = "get-game"
	actionSelectCard string = "select-card"
	actionPlaceBet   string = "place-bet"
	actionPlayerFold string = "player-fold"
	actionStartRound string = "start-round"
)

type base struct {
	// allows for correctly identifying messages
	Action string `json:"action"`
}

type newGame struct {
	base              // actionNewGame
	Difficulty string `json:"difficulty"`
}

type joinGame struct {
	base          // actionJoinGame
	GameID string `json:"gameID"`
}

type selectCard struct {
	base       // actionSelectCard
	Index *int `json:"index"`
}

type placeBet struct {
	base        // actionPlaceBet
	Amount *int `json:"amount"`
}

// outbound (server) actions
const (
	actionUpdateGame       string = "update-game"
	actionGameEvent        string = "game-event"
	actionOxygenDecay      string = "oxygen-decay"
	actionUpdateClientUUID string = "update-client-uuid"
	actionError            string = "error"
)

type updateGame struct {
	base                // actionUpdateGame
	Game *dto.GameView `json:"game"`
}

type gameEvent struct {
	base                // actionGameEvent
	GameID string        `json:"gameID"`
	Event  dto.EventView `json:"event"`
}

type oxygenDecay struct {
	base                  // actionOxygenDecay
	GameID string         `json:"gameID"`
	Decay  *dto.DecayView `json:"decay"`
}

type updateClientUUID struct {
	base        // actionUpdateClientUUID
	Uuid string `json:"uuid"`
}

type errorMessage struct {
	base           // actionError
	Message string `json:"message"`
	Status  int    `json:"status"`
	Time    string `json:"time"`
}
