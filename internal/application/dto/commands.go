package dto

import (
	"github.com/google/uuid"
)

// Commands for CQRS pattern
type CreateGameCommand struct {
	Difficulty string `json:"difficulty" validate:"omitempty,difficulty"`
}

type SelectCardCommand struct {
	GameID uuid.UUID `json:"-"`
	Index  *int      `json:"index" validate:"required,min=0,max=4"`
}

// PlaceBetCommand carries the chips the human puts in. -1 folds.
type PlaceBetCommand struct {
	GameID uuid.UUID `json:"-"`
	Amount *int      `json:"amount" validate:"required,min=-1"`
}
