package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/anhbaysgalan1/numpoker/internal/config"
	"github.com/anhbaysgalan1/numpoker/internal/engine"
	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
	slog.SetDefault(logger)

	cfg := config.Load()

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Num", pterm.FgCyan.ToStyle()),
		putils.LettersFromStringWithStyle("Poker", pterm.FgDarkGray.ToStyle()),
	).Render()

	pterm.Info.Println("Pick one of your numbers each round. A secret rule turns every number into a poker hand made from the shared cards.")
	if cfg.OxygenInterval > 0 {
		pterm.Info.Printfln("Oxygen costs both of you a chip every %s while a round is being played.", cfg.OxygenInterval)
	}
	pterm.Println()

	difficulty, err := chooseDifficulty(cfg.DefaultDifficulty)
	if err != nil {
		logger.Error("Failed to read difficulty", "error", err)
		os.Exit(1)
	}

	gameCfg := cfg.GameConfig()
	gameCfg.Logger = logger
	e := engine.NewGameEngine(engine.Settings{
		Game:              gameCfg,
		DefaultDifficulty: difficulty,
		Seed:              cfg.Seed,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view, err := e.CreateGame(ctx, dto.CreateGameCommand{Difficulty: string(difficulty)})
	if err != nil {
		logger.Error("Failed to create game", "error", err)
		os.Exit(1)
	}

	go runOxygen(ctx, e, view.GameID, cfg.OxygenInterval)

	if err := play(ctx, e, view.GameID); err != nil {
		logger.Error("Game aborted", "error", err)
		os.Exit(1)
	}
}

func chooseDifficulty(fallback string) (ai.Difficulty, error) {
	options := make([]string, 0, 4)
	for _, d := range ai.Difficulties() {
		options = append(options, string(d))
	}
	def := strings.ToUpper(fallback)
	if _, err := ai.ParseDifficulty(def); err != nil {
		def = string(ai.Normal)
	}
	choice, err := pterm.DefaultInteractiveSelect.
		WithDefaultText("Select the AI difficulty").
		WithOptions(options).
		WithDefaultOption(def).
		Show()
	if err != nil {
		return "", err
	}
	return ai.ParseDifficulty(choice)
}

// runOxygen decays the game's oxygen until it ends or ctx is cancelled. A
// non-positive interval turns oxygen off.
func runOxygen(ctx context.Context, e engine.GameEngine, gameID uuid.UUID, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			decay, err := e.DecayOxygen(ctx, gameID)
			if errors.Is(err, game.ErrWrongPhase) {
				continue
			}
			if err != nil {
				return
			}
			pterm.Warning.Printfln("Oxygen is running low: you have %d chips, the AI %d", decay.Game.Human.Chips, decay.Game.AI.Chips)
			if decay.GameOver {
				pterm.Error.Println("Out of oxygen! Press enter to see the final result.")
				return
			}
		}
	}
}

var errQuit = errors.New("quit")

// play drives the game until it is over. Commands that lose a race against
// the oxygen clock are retried from the fresh state.
func play(ctx context.Context, e engine.GameEngine, gameID uuid.UUID) error {
	for {
		view, err := e.GetGame(ctx, gameID)
		if err != nil {
			return err
		}

		switch game.Phase(view.Phase) {
		case game.PhaseSelect:
			printState(view)
			err = selectNumber(ctx, e, view)

		case game.PhaseBetting:
			printState(view)
			err = placeBet(ctx, e, view)

		case game.PhaseResult:
			printResult(view)
			err = nextRound(ctx, e, view)

		case game.PhaseGameOver:
			history, err := e.GetHistory(ctx, gameID)
			if err != nil {
				return err
			}
			printGameOver(view, history)
			return nil
		}

		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrGameOver),
			errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrInvalidAmount),
			errors.Is(err, game.ErrInvalidIndex):
			pterm.Warning.Println(err.Error())
		default:
			return err
		}
	}
}

func selectNumber(ctx context.Context, e engine.GameEngine, view *dto.GameView) error {
	choice, err := pterm.DefaultInteractiveSelect.
		WithDefaultText("Which number do you play?").
		WithOptions(numberOptions(view)).
		Show()
	if err != nil {
		return err
	}
	index, err := optionIndex(choice)
	if err != nil {
		return err
	}
	_, err = e.SelectCard(ctx, dto.SelectCardCommand{GameID: view.GameID, Index: &index})
	return err
}

func placeBet(ctx context.Context, e engine.GameEngine, view *dto.GameView) error {
	if view.AILastAction != "" {
		pterm.Info.Printfln("The AI: %s", view.AILastAction)
	}
	choice, err := pterm.DefaultInteractiveSelect.
		WithDefaultText("Your move").
		WithOptions(betChoices(view)).
		Show()
	if err != nil {
		return err
	}

	var raise int
	if choice == choiceRaise {
		for {
			input, err := pterm.DefaultInteractiveTextInput.
				WithDefaultText("Raise by how much? (1-" + strconv.Itoa(view.MaxRaise) + ")").
				Show()
			if err != nil {
				return err
			}
			if raise, err = parseRaise(input, view.MaxRaise); err == nil {
				break
			}
			pterm.Warning.Println(err.Error())
		}
	}

	amount := betAmount(view, choice, raise)
	_, err = e.PlaceBet(ctx, dto.PlaceBetCommand{GameID: view.GameID, Amount: &amount})
	return err
}

func nextRound(ctx context.Context, e engine.GameEngine, view *dto.GameView) error {
	again, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText("Play the next round?").
		WithDefaultValue(true).
		Show()
	if err != nil {
		return err
	}
	if !again {
		pterm.Info.Printfln("Final chips: you %d, AI %d", view.Human.Chips, view.AI.Chips)
		return errQuit
	}
	_, err = e.StartRound(ctx, view.GameID)
	return err
}
