package game

import (
	"errors"
	"fmt"

	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/rules"
)

var (
	ErrNotStarted       = errors.New("game not started")
	ErrWrongPhase       = errors.New("action not allowed in current phase")
	ErrNotYourTurn      = errors.New("not player's turn")
	ErrInvalidIndex     = errors.New("invalid number index")
	ErrInvalidAmount    = errors.New("invalid bet amount")
	ErrGameOver         = errors.New("game is over")
	ErrNumbersExhausted = errors.New("numbers exhausted")
)

// FoldAmount is the bet amount that means fold.
const FoldAmount = -1

// AI action labels shown to the human.
const (
	labelFold  = "FOLD"
	labelCheck = "CHECK"
	labelCall  = "CALL"
	labelRaise = "RAISE"
)

func (g *Game) expectPhase(want Phase) error {
	switch g.phase {
	case "":
		return ErrNotStarted
	case PhaseGameOver:
		return ErrGameOver
	case want:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWrongPhase, g.phase)
}

// StartNewGame resets everything, picks the secret rule, deals both number
// sequences and opens round 1.
func (g *Game) StartNewGame(difficulty ai.Difficulty) (Snapshot, error) {
	d, err := ai.ParseDifficulty(string(difficulty))
	if err != nil {
		return Snapshot{}, err
	}

	g.difficulty = d
	g.opponent = ai.NewPlayer(d, g.rng,
		ai.WithLookaheadTrials(g.cfg.LookaheadTrials),
		ai.WithLogger(g.logger))

	all := rules.All()
	g.rule = all[g.rng.Intn(len(all))]
	g.banned = cards.NewSet()
	g.history = nil
	g.result = nil
	g.round = 1
	for _, p := range g.players {
		*p = player{chips: g.cfg.StartingChips}
	}
	g.dealNumbers()

	g.logger.Debug("New game", "game_id", g.ID(), "difficulty", d, "rule", g.rule.ID)
	g.Raise(events.NewGameStarted(g.ID(), string(d), g.cfg.StartingChips,
		g.players[Human].numbers, g.NextVersion()))

	g.startRound()
	return g.Snapshot(), nil
}

// StartRound opens the next round after a result. It refuses, without
// changing anything, when either number sequence is used up; ending the game
// in that case is left to the caller.
func (g *Game) StartRound() (Snapshot, error) {
	if err := g.expectPhase(PhaseResult); err != nil {
		return Snapshot{}, err
	}
	if g.NumbersExhausted() {
		return Snapshot{}, ErrNumbersExhausted
	}
	g.startRound()
	return g.Snapshot(), nil
}

// startRound collects the ante (equal to the round number) and lets the AI
// pick its number in secret. A side that cannot pay the ante ends the game.
func (g *Game) startRound() {
	g.phase = PhaseSelect
	g.turn = ""
	g.firstBetter = ""
	g.pot = 0
	g.actions = 0
	g.lastAction = ""
	g.result = nil
	g.picks = map[Side]pick{}
	for _, p := range g.players {
		p.bet = 0
		p.folded = false
		p.roundStart = p.chips
	}

	ante := g.round
	if g.players[Human].chips < ante || g.players[AI].chips < ante {
		g.endGame(ReasonInsufficientChips)
		return
	}
	g.pay(Human, ante)
	g.pay(AI, ante)

	opp := g.players[AI]
	var insight *ai.Insight
	if g.difficulty.Omniscient() {
		insight = &ai.Insight{Rule: g.rule, Pool: g.pool()}
	}
	if idx := g.opponent.DecideNumberToPlay(opp.numbers, insight); idx >= 0 {
		g.picks[AI] = pick{index: idx, number: opp.numbers[idx], ok: true}
	}

	g.Raise(events.NewRoundStarted(g.ID(), g.round, ante, g.pot, g.NextVersion()))
}

// SelectCard locks in the human's number and opens betting. On even rounds
// the AI bets first and its action is already applied to the returned
// snapshot.
func (g *Game) SelectCard(index int) (Snapshot, error) {
	if err := g.expectPhase(PhaseSelect); err != nil {
		return Snapshot{}, err
	}
	human := g.players[Human]
	if index < 0 || index >= len(human.numbers) {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	if !g.picks[AI].ok {
		return Snapshot{}, ErrNumbersExhausted
	}

	g.picks[Human] = pick{index: index, number: human.numbers[index], ok: true}
	g.phase = PhaseBetting
	g.firstBetter = Human
	if g.round%2 == 0 {
		g.firstBetter = AI
	}
	g.turn = g.firstBetter
	g.actions = 0

	g.Raise(events.NewNumberSelected(g.ID(), g.round, g.picks[Human].number,
		g.picks[AI].number, string(g.firstBetter), g.NextVersion()))

	if g.turn == AI {
		g.aiTurn()
	}
	return g.Snapshot(), nil
}

// ProcessPlayerBet applies the human's bet. FoldAmount folds, 0 checks (or
// pays nothing towards an outstanding bet), and a positive amount is paid
// into the pot after clamping to the raise limit and to the human's chips.
func (g *Game) ProcessPlayerBet(amount int) (Snapshot, error) {
	if err := g.expectPhase(PhaseBetting); err != nil {
		return Snapshot{}, err
	}
	if g.turn != Human {
		return Snapshot{}, ErrNotYourTurn
	}
	if amount < FoldAmount {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	if amount == FoldAmount {
		g.recordAction(Human, events.PlayerFoldEvent, 0)
		g.resolveFold(Human)
		return g.Snapshot(), nil
	}

	callDiff := g.players[AI].bet - g.players[Human].bet
	if limit := callDiff + g.maxRaise(); amount > limit {
		amount = limit
	}
	paid := g.pay(Human, amount)
	g.actions++
	g.recordAction(Human, actionEvent(paid, callDiff, g.players[Human].chips), paid)

	g.afterAction()
	return g.Snapshot(), nil
}

// afterAction routes the turn once a side has put chips in. Equal totals
// end betting, except right after the opening action of the phase, which
// hands the turn over. Unequal totals go to the side that is behind; if
// that side has nothing left, the uncalled chips go back and the hand is
// shown down.
func (g *Game) afterAction() {
	human, opp := g.players[Human], g.players[AI]

	if human.bet == opp.bet {
		if g.actions == 1 {
			g.turn = g.turn.Opponent()
			if g.turn == AI {
				g.aiTurn()
			}
			return
		}
		g.resolveShowdown()
		return
	}

	behind, ahead := Human, AI
	if opp.bet < human.bet {
		behind, ahead = AI, Human
	}
	if g.players[behind].chips == 0 {
		g.refundUncalled(ahead, behind)
		g.resolveShowdown()
		return
	}

	g.turn = behind
	if g.turn == AI {
		g.aiTurn()
	}
}

func (g *Game) refundUncalled(ahead, behind Side) {
	excess := g.players[ahead].bet - g.players[behind].bet
	g.players[ahead].bet -= excess
	g.players[ahead].chips += excess
	g.pot -= excess
}

// aiTurn asks the AI for a decision and applies it. Omniscient players get
// both exact hand scores.
func (g *Game) aiTurn() {
	human, opp := g.players[Human], g.players[AI]
	callDiff := human.bet - opp.bet

	bc := ai.BetContext{
		CallDiff: callDiff,
		Chips:    opp.chips,
		MaxRaise: g.maxRaise(),
		Round:    g.round,
	}
	if g.difficulty.Omniscient() {
		pool := g.pool()
		mine := g.insight.FindBestHand(g.picks[AI].number, g.rule, pool, g.cfg.InsightTrials).Score
		theirs := g.insight.FindBestHand(g.picks[Human].number, g.rule, pool, g.cfg.InsightTrials).Score
		bc.MyScore, bc.OpponentScore = &mine, &theirs
	}

	action := g.opponent.DecideAction(bc)
	switch action.Type {
	case ai.Fold:
		g.lastAction = labelFold
		g.recordAction(AI, events.PlayerFoldEvent, 0)
		g.resolveFold(AI)
		return
	case ai.Raise:
		g.lastAction = labelRaise
		paid := g.pay(AI, callDiff+action.Amount)
		g.actions++
		g.recordAction(AI, actionEvent(paid, callDiff, opp.chips), paid)
	default:
		g.lastAction = labelCall
		if callDiff == 0 {
			g.lastAction = labelCheck
		}
		paid := g.pay(AI, callDiff)
		g.actions++
		g.recordAction(AI, actionEvent(paid, callDiff, opp.chips), paid)
	}

	g.logger.Debug("AI acted", "game_id", g.ID(), "action", g.lastAction, "pot", g.pot)
	g.afterAction()
}

func actionEvent(paid, callDiff, chipsLeft int) events.EventType {
	switch {
	case chipsLeft == 0 && paid > 0:
		return events.PlayerAllInEvent
	case paid == 0 && callDiff == 0:
		return events.PlayerCheckEvent
	case paid > callDiff:
		return events.PlayerRaiseEvent
	}
	return events.PlayerCallEvent
}

func (g *Game) recordAction(side Side, eventType events.EventType, amount int) {
	g.Raise(events.NewPlayerAction(g.ID(), eventType, g.round, string(side), amount, g.pot, g.NextVersion()))
}

// DecayOxygen takes one chip from every side that still has any. It does
// nothing outside SELECT and BETTING. A side reaching zero ends the game.
func (g *Game) DecayOxygen() (DecayResult, error) {
	if g.phase != PhaseSelect && g.phase != PhaseBetting {
		if err := g.expectPhase(PhaseSelect); err != nil {
			return DecayResult{}, err
		}
	}

	var res DecayResult
	if p := g.players[Human]; p.chips > 0 {
		p.chips--
		res.HumanDecayed = true
	}
	if p := g.players[AI]; p.chips > 0 {
		p.chips--
		res.AIDecayed = true
	}
	res.GameOver = g.players[Human].chips <= 0 || g.players[AI].chips <= 0

	g.Raise(events.NewOxygenDecayed(g.ID(), res.HumanDecayed, res.AIDecayed,
		g.players[Human].chips, g.players[AI].chips, res.GameOver, g.NextVersion()))
	if res.GameOver {
		g.endGame(ReasonOxygenDepleted)
	}
	return res, nil
}

// EndGame finishes a game whose round has been settled, typically because
// the number sequences ran out.
func (g *Game) EndGame(reason string) (Snapshot, error) {
	if err := g.expectPhase(PhaseResult); err != nil {
		return Snapshot{}, err
	}
	g.endGame(reason)
	return g.Snapshot(), nil
}

// endGame is terminal. Chips still committed to an open round go back to
// the side that committed them.
func (g *Game) endGame(reason string) {
	for _, p := range g.players {
		p.chips += p.bet
		p.bet = 0
	}
	g.pot = 0
	g.phase = PhaseGameOver
	g.turn = ""

	human, opp := g.players[Human], g.players[AI]
	winner := Draw
	switch {
	case human.chips > opp.chips:
		winner = Human
	case opp.chips > human.chips:
		winner = AI
	}

	g.logger.Info("Game over", "game_id", g.ID(), "reason", reason, "winner", winner,
		"human_chips", human.chips, "ai_chips", opp.chips)
	g.Raise(events.NewGameEnded(g.ID(), reason, string(winner), human.chips, opp.chips,
		human.wins, opp.wins, g.NextVersion()))
}
