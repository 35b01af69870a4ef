package game

import (
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/hand"
	"github.com/anhbaysgalan1/numpoker/internal/engine/solver"
)

// resolveFold hands the whole pot to the side that did not fold. Nothing is
// revealed and no cards are banned.
func (g *Game) resolveFold(folder Side) {
	winner := folder.Opponent()
	g.players[folder].folded = true
	g.players[winner].chips += g.pot
	g.players[winner].wins++

	res := g.newResult(winner)
	res.Folder = string(folder)
	g.finishRound(res, events.MethodFold)
}

// resolveShowdown reconstructs both hands from the true rule and the real
// remaining pool. A side with no matching hand scores NoHand and loses.
// Hands sharing a card cost the loser an extra half pot.
func (g *Game) resolveShowdown() {
	pool := g.pool()
	humanPick, aiPick := g.picks[Human], g.picks[AI]
	humanRes := g.showdown.FindBestHand(humanPick.number, g.rule, pool, g.cfg.ShowdownTrials)
	aiRes := g.showdown.FindBestHand(aiPick.number, g.rule, pool, g.cfg.ShowdownTrials)

	human, opp := g.players[Human], g.players[AI]
	winner := Draw
	switch {
	case humanRes.Score > aiRes.Score:
		winner = Human
	case aiRes.Score > humanRes.Score:
		winner = AI
	}

	collision := humanRes.Found() && aiRes.Found() && cards.Overlaps(humanRes.Hand, aiRes.Hand)
	penalty := 0
	if winner == Draw {
		human.chips += g.pot / 2
		opp.chips += g.pot - g.pot/2
	} else {
		w := g.players[winner]
		w.chips += g.pot
		w.wins++
		if collision {
			loser := g.players[winner.Opponent()]
			penalty = min(g.pot/2, loser.chips)
			loser.chips -= penalty
		}
	}

	g.banned.Add(humanRes.Hand...)
	g.banned.Add(aiRes.Hand...)
	if humanRes.Matched {
		g.opponent.Learn(humanPick.number, humanRes.Hand)
	}
	if aiRes.Matched {
		g.opponent.Learn(aiPick.number, aiRes.Hand)
	}

	res := g.newResult(winner)
	res.IsShowdown = true
	res.Collision = collision
	res.Penalty = penalty
	res.HumanScore, res.AIScore = humanRes.Score, aiRes.Score
	res.HumanHand, res.AIHand = humanRes.Hand, aiRes.Hand
	res.HumanHandName = handName(humanRes)
	res.AIHandName = handName(aiRes)
	res.HumanMatched, res.AIMatched = humanRes.Matched, aiRes.Matched

	if collision {
		g.logger.Info("Hand collision", "game_id", g.ID(), "round", g.round, "penalty", penalty)
	}
	g.finishRound(res, events.MethodShowdown)
}

func handName(r solver.Result) string {
	if !r.Found() {
		return hand.Name(hand.NoHand)
	}
	if name, err := hand.Describe(r.Hand); err == nil {
		return name
	}
	return hand.Name(r.Score)
}

func (g *Game) newResult(winner Side) *RoundResult {
	return &RoundResult{
		Round:       g.round,
		Winner:      winner,
		Pot:         g.pot,
		HumanNumber: g.picks[Human].number,
		AINumber:    g.picks[AI].number,
	}
}

// finishRound closes the pot, appends the history record, consumes both
// played numbers and advances the round counter.
func (g *Game) finishRound(res *RoundResult, method string) {
	human, opp := g.players[Human], g.players[AI]
	res.HumanDelta = human.chips - human.roundStart
	res.AIDelta = opp.chips - opp.roundStart
	res.HumanChips, res.AIChips = human.chips, opp.chips

	g.pot = 0
	human.bet, opp.bet = 0, 0
	g.phase = PhaseResult
	g.turn = ""
	g.result = res

	record := events.NewRoundResolved(g.ID(), events.RoundResolved{
		Round:       res.Round,
		HumanNumber: res.HumanNumber,
		AINumber:    res.AINumber,
		Winner:      string(res.Winner),
		Pot:         res.Pot,
		Method:      method,
		HumanScore:  int(res.HumanScore),
		AIScore:     int(res.AIScore),
		Collision:   res.Collision,
		Penalty:     res.Penalty,
	}, g.NextVersion())
	g.history = append(g.history, record)
	g.Raise(record)

	g.consume(Human)
	g.consume(AI)
	g.round++

	g.logger.Debug("Round resolved", "game_id", g.ID(), "round", res.Round,
		"method", method, "winner", res.Winner, "pot", res.Pot)
}

func (g *Game) consume(side Side) {
	p, pk := g.players[side], g.picks[side]
	if !pk.ok || pk.index >= len(p.numbers) {
		return
	}
	p.numbers = append(p.numbers[:pk.index:pk.index], p.numbers[pk.index+1:]...)
}
