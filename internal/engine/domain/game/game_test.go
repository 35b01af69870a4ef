package game

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/anhbaysgalan1/numpoker/internal/engine/ai"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/cards"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/events"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/hand"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		StartingChips:   30,
		LookaheadTrials: 50,
		InsightTrials:   300,
		ShowdownTrials:  2000,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newStartedGame(t *testing.T, d ai.Difficulty, seed int64) *Game {
	t.Helper()
	g := NewGame(rand.New(rand.NewSource(seed)), testConfig())
	_, err := g.StartNewGame(d)
	require.NoError(t, err)
	return g
}

// restrictPool bans every card except keep.
func restrictPool(g *Game, keep []cards.Card) {
	allowed := cards.NewSet(keep...)
	g.banned = cards.NewSet()
	for _, c := range cards.All() {
		if !allowed.Contains(c) {
			g.banned.Add(c)
		}
	}
}

func mustRule(t *testing.T, id string) rules.Rule {
	t.Helper()
	r, err := rules.ByID(id)
	require.NoError(t, err)
	return r
}

func totalChips(g *Game) int {
	return g.players[Human].chips + g.players[AI].chips
}

func TestStartNewGame(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 1)
	s := g.Snapshot()

	assert.Equal(t, PhaseSelect, s.Phase)
	assert.Equal(t, 1, s.Round)
	assert.Equal(t, 1, s.Ante)
	assert.Equal(t, 2, s.Pot)
	assert.Equal(t, 29, s.Human.Chips)
	assert.Equal(t, 29, s.AI.Chips)
	assert.Len(t, s.Human.Numbers, numbersPerPlayer)
	assert.Equal(t, numbersPerPlayer, s.AI.NumbersLeft)
	assert.Nil(t, s.AI.Selected, "AI pick must stay hidden until the human picks")
	assert.True(t, g.picks[AI].ok)
	assert.Equal(t, s.Pot, s.Human.Bet+s.AI.Bet)

	evs := g.PendingEvents()
	require.Len(t, evs, 2)
	assert.Equal(t, events.GameStartedEvent, evs[0].GetEventType())
	assert.Equal(t, events.RoundStartedEvent, evs[1].GetEventType())
}

func TestStartNewGame_UnknownDifficulty(t *testing.T) {
	g := NewGame(rand.New(rand.NewSource(1)), testConfig())
	_, err := g.StartNewGame("LEGENDARY")
	assert.ErrorIs(t, err, ai.ErrUnknownDifficulty)
	assert.Equal(t, Phase(""), g.Phase())
}

func TestCommandsBeforeStart(t *testing.T) {
	g := NewGame(rand.New(rand.NewSource(1)), testConfig())
	_, err := g.SelectCard(0)
	assert.ErrorIs(t, err, ErrNotStarted)
	_, err = g.DecayOxygen()
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestDealNumbers_AIAvoidsHumanNumbers(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := NewGame(rand.New(rand.NewSource(seed)), testConfig())
		_, err := g.StartNewGame(ai.Normal)
		require.NoError(t, err)

		g.rule = mustRule(t, "SUM")
		g.dealNumbers()

		human := map[int]bool{}
		for _, n := range g.players[Human].numbers {
			human[n] = true
		}
		require.Len(t, g.players[AI].numbers, numbersPerPlayer)
		for _, n := range g.players[AI].numbers {
			assert.False(t, human[n], "seed %d: AI holds human number %d", seed, n)
		}
	}
}

func TestSelectCard_OddRoundHumanBetsFirst(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 2)

	s, err := g.SelectCard(2)
	require.NoError(t, err)
	assert.Equal(t, PhaseBetting, s.Phase)
	assert.Equal(t, Human, s.FirstBetter)
	assert.Equal(t, Human, s.Turn)
	require.NotNil(t, s.Human.Selected)
	assert.Equal(t, s.Human.Numbers[2], *s.Human.Selected)
	assert.NotNil(t, s.AI.Selected)

	// a check by the first better never ends betting on its own
	s, err = g.ProcessPlayerBet(0)
	require.NoError(t, err)
	assert.NotEmpty(t, s.AILastAction, "AI must act before the round resolves")

	switch s.Phase {
	case PhaseResult:
		require.NotNil(t, s.Result)
		assert.Len(t, g.History(), 1)
	case PhaseBetting:
		assert.Equal(t, Human, s.Turn)
		assert.Greater(t, s.AI.Bet, s.Human.Bet)
		assert.Equal(t, s.Pot, s.Human.Bet+s.AI.Bet)
	default:
		t.Fatalf("unexpected phase %s", s.Phase)
	}
}

func TestSelectCard_Invalid(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 3)

	_, err := g.SelectCard(numbersPerPlayer)
	assert.ErrorIs(t, err, ErrInvalidIndex)
	_, err = g.SelectCard(-1)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	_, err = g.ProcessPlayerBet(0)
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.Equal(t, PhaseSelect, g.Phase())
}

func TestProcessPlayerBet_Fold(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 4)
	_, err := g.SelectCard(0)
	require.NoError(t, err)

	s, err := g.ProcessPlayerBet(FoldAmount)
	require.NoError(t, err)

	assert.Equal(t, PhaseResult, s.Phase)
	require.NotNil(t, s.Result)
	assert.False(t, s.Result.IsShowdown)
	assert.Equal(t, AI, s.Result.Winner)
	assert.Equal(t, string(Human), s.Result.Folder)
	assert.Equal(t, 29, s.Human.Chips)
	assert.Equal(t, 31, s.AI.Chips)
	assert.Equal(t, -1, s.Result.HumanDelta)
	assert.Equal(t, 1, s.Result.AIDelta)
	assert.Equal(t, 0, s.Pot)
	assert.Zero(t, s.BannedCards)
	assert.Len(t, g.History(), 1)
	assert.Equal(t, events.MethodFold, g.History()[0].Method)
	assert.Len(t, s.Human.Numbers, numbersPerPlayer-1)
	assert.Equal(t, numbersPerPlayer-1, s.AI.NumbersLeft)
	assert.Equal(t, 2, s.Round)
}

func TestProcessPlayerBet_RejectsBelowFold(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 5)
	_, err := g.SelectCard(0)
	require.NoError(t, err)

	_, err = g.ProcessPlayerBet(-2)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, PhaseBetting, g.Phase())
}

func TestProcessPlayerBet_ClampsRaise(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 6)
	_, err := g.SelectCard(0)
	require.NoError(t, err)

	_, err = g.ProcessPlayerBet(100)
	require.NoError(t, err)

	// pot was 2, so at most 1 goes in on top of a zero call
	evs := g.PendingEvents()
	require.Greater(t, len(evs), 3)
	bet, ok := evs[3].(*events.PlayerAction)
	require.True(t, ok)
	assert.Equal(t, string(Human), bet.Player)
	assert.Equal(t, events.PlayerRaiseEvent, bet.GetEventType())
	assert.Equal(t, 1, bet.Amount)
	assert.Equal(t, 3, bet.Pot)
}

func TestProcessPlayerBet_AllInRefundsUncalled(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 6)
	_, err := g.SelectCard(0)
	require.NoError(t, err)

	// the AI has put in its ante and has nothing left to call with
	g.players[AI].chips = 0
	before := totalChips(g) + g.pot
	humanBefore := g.players[Human].chips

	s, err := g.ProcessPlayerBet(1)
	require.NoError(t, err)

	assert.Equal(t, PhaseResult, s.Phase)
	require.NotNil(t, s.Result)
	assert.True(t, s.Result.IsShowdown)
	assert.Equal(t, 2, s.Result.Pot, "the uncalled raise goes back to the human")
	assert.Equal(t, 0, s.Pot)
	assert.Equal(t, before-s.Result.Penalty, totalChips(g))
	switch s.Result.Winner {
	case Human:
		assert.Equal(t, humanBefore+2, s.Human.Chips)
	case AI:
		assert.Equal(t, humanBefore-s.Result.Penalty, s.Human.Chips)
	}
}

func TestStartRound_EvenRoundAIBetsFirst(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 7)
	_, err := g.SelectCard(0)
	require.NoError(t, err)
	_, err = g.ProcessPlayerBet(FoldAmount)
	require.NoError(t, err)

	s, err := g.StartRound()
	require.NoError(t, err)
	assert.Equal(t, PhaseSelect, s.Phase)
	assert.Equal(t, 2, s.Round)
	assert.Equal(t, 4, s.Pot)
	assert.Nil(t, s.Result)

	s, err = g.SelectCard(0)
	require.NoError(t, err)
	assert.Equal(t, AI, s.FirstBetter)
	assert.NotEmpty(t, s.AILastAction)
}

func TestStartRound_WrongPhase(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 8)
	_, err := g.StartRound()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestStartRound_NumbersExhausted(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 9)
	_, err := g.SelectCard(0)
	require.NoError(t, err)
	_, err = g.ProcessPlayerBet(FoldAmount)
	require.NoError(t, err)

	g.players[AI].numbers = nil
	before := g.Snapshot()

	_, err = g.StartRound()
	assert.ErrorIs(t, err, ErrNumbersExhausted)
	assert.Equal(t, before, g.Snapshot())

	s, err := g.EndGame(ReasonNumbersExhausted)
	require.NoError(t, err)
	assert.Equal(t, PhaseGameOver, s.Phase)
	// the human folded round 1, leaving 29 against 31
	assert.Equal(t, AI, winnerOf(g))
}

func winnerOf(g *Game) Side {
	evs := g.PendingEvents()
	ended, ok := evs[len(evs)-1].(*events.GameEnded)
	if !ok {
		return ""
	}
	return Side(ended.Winner)
}

func TestStartRound_InsufficientChipsEndsGame(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 10)
	_, err := g.SelectCard(0)
	require.NoError(t, err)
	_, err = g.ProcessPlayerBet(FoldAmount)
	require.NoError(t, err)

	g.players[Human].chips = 1 // ante for round 2 is 2
	s, err := g.StartRound()
	require.NoError(t, err)
	assert.Equal(t, PhaseGameOver, s.Phase)
	assert.Equal(t, 1, s.Human.Chips)
	assert.Zero(t, s.Pot)
}

func TestDecayOxygen(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 11)

	res, err := g.DecayOxygen()
	require.NoError(t, err)
	assert.True(t, res.HumanDecayed)
	assert.True(t, res.AIDecayed)
	assert.False(t, res.GameOver)
	assert.Equal(t, 28, g.players[Human].chips)

	g.players[AI].chips = 0
	res, err = g.DecayOxygen()
	require.NoError(t, err)
	assert.True(t, res.HumanDecayed)
	assert.False(t, res.AIDecayed)
	assert.True(t, res.GameOver)
	assert.Equal(t, PhaseGameOver, g.Phase())
}

func TestDecayOxygen_InResultIsNoop(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 12)
	_, err := g.SelectCard(0)
	require.NoError(t, err)
	_, err = g.ProcessPlayerBet(FoldAmount)
	require.NoError(t, err)

	before := g.Snapshot()
	_, err = g.DecayOxygen()
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.Equal(t, before, g.Snapshot())
}

func TestGameOver_NoFurtherMutation(t *testing.T) {
	cfg := testConfig()
	cfg.StartingChips = 3
	g := NewGame(rand.New(rand.NewSource(13)), cfg)
	_, err := g.StartNewGame(ai.Easy)
	require.NoError(t, err)

	for g.Phase() != PhaseGameOver {
		_, err := g.DecayOxygen()
		require.NoError(t, err)
	}
	before := g.Snapshot()
	version := g.GetVersion()

	_, err = g.SelectCard(0)
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = g.ProcessPlayerBet(1)
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = g.StartRound()
	assert.ErrorIs(t, err, ErrGameOver)
	_, err = g.DecayOxygen()
	assert.ErrorIs(t, err, ErrGameOver)

	assert.Equal(t, before, g.Snapshot())
	assert.Equal(t, version, g.GetVersion())
}

func TestResolveShowdown_CollisionPenalty(t *testing.T) {
	g := newStartedGame(t, ai.Normal, 14)
	g.rule = mustRule(t, "SUM")
	// dropping a queen gives four kings (sum 64), dropping a king a full house (63)
	pool := cards.MustParseHand("Ks Kh Kd Kc Qs Qh")
	restrictPool(g, pool)

	g.phase = PhaseBetting
	g.picks = map[Side]pick{
		Human: {index: 0, number: 64, ok: true},
		AI:    {index: 0, number: 63, ok: true},
	}
	g.players[Human].chips, g.players[Human].bet, g.players[Human].roundStart = 20, 5, 25
	g.players[AI].chips, g.players[AI].bet, g.players[AI].roundStart = 20, 5, 25
	g.pot = 10
	before := totalChips(g) + g.pot

	g.resolveShowdown()

	s := g.Snapshot()
	require.NotNil(t, s.Result)
	assert.True(t, s.Result.IsShowdown)
	assert.Equal(t, Human, s.Result.Winner)
	assert.True(t, s.Result.Collision)
	assert.Equal(t, 5, s.Result.Penalty)
	assert.Equal(t, hand.FourOfAKind, s.Result.HumanScore.Category())
	assert.Equal(t, hand.FullHouse, s.Result.AIScore.Category())
	assert.Equal(t, 30, s.Human.Chips)
	assert.Equal(t, 15, s.AI.Chips)
	assert.Equal(t, before-5, totalChips(g))
	assert.Equal(t, 52, s.BannedCards)
	assert.Equal(t, 1, s.Human.Wins)
}

func TestResolveShowdown_AILearnsFromRevealedHands(t *testing.T) {
	g := newStartedGame(t, ai.Normal, 17)
	g.rule = mustRule(t, "SUM")
	restrictPool(g, cards.MustParseHand("Ks Kh Kd Kc Qs Qh"))
	before := g.Beliefs()
	require.Equal(t, len(rules.All()), before)

	g.phase = PhaseBetting
	g.picks = map[Side]pick{
		Human: {index: 0, number: 64, ok: true},
		AI:    {index: 0, number: 63, ok: true},
	}
	g.resolveShowdown()

	s := g.Snapshot()
	require.NotNil(t, s.Result)
	require.True(t, s.Result.HumanMatched)
	assert.Less(t, g.Beliefs(), before)
	assert.Contains(t, g.opponent.Beliefs(), g.rule)
}

func TestResolveShowdown_DrawSplitsOddChipToAI(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 15)
	g.rule = mustRule(t, "SUM")
	only := cards.MustParseHand("2s 5h 9d Jc Ks")
	restrictPool(g, only)
	sum := g.rule.Calc(only)

	g.phase = PhaseBetting
	g.picks = map[Side]pick{
		Human: {index: 1, number: sum, ok: true},
		AI:    {index: 1, number: sum, ok: true},
	}
	g.players[Human].chips, g.players[Human].bet = 10, 2
	g.players[AI].chips, g.players[AI].bet = 10, 3
	g.pot = 5

	g.resolveShowdown()

	s := g.Snapshot()
	assert.Equal(t, Draw, s.Result.Winner)
	assert.Zero(t, s.Result.Penalty, "no penalty without a loser")
	assert.Equal(t, 12, s.Human.Chips)
	assert.Equal(t, 13, s.AI.Chips)
}

func TestResolveShowdown_UnfoundHandLoses(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 16)
	g.rule = mustRule(t, "SUM")

	g.phase = PhaseBetting
	g.picks = map[Side]pick{
		Human: {index: 0, number: 1000, ok: true},
		AI:    {index: 0, number: 30, ok: true},
	}
	g.resolveShowdown()

	s := g.Snapshot()
	assert.Equal(t, AI, s.Result.Winner)
	assert.Equal(t, hand.NoHand, s.Result.HumanScore)
	assert.False(t, s.Result.HumanMatched)
	assert.Equal(t, "No Hand", s.Result.HumanHandName)
	assert.False(t, s.Result.Collision)
}

// Plays many seeded games to completion with random human moves and checks
// the pot and chip invariants after every command.
func TestInvariants_RandomPlay(t *testing.T) {
	for _, d := range ai.Difficulties() {
		for seed := int64(100); seed < 104; seed++ {
			g := newStartedGame(t, d, seed)
			moves := rand.New(rand.NewSource(seed))

			for steps := 0; steps < 200 && g.Phase() != PhaseGameOver; steps++ {
				switch g.Phase() {
				case PhaseSelect:
					_, err := g.SelectCard(moves.Intn(len(g.players[Human].numbers)))
					require.NoError(t, err)
				case PhaseBetting:
					_, err := g.ProcessPlayerBet(moves.Intn(5) - 1)
					require.NoError(t, err)
				case PhaseResult:
					res := g.result
					start := g.players[Human].roundStart + g.players[AI].roundStart
					assert.Equal(t, start-res.Penalty, totalChips(g), "%s seed %d round %d", d, seed, res.Round)
					if g.NumbersExhausted() {
						_, err := g.EndGame(ReasonNumbersExhausted)
						require.NoError(t, err)
						continue
					}
					_, err := g.StartRound()
					require.NoError(t, err)
				}

				s := g.Snapshot()
				assert.Equal(t, s.Pot, s.Human.Bet+s.AI.Bet)
				assert.GreaterOrEqual(t, s.Human.Chips, 0)
				assert.GreaterOrEqual(t, s.AI.Chips, 0)
				if s.Phase != PhaseBetting && s.Phase != PhaseSelect {
					assert.Zero(t, s.Pot)
				}
			}
			assert.Equal(t, PhaseGameOver, g.Phase(), "%s seed %d did not finish", d, seed)
			assert.LessOrEqual(t, len(g.History()), numbersPerPlayer)
		}
	}
}

func TestRevealedRule_OnlyAfterGameOver(t *testing.T) {
	g := newStartedGame(t, ai.Easy, 17)
	_, ok := g.RevealedRule()
	assert.False(t, ok)

	g.players[Human].chips = 0
	_, err := g.DecayOxygen()
	require.NoError(t, err)

	r, ok := g.RevealedRule()
	assert.True(t, ok)
	assert.Equal(t, g.rule.ID, r.ID)
}
