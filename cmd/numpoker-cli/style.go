package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anhbaysgalan1/numpoker/internal/application/dto"
	"github.com/anhbaysgalan1/numpoker/internal/engine/domain/game"
	"github.com/pterm/pterm"
)

const (
	choiceFold     = "Fold"
	choiceCheck    = "Check"
	choiceCall     = "Call"
	choiceRaise    = "Raise"
	choiceMaxRaise = "Max raise"
)

// numberOptions labels the human's remaining numbers for the select prompt.
func numberOptions(view *dto.GameView) []string {
	options := make([]string, len(view.Human.Numbers))
	for i, n := range view.Human.Numbers {
		options[i] = fmt.Sprintf("%d) %d", i+1, n)
	}
	return options
}

// optionIndex recovers the index from a label made by numberOptions.
func optionIndex(option string) (int, error) {
	prefix, _, ok := strings.Cut(option, ")")
	if !ok {
		return 0, fmt.Errorf("unrecognised option %q", option)
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

// betChoices lists what the human may do when it is their turn. Folding is
// always allowed.
func betChoices(view *dto.GameView) []string {
	choices := []string{choiceFold}
	if view.CallAmount > 0 {
		choices = append(choices, choiceCall)
	} else {
		choices = append(choices, choiceCheck)
	}
	if view.MaxRaise > 0 && view.Human.Chips > view.CallAmount {
		choices = append(choices, choiceRaise, choiceMaxRaise)
	}
	return choices
}

// betAmount turns a choice into the chips sent to the engine. raise only
// matters for choiceRaise.
func betAmount(view *dto.GameView, choice string, raise int) int {
	switch choice {
	case choiceFold:
		return game.FoldAmount
	case choiceCheck:
		return 0
	case choiceCall:
		return view.CallAmount
	case choiceRaise:
		return view.CallAmount + raise
	case choiceMaxRaise:
		return min(view.CallAmount+view.MaxRaise, view.Human.Chips)
	}
	return 0
}

// parseRaise accepts a raise between 1 and max.
func parseRaise(input string, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", input)
	}
	if n < 1 || n > max {
		return 0, fmt.Errorf("raise must be between 1 and %d", max)
	}
	return n, nil
}

func humanPanel(view *dto.GameView) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(6).WithTopPadding(1).WithBottomPadding(1)
	numbers := make([]string, len(view.Human.Numbers))
	for i, n := range view.Human.Numbers {
		numbers[i] = strconv.Itoa(n)
	}
	selected := "-"
	if view.Human.Selected != nil {
		selected = pterm.LightCyan(strconv.Itoa(*view.Human.Selected))
	}
	return pbox.WithTitle("You").WithTitleTopLeft().Sprintf(
		"Chips: %d\nWins: %d\nBet: %d\nPlaying: %s\nNumbers: %s",
		view.Human.Chips, view.Human.Wins, view.Human.Bet, selected, strings.Join(numbers, "  "))
}

func aiPanel(view *dto.GameView) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	last := view.AILastAction
	if last == "" {
		last = "-"
	}
	status := pterm.LightGreen("Active")
	if view.AI.Folded {
		status = pterm.LightRed("Folded")
	}
	return pbox.WithTitle("AI (" + view.Difficulty + ")").WithTitleTopLeft().Sprintf(
		"%s\nChips: %d\nWins: %d\nBet: %d\nNumbers left: %d\nLast action: %s",
		status, view.AI.Chips, view.AI.Wins, view.AI.Bet, view.AI.NumbersLeft, last)
}

func tablePanel(view *dto.GameView) string {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	return pbox.WithTitle(pterm.LightYellow("|ROUND " + strconv.Itoa(view.Round) + "|")).WithTitleTopCenter().Sprintf(
		"Ante: %d\nPot: %d\nTo call: %d\nMax raise: %d\nBanned cards: %d",
		view.Ante, view.Pot, view.CallAmount, view.MaxRaise, len(view.BannedCards))
}

func printState(view *dto.GameView) {
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		{{Data: aiPanel(view)}, {Data: tablePanel(view)}},
		{{Data: humanPanel(view)}},
	}).Render()
}

func describeHand(h *dto.HandView) string {
	if h == nil {
		return "-"
	}
	labels := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		labels[i] = c.Label
	}
	if len(labels) == 0 {
		return h.Name
	}
	return fmt.Sprintf("%s [%s]", h.Name, strings.Join(labels, " "))
}

// resultText is the body of the round result box.
func resultText(r *dto.ResultView) string {
	var b strings.Builder
	switch r.Winner {
	case string(game.Human):
		b.WriteString(pterm.LightGreen("You win the pot of "+strconv.Itoa(r.Pot)) + "\n")
	case string(game.AI):
		b.WriteString(pterm.LightRed("The AI wins the pot of "+strconv.Itoa(r.Pot)) + "\n")
	default:
		b.WriteString(pterm.LightYellow("Draw, the pot of "+strconv.Itoa(r.Pot)+" is split") + "\n")
	}
	if r.IsShowdown {
		fmt.Fprintf(&b, "Your %d: %s\n", r.HumanNumber, describeHand(r.HumanHand))
		fmt.Fprintf(&b, "AI %d: %s\n", r.AINumber, describeHand(r.AIHand))
	} else if r.Folder != "" {
		fmt.Fprintf(&b, "%s folded\n", r.Folder)
	}
	if r.Collision {
		fmt.Fprintf(&b, "%s (penalty %d)\n", pterm.LightMagenta("Hands collided"), r.Penalty)
	}
	fmt.Fprintf(&b, "Chips: you %+d, AI %+d", r.HumanDelta, r.AIDelta)
	return b.String()
}

func printResult(view *dto.GameView) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	pbox.WithTitle(pterm.LightGreen("|RESULT|")).WithTitleTopCenter().Println(resultText(view.Result))
}

// historyRows is the history table including its header.
func historyRows(history []dto.RoundView) [][]string {
	rows := [][]string{{"Round", "You", "AI", "Winner", "Pot", "Method", "Collision"}}
	for _, h := range history {
		collision := ""
		if h.Collision {
			collision = fmt.Sprintf("yes (-%d)", h.Penalty)
		}
		rows = append(rows, []string{
			strconv.Itoa(h.Round),
			strconv.Itoa(h.HumanNumber),
			strconv.Itoa(h.AINumber),
			h.Winner,
			strconv.Itoa(h.Pot),
			h.Method,
			collision,
		})
	}
	return rows
}

func printGameOver(view *dto.GameView, history []dto.RoundView) {
	if len(history) > 0 {
		pterm.DefaultTable.WithHasHeader().WithData(historyRows(history)).Render()
	}

	var outcome string
	switch {
	case view.Human.Chips > view.AI.Chips:
		outcome = pterm.LightGreen("You win!")
	case view.Human.Chips < view.AI.Chips:
		outcome = pterm.LightRed("The AI wins.")
	default:
		outcome = pterm.LightYellow("It's a draw.")
	}
	rule := "unknown"
	if view.Rule != nil {
		rule = fmt.Sprintf("%s: %s", view.Rule.Name, view.Rule.Description)
	}
	pterm.DefaultBox.WithTitle(pterm.LightYellow("|GAME OVER|")).WithTitleTopCenter().Printfln(
		"%s\nFinal chips: you %d, AI %d\nRounds won: you %d, AI %d\nThe rule was %s",
		outcome, view.Human.Chips, view.AI.Chips, view.Human.Wins, view.AI.Wins, rule)
}
