package tree

import (
	"math"
	"sort"
)

// legalActions enumerates the legal actions at an action node under config,
// in a stable order: Fold (if facing a bet), Check/Call, then Bet/Raise
// sizes ascending, then AllIn if configured and not already present.
// Per-street cap (§4.C.5): once bet_count_this_street reaches the street's
// cap, only Call/Fold are offered facing a bet, and only Check otherwise.
func legalActions(state GameState, config BettingConfig) []Action {
	var actions []Action

	if state.CurrentBetToCall > 0 {
		actions = append(actions, Action{Kind: Fold})
		actions = append(actions, Action{Kind: Call})
	} else {
		actions = append(actions, Action{Kind: Check})
	}

	atCap := state.BetCountThisStreet >= config.maxBetsFor(state.Street)
	if !atCap {
		actions = append(actions, raiseAmounts(state, config)...)
	}

	max := config.maxActionsPerNode()
	if len(actions) > max {
		// Truncate from the middle of the bet-size ladder rather than the
		// end, so a configured AllIn (always last) survives the cap.
		last := actions[len(actions)-1]
		actions = append(actions[:max-1:max-1], last)
	}
	return actions
}

// raiseAmounts generates the Bet/Raise/AllIn actions available at state: one
// candidate per configured pot fraction, filtered and deduplicated, plus an
// all-in action appended once when configured and not already present.
func raiseAmounts(state GameState, config BettingConfig) []Action {
	pot := state.Pot(config.StartingPot)
	actorRemaining := state.RemainingStack[state.ToAct]
	minIncrement := int(math.Ceil(config.MinRaiseSize * float64(pot)))
	if minIncrement < 1 {
		minIncrement = 1
	}

	kind := Bet
	if state.CurrentBetToCall > 0 {
		kind = Raise
	}

	seen := make(map[int]bool)
	var amounts []int
	for _, frac := range config.BetSizes {
		amount := int(math.Round(frac * float64(pot)))
		if amount <= 0 {
			continue
		}
		if amount < minIncrement {
			continue // below the minimum raise increment over the facing bet
		}
		totalOutlay := state.CurrentBetToCall + amount
		if totalOutlay >= actorRemaining {
			continue // at-or-above the full stack is represented by AllIn only
		}
		if seen[amount] {
			continue
		}
		seen[amount] = true
		amounts = append(amounts, amount)
	}
	sort.Ints(amounts)

	out := make([]Action, 0, len(amounts)+1)
	for _, amount := range amounts {
		out = append(out, Action{Kind: kind, Amount: amount})
	}

	if config.AllowAllIn && actorRemaining > 0 {
		allInAmount := actorRemaining - state.CurrentBetToCall
		if !seen[allInAmount] {
			out = append(out, Action{Kind: AllIn, Amount: allInAmount})
		}
	}
	return out
}
