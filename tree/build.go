package tree

import "github.com/lox/hucfr/apperrors"

// outOfPosition is the player who acts first on every street after preflop
// in heads-up play (the big blind). inPosition (the button) acts first
// preflop and last on every later street.
const outOfPosition = 1
const inPosition = 0

// NewRootState builds the GameState for the root of a heads-up hand: blinds
// already posted, button (player 0) to act first.
func NewRootState(startingStack, smallBlind, bigBlind int) GameState {
	return GameState{
		Street:             Preflop,
		Committed:          [2]int{smallBlind, bigBlind},
		RemainingStack:     [2]int{startingStack - smallBlind, startingStack - bigBlind},
		ToAct:              inPosition,
		LastAggressor:      -1,
		BetCountThisStreet: 0,
		CurrentBetToCall:   bigBlind - smallBlind,
	}
}

// estimateNodes computes a closed-form upper bound on tree size by
// multiplying, per street, the worst-case branching factor (maxActionsPerNode)
// raised to the worst-case action-node depth (the street's raise cap plus the
// two unavoidable check/call decisions), summed across intermediate levels.
func estimateNodes(config BettingConfig) int64 {
	ceiling := config.nodeCeiling()
	total := int64(1)
	for street := Preflop; street <= River; street++ {
		branch := int64(config.maxActionsPerNode())
		depth := int64(config.maxBetsFor(street) + 2)

		levelTotal := int64(1)
		factor := int64(1)
		for d := int64(0); d < depth; d++ {
			factor *= branch
			levelTotal += factor
			if levelTotal > ceiling {
				return levelTotal
			}
		}
		total *= levelTotal
		if total > ceiling {
			return total
		}
	}
	return total
}

// Build materializes the full betting-abstraction tree from a root state.
// Chance nodes mark street transitions rather than enumerating boards; the
// CFR engine samples their outcomes during traversal.
func Build(root GameState, config BettingConfig) (*Node, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	estimated := estimateNodes(config)
	ceiling := config.nodeCeiling()
	if estimated > ceiling {
		return nil, &apperrors.TreeTooLarge{Estimated: estimated, Ceiling: ceiling}
	}
	return buildStreetStart(root, config), nil
}

// EstimateNodes exposes the closed-form node-count estimate used by Build's
// gate, for the external config-validation call (§6).
func EstimateNodes(config BettingConfig) int64 {
	return estimateNodes(config)
}

// runOut reports whether at least one player has no chips left, meaning no
// further betting decisions are possible and the hand must run out to
// showdown via chance nodes alone.
func runOut(state GameState) bool {
	return state.RemainingStack[0] == 0 || state.RemainingStack[1] == 0
}

// buildStreetStart dispatches at the start of a street: straight to
// showdown if the street is river and the hand is already decided, through
// an uncontested chance deal if a player is all-in, or into ordinary action
// otherwise.
func buildStreetStart(state GameState, config BettingConfig) *Node {
	if runOut(state) {
		if state.Street == River {
			return terminalShowdown(state, config)
		}
		advanced := advanceStreet(state)
		return &Node{
			Kind:       KindChance,
			State:      state,
			DealStreet: advanced.Street,
			DealCount:  dealCounts[advanced.Street],
			Next:       buildStreetStart(advanced, config),
		}
	}
	return buildActionNode(state, config)
}

// buildActionNode builds a single decision node and recursively builds each
// of its children.
func buildActionNode(state GameState, config BettingConfig) *Node {
	actions := legalActions(state, config)
	node := &Node{Kind: KindAction, State: state, ActingPlayer: state.ToAct}
	node.Edges = make([]Edge, 0, len(actions))
	for _, a := range actions {
		node.Edges = append(node.Edges, Edge{Action: a, Child: buildChild(state, a, config)})
	}
	return node
}

// buildChild applies one action to state and builds whatever comes next: a
// fold terminal, a showdown terminal, a chance node into the next street, or
// the next action node on the same street.
func buildChild(state GameState, action Action, config BettingConfig) *Node {
	if action.Kind == Fold {
		folder := state.ToAct
		next := state
		next.ActionHistory = appendAction(state.ActionHistory, action)
		return &Node{
			Kind:         KindTerminal,
			State:        next,
			TerminalKind: TerminalFold,
			Pot:          next.Pot(config.StartingPot),
			FoldWinner:   1 - folder,
		}
	}

	next := applyAction(state, action, config)
	if streetClosed(next) {
		if next.Street == River {
			return terminalShowdown(next, config)
		}
		advanced := advanceStreet(next)
		return &Node{
			Kind:       KindChance,
			State:      next,
			DealStreet: advanced.Street,
			DealCount:  dealCounts[advanced.Street],
			Next:       buildStreetStart(advanced, config),
		}
	}
	return buildActionNode(next, config)
}

func terminalShowdown(state GameState, config BettingConfig) *Node {
	return &Node{Kind: KindTerminal, State: state, TerminalKind: TerminalShowdown, Pot: state.Pot(config.StartingPot)}
}

// streetClosed reports whether both players have acted on the current
// street and their contributions are equal (current_bet_to_call == 0). The
// preflop big-blind option falls out of this directly: the big blind has not
// yet appeared in action_history when the small blind merely calls, so
// "both acted" is false until the big blind makes an explicit decision.
func streetClosed(state GameState) bool {
	return state.actedThisStreet[0] && state.actedThisStreet[1] && state.CurrentBetToCall == 0
}

// advanceStreet resets street-scoped state and deals into the next street.
// Out of position acts first on every post-flop street.
func advanceStreet(state GameState) GameState {
	next := state
	next.Street = state.Street + 1
	next.LastAggressor = -1
	next.BetCountThisStreet = 0
	next.CurrentBetToCall = 0
	next.ToAct = outOfPosition
	next.actedThisStreet = [2]bool{}
	return next
}

// applyAction computes the GameState resulting from a non-fold action.
func applyAction(state GameState, action Action, config BettingConfig) GameState {
	next := state
	next.ActionHistory = appendAction(state.ActionHistory, action)
	actor := state.ToAct
	opponent := 1 - actor
	next.ToAct = opponent

	switch action.Kind {
	case Check:
		next.actedThisStreet[actor] = true

	case Call:
		actualCall := state.CurrentBetToCall
		if actualCall > state.RemainingStack[actor] {
			actualCall = state.RemainingStack[actor]
		}
		next.Committed[actor] += actualCall
		next.RemainingStack[actor] -= actualCall
		if shortfall := state.CurrentBetToCall - actualCall; shortfall > 0 {
			// All-in call for less: the uncalled portion of the facing bet
			// is returned to the bettor, never contested at showdown.
			next.Committed[opponent] -= shortfall
			next.RemainingStack[opponent] += shortfall
		}
		next.CurrentBetToCall = 0
		next.actedThisStreet[actor] = true

	case Bet, Raise:
		next.Committed[actor] += state.CurrentBetToCall + action.Amount
		next.RemainingStack[actor] -= state.CurrentBetToCall + action.Amount
		next.CurrentBetToCall = action.Amount
		next.BetCountThisStreet = state.BetCountThisStreet + 1
		next.LastAggressor = actor
		next.actedThisStreet = [2]bool{}
		next.actedThisStreet[actor] = true

	case AllIn:
		callPortion := state.CurrentBetToCall
		if callPortion > state.RemainingStack[actor] {
			callPortion = state.RemainingStack[actor]
		}
		raisePortion := state.RemainingStack[actor] - callPortion
		next.Committed[actor] += state.RemainingStack[actor]
		next.RemainingStack[actor] = 0
		next.BetCountThisStreet = state.BetCountThisStreet + 1

		if shortfall := state.CurrentBetToCall - callPortion; shortfall > 0 {
			next.Committed[opponent] -= shortfall
			next.RemainingStack[opponent] += shortfall
		}

		if raisePortion > 0 {
			next.CurrentBetToCall = raisePortion
			next.LastAggressor = actor
			next.actedThisStreet = [2]bool{}
			next.actedThisStreet[actor] = true
		} else {
			next.CurrentBetToCall = 0
			next.actedThisStreet = [2]bool{true, true}
		}
	}

	return next
}

func appendAction(history []Action, a Action) []Action {
	out := make([]Action, len(history)+1)
	copy(out, history)
	out[len(history)] = a
	return out
}
