package tree

import "github.com/lox/hucfr/poker"

// Street identifies a betting round.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

func (s Street) String() string {
	if int(s) < len(streetNames) {
		return streetNames[s]
	}
	return "unknown"
}

// dealCounts gives the number of community cards a Chance node at the start
// of each street deals (preflop itself deals none — the tree root already
// starts past the deal).
var dealCounts = [...]int{Preflop: 0, Flop: 3, Turn: 1, River: 1}

// ActionKind tags the variant of an Action.
type ActionKind int

const (
	Fold ActionKind = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (k ActionKind) String() string {
	switch k {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Bet:
		return "bet"
	case Raise:
		return "raise"
	case AllIn:
		return "allin"
	default:
		return "unknown"
	}
}

// Action is a tagged action record. Amount is the absolute number of chips
// added on top of any call; it is meaningful only for Bet, Raise, and AllIn.
type Action struct {
	Kind   ActionKind
	Amount int
}

// GameState is the payload carried at every tree node.
type GameState struct {
	Street             Street
	Board              poker.Hand
	Committed          [2]int
	RemainingStack     [2]int
	ToAct              int
	LastAggressor      int // -1 if nobody has opened betting this street
	BetCountThisStreet int
	CurrentBetToCall   int
	ActionHistory      []Action

	// actedThisStreet tracks whether each player has made an explicit
	// decision since the current street began, distinct from having chips
	// already committed via blinds. It is reset on every street transition.
	actedThisStreet [2]bool
}

// EffectiveStack is min(remaining_stack).
func (g GameState) EffectiveStack() int {
	if g.RemainingStack[0] < g.RemainingStack[1] {
		return g.RemainingStack[0]
	}
	return g.RemainingStack[1]
}

// Pot is the starting pot plus both players' total commitments.
func (g GameState) Pot(startingPot int) int {
	return startingPot + g.Committed[0] + g.Committed[1]
}

// TerminalKind tags how a Terminal node resolves.
type TerminalKind int

const (
	TerminalFold TerminalKind = iota
	TerminalShowdown
)

// Edge is one (Action, child) pair owned by an Action node.
type Edge struct {
	Action Action
	Child  *Node
}

// NodeKind tags the TreeNode variant.
type NodeKind int

const (
	KindAction NodeKind = iota
	KindChance
	KindTerminal
)

// Node is the TreeNode tagged variant: Chance, Action, or Terminal.
type Node struct {
	Kind  NodeKind
	State GameState

	// Action node fields.
	ActingPlayer int
	Edges        []Edge

	// Chance node fields: the street being dealt into and how many cards.
	DealStreet Street
	DealCount  int
	Next       *Node

	// Terminal node fields.
	TerminalKind TerminalKind
	Pot          int
	FoldWinner   int // valid only when TerminalKind == TerminalFold
}

// IsTerminal reports whether n is a Terminal node.
func (n *Node) IsTerminal() bool { return n.Kind == KindTerminal }

// IsChance reports whether n is a Chance node.
func (n *Node) IsChance() bool { return n.Kind == KindChance }

// ActingPlayerOf returns the player to act at an Action node.
func (n *Node) ActingPlayerOf() int { return n.ActingPlayer }
