// Package tree builds the betting-abstraction game tree the solver traverses:
// a finite action tree over a heads-up no-limit hold'em hand, with chance
// nodes marking street transitions rather than enumerating every possible
// board as an explicit child.
package tree

import (
	"fmt"

	"github.com/lox/hucfr/apperrors"
)

// BettingConfig parameterizes the bet sizes and raise caps the tree builder
// uses to discretize the otherwise-continuous NLHE action space.
type BettingConfig struct {
	// BetSizes is the ordered list of positive pot fractions offered as
	// bet/raise sizes at every action node, e.g. [0.33, 0.75, 1.5].
	BetSizes []float64

	// MaxBetsPerStreet caps the number of bets, raises and all-ins combined
	// the tree allows on a single street, keyed by street name ("preflop",
	// "flop", "turn", "river"). A missing street falls back to
	// DefaultMaxBetsPerStreet.
	MaxBetsPerStreet map[string]int

	// AllowAllIn, when true, always offers an all-in action in addition to
	// the configured pot-fraction sizes.
	AllowAllIn bool

	// MinRaiseSize is the minimum legal raise increment, expressed as a
	// fraction of the pot at the time of the raise. A candidate raise whose
	// increment over the facing bet falls short of MinRaiseSize*pot is
	// elided from the generated action list.
	MinRaiseSize float64

	// StartingStack is each player's starting stack, in chips.
	StartingStack int

	// StartingPot is the pot already committed before the tree's root node
	// (e.g. blinds posted).
	StartingPot int

	// MaxActionsPerNode caps how many sibling actions (including fold,
	// check/call, and every generated bet size) a single decision node may
	// carry, keeping the branching factor bounded even when many bet sizes
	// are configured.
	MaxActionsPerNode int

	// NodeCeiling bounds the estimated node count the builder will accept
	// before refusing to build, per TreeTooLarge.
	NodeCeiling int64
}

const (
	// DefaultMaxActionsPerNode is used when a config leaves
	// MaxActionsPerNode unset or non-positive.
	DefaultMaxActionsPerNode = 8

	// DefaultNodeCeiling is used when a config leaves NodeCeiling unset or
	// non-positive.
	DefaultNodeCeiling = 50_000_000
)

// DefaultMaxBetsPerStreet is used for any street absent from MaxBetsPerStreet.
const DefaultMaxBetsPerStreet = 3

var streetNames = []string{"preflop", "flop", "turn", "river"}

// maxBetsFor returns the configured raise cap for a street, or
// DefaultMaxBetsPerStreet if unconfigured.
func (c BettingConfig) maxBetsFor(street Street) int {
	if n, ok := c.MaxBetsPerStreet[streetNames[street]]; ok {
		return n
	}
	return DefaultMaxBetsPerStreet
}

func (c BettingConfig) maxActionsPerNode() int {
	if c.MaxActionsPerNode > 0 {
		return c.MaxActionsPerNode
	}
	return DefaultMaxActionsPerNode
}

func (c BettingConfig) nodeCeiling() int64 {
	if c.NodeCeiling > 0 {
		return c.NodeCeiling
	}
	return DefaultNodeCeiling
}

// Validate rejects configurations that cannot produce a well-formed tree.
func (c BettingConfig) Validate() error {
	if c.StartingStack <= 0 {
		return &apperrors.InvalidConfig{Field: "StartingStack", Reason: "must be positive"}
	}
	if c.StartingPot < 0 {
		return &apperrors.InvalidConfig{Field: "StartingPot", Reason: "must not be negative"}
	}
	if c.MinRaiseSize <= 0 {
		return &apperrors.InvalidConfig{Field: "MinRaiseSize", Reason: "must be positive"}
	}
	if len(c.BetSizes) == 0 {
		return &apperrors.InvalidConfig{Field: "BetSizes", Reason: "must not be empty"}
	}
	for _, f := range c.BetSizes {
		if f <= 0 {
			return &apperrors.InvalidConfig{Field: "BetSizes", Reason: fmt.Sprintf("pot fraction %v must be positive", f)}
		}
	}
	for street, n := range c.MaxBetsPerStreet {
		if !validStreetName(street) {
			return &apperrors.InvalidConfig{Field: "MaxBetsPerStreet", Reason: fmt.Sprintf("unknown street %q", street)}
		}
		if n < 0 {
			return &apperrors.InvalidConfig{Field: "MaxBetsPerStreet", Reason: "must not be negative"}
		}
	}
	return nil
}

func validStreetName(s string) bool {
	for _, n := range streetNames {
		if n == s {
			return true
		}
	}
	return false
}
