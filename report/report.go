// Package report reads out a trained Blueprint: per-infoset average
// strategies aggregated by hand-class, per-combo equity against an opponent
// range, and board-texture tags, plus a read-only runtime Policy for
// sampling a live action from a persisted blueprint.
package report

import (
	"math/rand"
	"sort"

	"github.com/lox/hucfr/poker"
	"github.com/lox/hucfr/rangepkg"
	"github.com/lox/hucfr/solver"
	"github.com/lox/hucfr/tree"
)

// HandClassStrategy is one hand-class's aggregated action distribution at a
// fixed public situation: the range-weighted average, across every combo in
// that class, of the trained strategy for the bucket that combo maps into.
type HandClassStrategy struct {
	HandClass string
	Actions   []float64
	Weight    float64 // total range weight backing this aggregate
	Equity    float64 // hero's equity vs the opponent range on the given board
}

// Situation pins down the public state a report is computed for: whose turn
// it is, what street/board it is, and the pot/to-call buckets the trainer
// would have used to key infosets at that point in the tree.
type Situation struct {
	Player      int
	Street      tree.Street
	Board       poker.Hand
	Pot         int
	ToCall      int
	ActionCount int
}

// Report is the read-out of a trained Blueprint for one Situation: the
// hand-class breakdown for the acting player's range, and the board's
// texture tags.
type Report struct {
	Situation  Situation
	ByHandClass []HandClassStrategy
	BoardTags   []string
}

// Build aggregates bp's average strategy by hand-class for heroRange at sit,
// computing each class's equity against villainRange on sit.Board via
// poker.Equity. Combos whose bucket has no recorded infoset fall back to a
// uniform distribution over sit.ActionCount, matching Policy's fallback.
func Build(bp *solver.Blueprint, mapper *solver.BucketMapper, sit Situation, heroRange, villainRange *rangepkg.Range, equityTrials int, rng *rand.Rand) (*Report, error) {
	boardBucket := 0
	if sit.Board.CountCards() >= 3 {
		boardBucket = mapper.BoardBucket(sit.Board)
	}
	potBucket := solver.PotBucket(sit.Pot)
	toCallBucket := solver.ToCallBucket(sit.ToCall)

	villainCombos := villainRange.Feasible(sit.Board)

	type accum struct {
		actions []float64
		weight  float64
		equitySum float64
	}
	byClass := make(map[string]*accum)

	for _, combo := range heroRange.Feasible(sit.Board) {
		hole := poker.NewHand(combo.Card1, combo.Card2)
		class := rangepkg.Combo{Card1: combo.Card1, Card2: combo.Card2}.HandClass()

		key := solver.InfoSetKey{
			Street:       sit.Street,
			Player:       sit.Player,
			HoleBucket:   mapper.HoleBucket(hole),
			BoardBucket:  boardBucket,
			PotBucket:    potBucket,
			ToCallBucket: toCallBucket,
		}

		strat, ok := bp.Strategy(key)
		if !ok {
			strat = uniform(sit.ActionCount)
		}

		equity, err := poker.Equity(rng, combo.Card1, combo.Card2, villainCombos, sit.Board, equityTrials)
		if err != nil {
			return nil, err
		}

		a, exists := byClass[class]
		if !exists {
			a = &accum{actions: make([]float64, sit.ActionCount)}
			byClass[class] = a
		}
		for i := 0; i < sit.ActionCount && i < len(strat); i++ {
			a.actions[i] += strat[i] * combo.Weight
		}
		a.equitySum += equity * combo.Weight
		a.weight += combo.Weight
	}

	out := make([]HandClassStrategy, 0, len(byClass))
	for class, a := range byClass {
		actions := make([]float64, sit.ActionCount)
		equity := 0.0
		if a.weight > 0 {
			for i := range actions {
				actions[i] = a.actions[i] / a.weight
			}
			equity = a.equitySum / a.weight
		}
		out = append(out, HandClassStrategy{
			HandClass: class,
			Actions:   actions,
			Weight:    a.weight,
			Equity:    equity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HandClass < out[j].HandClass })

	return &Report{
		Situation:   sit,
		ByHandClass: out,
		BoardTags:   BoardTags(sit.Board),
	}, nil
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	v := 1.0 / float64(n)
	for i := range out {
		out[i] = v
	}
	return out
}
