package solver

import (
	"math/rand"
	"time"

	"github.com/lox/hucfr/poker"
	"github.com/lox/hucfr/tree"
)

// TraversalStats records per-iteration traversal volume, surfaced through
// Progress so a caller can sanity-check the solver is actually walking the
// tree it was given.
type TraversalStats struct {
	NodesVisited  int
	TerminalNodes int
	MaxDepth      int
	IterationTime time.Duration
}

// iterationContext bundles everything one call to traverse needs that stays
// fixed for the duration of a single iteration: the sampled private holes,
// the table shared across iterations, and the deck the chance nodes deal
// from as the traversal walks deeper into the tree.
type iterationContext struct {
	regrets    *RegretTable
	bucket     *BucketMapper
	sampling   SamplingMode
	updateOpts RegretUpdateOptions
	holes      [2]poker.Hand
	deck       *poker.Deck
	sampler    *rand.Rand
	stats      *TraversalStats
}

// traverse walks node for the target player's regret update, recursing
// through chance nodes by dealing from ctx.deck and through action nodes by
// either full enumeration (update player, or SamplingModeFullTraversal) or a
// single sampled action (external sampling, non-target player). board is the
// actual community cards dealt so far on this path; it is threaded
// separately from node.State.Board because the built tree is abstraction-
// level and carries no concrete deal.
func traverse(ctx *iterationContext, node *tree.Node, board poker.Hand, target int, depth int, reachPlayer, reachOthers float64) (float64, error) {
	if ctx.stats != nil {
		ctx.stats.NodesVisited++
		if depth > ctx.stats.MaxDepth {
			ctx.stats.MaxDepth = depth
		}
	}

	switch node.Kind {
	case tree.KindTerminal:
		if ctx.stats != nil {
			ctx.stats.TerminalNodes++
		}
		return terminalUtility(node, board, ctx.holes, target), nil

	case tree.KindChance:
		dealt := ctx.deck.Deal(node.DealCount)
		nextBoard := board | poker.NewHand(dealt...)
		return traverse(ctx, node.Next, nextBoard, target, depth+1, reachPlayer, reachOthers)

	default:
		return traverseAction(ctx, node, board, target, depth, reachPlayer, reachOthers)
	}
}

func traverseAction(ctx *iterationContext, node *tree.Node, board poker.Hand, target int, depth int, reachPlayer, reachOthers float64) (float64, error) {
	key := infoSetKey(ctx.bucket, node, board, ctx.holes[node.ActingPlayer])
	entry := ctx.regrets.Get(key, len(node.Edges))
	strategy := entry.Strategy()

	if node.ActingPlayer == target {
		util := make([]float64, len(node.Edges))
		nodeUtil := 0.0
		for i, edge := range node.Edges {
			u, err := traverse(ctx, edge.Child, board, target, depth+1, reachPlayer*strategy[i], reachOthers)
			if err != nil {
				return 0, err
			}
			util[i] = u
			nodeUtil += strategy[i] * u
		}

		regret := make([]float64, len(node.Edges))
		for i := range node.Edges {
			regret[i] = (util[i] - nodeUtil) * reachOthers
		}
		entry.Update(regret, strategy, reachPlayer, ctx.updateOpts)
		return nodeUtil, nil
	}

	if ctx.sampling == SamplingModeFullTraversal {
		nodeUtil := 0.0
		for i, edge := range node.Edges {
			if strategy[i] <= 0 {
				continue
			}
			u, err := traverse(ctx, edge.Child, board, target, depth+1, reachPlayer, reachOthers*strategy[i])
			if err != nil {
				return 0, err
			}
			nodeUtil += strategy[i] * u
		}
		return nodeUtil, nil
	}

	idx, prob := sampleStrategyIndex(strategy, ctx.sampler)
	if prob <= 0 {
		prob = 1.0 / float64(len(node.Edges))
	}
	return traverse(ctx, node.Edges[idx].Child, board, target, depth+1, reachPlayer, reachOthers*prob)
}

// terminalUtility returns target's net chip result (winnings minus their own
// contribution) at a Terminal node.
func terminalUtility(node *tree.Node, board poker.Hand, holes [2]poker.Hand, target int) float64 {
	committed := node.State.Committed
	if node.TerminalKind == tree.TerminalFold {
		return payoff(node.Pot, committed, target, node.FoldWinner)
	}

	winner := showdownWinner(holes, board)
	return payoff(node.Pot, committed, target, winner)
}

// showdownWinner compares both players' best 7-card hands, returning the
// winning seat or -1 on a tie.
func showdownWinner(holes [2]poker.Hand, board poker.Hand) int {
	rank0 := poker.Evaluate7Cards(holes[0] | board)
	rank1 := poker.Evaluate7Cards(holes[1] | board)
	switch {
	case rank0 > rank1:
		return 0
	case rank1 > rank0:
		return 1
	default:
		return -1
	}
}

// payoff computes target's net result from a resolved pot: winner takes the
// whole pot, -1 splits it, each player's own contribution is already inside
// pot so it is always subtracted back out.
func payoff(pot int, committed [2]int, target, winner int) float64 {
	var share float64
	switch winner {
	case target:
		share = float64(pot)
	case -1:
		share = float64(pot) / 2
	default:
		share = 0
	}
	return share - float64(committed[target])
}

// infoSetKey derives the canonical key for an Action node from the acting
// player's hole-card bucket, the board-texture bucket (zero preflop), and
// the betting-state buckets carried on the node itself.
func infoSetKey(bucket *BucketMapper, node *tree.Node, board poker.Hand, hole poker.Hand) InfoSetKey {
	boardBucket := 0
	if board.CountCards() >= 3 {
		boardBucket = bucket.BoardBucket(board)
	}

	state := node.State
	toCall := state.CurrentBetToCall
	pot := state.Pot(0)

	return InfoSetKey{
		Street:       state.Street,
		Player:       node.ActingPlayer,
		HoleBucket:   bucket.HoleBucket(hole),
		BoardBucket:  boardBucket,
		PotBucket:    potBucket(pot),
		ToCallBucket: toCallBucket(toCall),
	}
}

// PotBucket discretizes pot size into the same coarse buckets used to key
// infosets during training, so a caller reconstructing a key from a
// GameState (e.g. the report package aggregating a trained blueprint by
// hand-class) lands on the identical bucket a traversal would have used.
func PotBucket(pot int) int { return potBucket(pot) }

// ToCallBucket discretizes the facing bet into the same coarse buckets used
// to key infosets during training; see PotBucket.
func ToCallBucket(toCall int) int { return toCallBucket(toCall) }

// potBucket discretizes pot size (in big-blind-relative chip units already
// baked into the config the tree was built with) into a small number of
// coarse buckets.
func potBucket(pot int) int {
	thresholds := []int{2, 6, 12, 24}
	for i, boundary := range thresholds {
		if pot <= boundary {
			return i
		}
	}
	return len(thresholds)
}

// toCallBucket discretizes the facing bet into coarse buckets.
func toCallBucket(toCall int) int {
	thresholds := []int{0, 2, 4, 8}
	for i, boundary := range thresholds {
		if toCall <= boundary {
			return i
		}
	}
	return len(thresholds)
}

// sampleStrategyIndex draws one action index from strategy weighted by
// probability, falling back to uniform if every weight is non-positive.
func sampleStrategyIndex(strategy []float64, rng *rand.Rand) (int, float64) {
	if len(strategy) == 0 {
		return 0, 0
	}
	total := 0.0
	for _, v := range strategy {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		idx := rng.Intn(len(strategy))
		return idx, 1.0 / float64(len(strategy))
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, v := range strategy {
		if v <= 0 {
			continue
		}
		acc += v
		if r <= acc {
			return i, v / total
		}
	}
	return len(strategy) - 1, strategy[len(strategy)-1] / total
}
