package poker

import (
	"math/rand"

	"github.com/lox/hucfr/apperrors"
)

// WeightedCombo is a private two-card holding paired with its range weight.
// Defined here (not in the range package) so the evaluator stays a leaf
// package with no dependency on range parsing; the range package produces
// slices of these.
type WeightedCombo struct {
	Card1, Card2 Card
	Weight       float64
}

// maxResampleAttempts bounds how many times equity sampling retries a
// collision before giving up with NoViableSample.
const maxResampleAttempts = 200

// exactEquityMinBoardCards is the board length (4=turn) at or above which
// exact enumeration is used instead of Monte Carlo sampling, per the
// Monte-Carlo-vs-exact-equity design note.
const exactEquityMinBoardCards = 4 // turn or later

// Equity estimates hero's equity against a weighted villain range on the
// current board. It dispatches to exact enumeration on turn/river boards
// (a strict improvement sanctioned for those streets) and Monte-Carlo
// sampling otherwise.
func Equity(rng *rand.Rand, hero1, hero2 Card, villainRange []WeightedCombo, board Hand, trials int) (float64, error) {
	boardCards := board.CountCards()
	if boardCards >= exactEquityMinBoardCards {
		return ExactEquity(hero1, hero2, villainRange, board)
	}
	return MonteCarloEquity(rng, hero1, hero2, villainRange, board, trials)
}

// MonteCarloEquity runs `trials` random rollouts: for each, a villain combo
// is sampled weighted by range probability (excluding collisions with hero
// or the board), the remaining board cards are dealt uniformly at random,
// and both final 7-card hands are scored.
func MonteCarloEquity(rng *rand.Rand, hero1, hero2 Card, villainRange []WeightedCombo, board Hand, trials int) (float64, error) {
	dead := NewHand(hero1, hero2) | board
	feasible := feasibleCombos(villainRange, dead)
	if len(feasible) == 0 {
		return 0, &apperrors.NoViableSample{Attempts: 0, Reason: "no villain combo avoids hero/board collision"}
	}

	missing := 5 - board.CountCards()
	total := 0.0
	completed := 0

	for completed < trials {
		villain, ok := sampleWeighted(rng, feasible, dead)
		if !ok {
			return 0, &apperrors.NoViableSample{Attempts: maxResampleAttempts, Reason: "villain sample exhausted resample cap"}
		}

		trialDead := dead | NewHand(villain.Card1, villain.Card2)
		runout, ok := dealRunout(rng, trialDead, missing)
		if !ok {
			return 0, &apperrors.NoViableSample{Attempts: maxResampleAttempts, Reason: "board runout sample exhausted resample cap"}
		}

		fullBoard := board | runout
		heroHand := NewHand(hero1, hero2) | fullBoard
		villainHand := NewHand(villain.Card1, villain.Card2) | fullBoard

		heroRank := Evaluate7Cards(heroHand)
		villainRank := Evaluate7Cards(villainHand)

		switch CompareHands(heroRank, villainRank) {
		case 1:
			total += 1.0
		case 0:
			total += 0.5
		}
		completed++
	}

	return total / float64(completed), nil
}

// ExactEquity exhaustively enumerates every remaining board runout and every
// weighted villain combo, giving an exact (not sampled) equity figure. This
// is tractable on turn (one card, 44-46 choices) and river (zero cards) and
// is a strict improvement over sampling at those streets.
func ExactEquity(hero1, hero2 Card, villainRange []WeightedCombo, board Hand) (float64, error) {
	dead := NewHand(hero1, hero2) | board
	feasible := feasibleCombos(villainRange, dead)
	if len(feasible) == 0 {
		return 0, &apperrors.NoViableSample{Attempts: 0, Reason: "no villain combo avoids hero/board collision"}
	}

	missing := 5 - board.CountCards()
	runouts := enumerateRunouts(dead, missing)
	if len(runouts) == 0 {
		runouts = []Hand{0}
	}

	var weightedSum, weightTotal float64
	for _, wc := range feasible {
		villainHandBase := NewHand(wc.Card1, wc.Card2)
		for _, runout := range runouts {
			if runout&villainHandBase != 0 {
				continue // runout uses one of this villain combo's cards
			}
			fullBoard := board | runout
			heroRank := Evaluate7Cards(NewHand(hero1, hero2) | fullBoard)
			villainRank := Evaluate7Cards(villainHandBase | fullBoard)

			score := 0.0
			switch CompareHands(heroRank, villainRank) {
			case 1:
				score = 1.0
			case 0:
				score = 0.5
			}
			weightedSum += score * wc.Weight
			weightTotal += wc.Weight
		}
	}

	if weightTotal == 0 {
		return 0, &apperrors.NoViableSample{Attempts: 0, Reason: "zero total villain weight"}
	}
	return weightedSum / weightTotal, nil
}

// feasibleCombos filters a weighted range down to combos with positive
// weight that do not collide with dead cards.
func feasibleCombos(villainRange []WeightedCombo, dead Hand) []WeightedCombo {
	out := make([]WeightedCombo, 0, len(villainRange))
	for _, wc := range villainRange {
		if wc.Weight <= 0 {
			continue
		}
		if dead.HasCard(wc.Card1) || dead.HasCard(wc.Card2) {
			continue
		}
		out = append(out, wc)
	}
	return out
}

// sampleWeighted draws one combo from feasible proportional to weight,
// resampling up to maxResampleAttempts if a collision slips through (can
// happen when the caller passes a stale dead mask across trials).
func sampleWeighted(rng *rand.Rand, feasible []WeightedCombo, dead Hand) (WeightedCombo, bool) {
	var total float64
	for _, wc := range feasible {
		total += wc.Weight
	}
	if total <= 0 {
		return WeightedCombo{}, false
	}

	for attempt := 0; attempt < maxResampleAttempts; attempt++ {
		target := rng.Float64() * total
		var acc float64
		for _, wc := range feasible {
			acc += wc.Weight
			if acc >= target {
				if dead.HasCard(wc.Card1) || dead.HasCard(wc.Card2) {
					break
				}
				return wc, true
			}
		}
	}
	return WeightedCombo{}, false
}

// dealRunout deals `count` distinct cards from a freshly shuffled deck that
// already omits dead, reporting false when fewer than `count` cards remain.
func dealRunout(rng *rand.Rand, dead Hand, count int) (Hand, bool) {
	if count <= 0 {
		return 0, true
	}
	deck := NewDeckExcluding(rng, dead)
	if deck.CardsRemaining() < count {
		return 0, false
	}
	cards := deck.Deal(count)
	var h Hand
	for _, c := range cards {
		h.AddCard(c)
	}
	return h, true
}

// enumerateRunouts lists every distinct Hand of `count` cards drawn from the
// remaining (non-dead) deck, used by ExactEquity.
func enumerateRunouts(dead Hand, count int) []Hand {
	if count <= 0 {
		return nil
	}
	var available []Card
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank < 13; rank++ {
			c := NewCard(rank, suit)
			if !dead.HasCard(c) {
				available = append(available, c)
			}
		}
	}

	var results []Hand
	var combo func(start int, chosen []Card)
	combo = func(start int, chosen []Card) {
		if len(chosen) == count {
			var h Hand
			for _, c := range chosen {
				h.AddCard(c)
			}
			results = append(results, h)
			return
		}
		for i := start; i < len(available); i++ {
			combo(i+1, append(chosen, available[i]))
		}
	}
	combo(0, nil)
	return results
}
