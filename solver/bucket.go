package solver

import (
	"math"

	"github.com/lox/hucfr/classification"
	"github.com/lox/hucfr/poker"
)

// BucketMapper maps raw hole cards and board textures into the coarse
// abstraction buckets used to key infosets. Deterministic and stateless
// beyond its fixed config, so it is safe to share across goroutines.
type BucketMapper struct {
	config AbstractionConfig
}

// NewBucketMapper returns a mapper backed by cfg.
func NewBucketMapper(cfg AbstractionConfig) (*BucketMapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BucketMapper{config: cfg}, nil
}

// HoleBucket deterministically maps a two-card hand into a preflop bucket,
// combining rank strength, pair, and suitedness into a single score before
// dividing the 169-combo space into the configured number of buckets.
func (m *BucketMapper) HoleBucket(hand poker.Hand) int {
	if hand.CountCards() != 2 {
		return 0
	}

	c0 := hand.GetCard(0)
	c1 := hand.GetCard(1)

	r0 := int(c0.Rank())
	r1 := int(c1.Rank())
	if r0 < r1 {
		r0, r1 = r1, r0
	}
	pair := r0 == r1
	suited := c0.Suit() == c1.Suit()

	score := float64(r0*13 + r1)
	if pair {
		score += 200
	}
	if suited {
		score += 13
	}

	return clampBucket(int(score/(312.0/float64(m.config.PreflopBucketCount))), m.config.PreflopBucketCount)
}

// BoardBucket maps a 3-5 card board into a coarse postflop bucket using
// board texture, pairing, and high-card density.
func (m *BucketMapper) BoardBucket(board poker.Hand) int {
	if board == 0 {
		return 0
	}

	texture := classification.AnalyzeBoardTexture(board)
	paired := float64(countBoardPairs(board))
	highCards := float64(countHighCards(board))

	score := float64(texture)*2 + paired + highCards*0.5
	return clampBucket(int(math.Round(score/(8.0/float64(m.config.PostflopBucketCount)))), m.config.PostflopBucketCount)
}

func clampBucket(bucket, count int) int {
	if bucket >= count {
		return count - 1
	}
	if bucket < 0 {
		return 0
	}
	return bucket
}

// countBoardPairs counts how many distinct ranks appear at least twice on
// the board; classification does not export this, so it is kept local.
func countBoardPairs(board poker.Hand) int {
	counts := make(map[uint8]int, 5)
	for i := 0; i < board.CountCards(); i++ {
		counts[board.GetCard(i).Rank()]++
	}
	pairs := 0
	for _, c := range counts {
		if c >= 2 {
			pairs++
		}
	}
	return pairs
}

func countHighCards(board poker.Hand) int {
	high := 0
	for i := 0; i < board.CountCards(); i++ {
		if board.GetCard(i).Rank() >= poker.Ten {
			high++
		}
	}
	return high
}
