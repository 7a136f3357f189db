package report

import (
	"math/bits"

	"github.com/lox/hucfr/classification"
	"github.com/lox/hucfr/poker"
)

// BoardTags computes the high-level texture tags the Strategy Reporter
// surfaces alongside the per-hand-class breakdown: monotone, two-tone,
// paired, connected, and high-card, each included only when the board
// exhibits it. An incomplete board (fewer than 3 cards) yields no tags.
func BoardTags(board poker.Hand) []string {
	if board.CountCards() < 3 {
		return nil
	}

	var tags []string

	flush := classification.AnalyzeFlushPotential(board)
	switch {
	case flush.IsMonotone:
		tags = append(tags, "monotone")
	case flush.MaxSuitCount == 2:
		tags = append(tags, "two-tone")
	}

	if boardHasPair(board) {
		tags = append(tags, "paired")
	}

	straight := classification.AnalyzeStraightPotential(board)
	if straight.ConnectedCards >= 2 {
		tags = append(tags, "connected")
	}

	if boardHighCards(board) >= 2 {
		tags = append(tags, "high-card")
	}

	return tags
}

func boardHasPair(board poker.Hand) bool {
	var rankCounts [13]int
	for suit := uint8(0); suit < 4; suit++ {
		mask := board.GetSuitMask(suit)
		for rank := uint8(0); rank < 13; rank++ {
			if mask&(1<<rank) != 0 {
				rankCounts[rank]++
			}
		}
	}
	for _, c := range rankCounts {
		if c >= 2 {
			return true
		}
	}
	return false
}

func boardHighCards(board poker.Hand) int {
	count := 0
	for suit := uint8(0); suit < 4; suit++ {
		mask := board.GetSuitMask(suit) & 0x1F00 // T-A
		count += bits.OnesCount16(mask)
	}
	return count
}
