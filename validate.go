package hucfr

import (
	"fmt"

	"github.com/lox/hucfr/tree"
)

// nodeEstimateSecondsPerNode is a rough, unbenchmarked per-node traversal
// cost used only to produce an order-of-magnitude training-time estimate;
// it is not a measured constant.
const nodeEstimateSecondsPerNode = 2e-7

// ValidateConfig checks a betting abstraction before committing to a full
// solve, returning sizing estimates derived from tree.EstimateNodes's
// closed-form upper bound rather than an actual tree build.
func ValidateConfig(req ConfigValidationRequest) ConfigValidation {
	betting := tree.BettingConfig{
		BetSizes:         req.BetSizes,
		MaxBetsPerStreet: mergedMaxBets(req.MaxBetsPerStreet, req.MaxBets),
		AllowAllIn:       req.AllowAllIn,
		MinRaiseSize:     req.MinRaiseSize,
		StartingStack:    req.StartingStack,
	}

	var warnings []string
	if err := betting.Validate(); err != nil {
		return ConfigValidation{
			IsValid:  false,
			Warnings: []string{err.Error()},
		}
	}

	if len(req.BetSizes) == 1 {
		warnings = append(warnings, "only one bet size configured; the tree will offer no sizing variety")
	}
	if !req.AllowAllIn {
		warnings = append(warnings, "all-in action disabled; short-stack jams are unreachable")
	}

	estimated := tree.EstimateNodes(betting)
	isValid := true
	if estimated > tree.DefaultNodeCeiling {
		isValid = false
		warnings = append(warnings, fmt.Sprintf("estimated node count %d exceeds the default ceiling %d; building this config would fail with TreeTooLarge", estimated, int64(tree.DefaultNodeCeiling)))
	}

	estimatedSeconds := float64(estimated) * nodeEstimateSecondsPerNode
	recommended := recommendIterations(estimated)

	return ConfigValidation{
		IsValid:                      isValid,
		Warnings:                     warnings,
		EstimatedNodes:               estimated,
		EstimatedTrainingTimeSeconds: estimatedSeconds,
		RecommendedIterations:        recommended,
	}
}

// recommendIterations scales a suggested iteration count to the tree's
// size: bigger trees need more iterations per infoset to converge, but the
// recommendation is clamped to a sane range regardless of estimate.
func recommendIterations(estimatedNodes int64) int {
	const (
		min = 10_000
		max = 2_000_000
	)
	recommended := int(estimatedNodes / 10)
	if recommended < min {
		return min
	}
	if recommended > max {
		return max
	}
	return recommended
}
