package hucfr_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	hucfr "github.com/lox/hucfr"
)

func TestValidateConfigHappyPath(t *testing.T) {
	result := hucfr.ValidateConfig(hucfr.ConfigValidationRequest{
		StartingStack: 200,
		BetSizes:      []float64{0.5, 1.0},
		MaxBets:       3,
		AllowAllIn:    true,
		MinRaiseSize:  1.0,
	})

	require.True(t, result.IsValid)
	require.Empty(t, result.Warnings)
	require.Greater(t, result.EstimatedNodes, int64(0))
	require.Greater(t, result.EstimatedTrainingTimeSeconds, 0.0)
	require.GreaterOrEqual(t, result.RecommendedIterations, 10_000)
}

func TestValidateConfigWarnsOnSingleBetSizeAndNoAllIn(t *testing.T) {
	result := hucfr.ValidateConfig(hucfr.ConfigValidationRequest{
		StartingStack: 200,
		BetSizes:      []float64{1.0},
		MaxBets:       2,
		AllowAllIn:    false,
		MinRaiseSize:  1.0,
	})

	require.True(t, result.IsValid)
	require.Contains(t, result.Warnings, "only one bet size configured; the tree will offer no sizing variety")
	require.Contains(t, result.Warnings, "all-in action disabled; short-stack jams are unreachable")
}

func TestValidateConfigRejectsMalformedBetting(t *testing.T) {
	result := hucfr.ValidateConfig(hucfr.ConfigValidationRequest{
		StartingStack: -1,
		BetSizes:      []float64{0.5},
	})

	require.False(t, result.IsValid)
	require.NotEmpty(t, result.Warnings)
}

func TestValidateConfigFlagsOversizedTree(t *testing.T) {
	result := hucfr.ValidateConfig(hucfr.ConfigValidationRequest{
		StartingStack: 100_000,
		BetSizes:      []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0},
		MaxBets:       8,
		AllowAllIn:    true,
		MinRaiseSize:  1.0,
	})

	require.False(t, result.IsValid)
	require.GreaterOrEqual(t, result.EstimatedNodes, int64(0))
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "TreeTooLarge") {
			found = true
		}
	}
	require.True(t, found, "expected a TreeTooLarge warning, got %v", result.Warnings)
}

func TestHealth(t *testing.T) {
	status := hucfr.Health()
	require.True(t, status.Alive)
	require.Equal(t, hucfr.Version, status.Version)
}
