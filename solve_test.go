package hucfr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	hucfr "github.com/lox/hucfr"
)

func smallRequest() hucfr.SolveRequest {
	return hucfr.SolveRequest{
		OOPRange:      "AA",
		IPRange:       "KK",
		SmallBlind:    1,
		BigBlind:      2,
		StartingStack: 6,
		Iterations:    200,
		Seed:          7,
		BetSizes:      []float64{1.0},
		MaxBets:       1,
		AllowAllIn:    true,
		MinRaiseSize:  1.0,
		EquityTrials:  100,
	}
}

func TestSolveProducesBothStrategies(t *testing.T) {
	resp, err := hucfr.Solve(context.Background(), smallRequest())
	require.NoError(t, err)

	require.Len(t, resp.OOPStrategy, 1)
	require.Equal(t, "AA", resp.OOPStrategy[0].HandClass)
	require.Len(t, resp.IPStrategy, 1)
	require.Equal(t, "KK", resp.IPStrategy[0].HandClass)

	for _, hc := range resp.OOPStrategy {
		sum := 0.0
		for _, a := range hc.Actions {
			require.NotEmpty(t, a.Label)
			sum += a.Probability
		}
		require.InDelta(t, 1.0, sum, 1e-6)
	}

	require.Equal(t, 200, resp.TrainingIterations)
	require.GreaterOrEqual(t, resp.NodesCount, 1)
	require.Equal(t, []float64{1.0}, resp.BetSizesUsed)
}

func TestSolveRejectsNonEmptyBoardCards(t *testing.T) {
	req := smallRequest()
	req.BoardCards = "As Kd 7h"
	_, err := hucfr.Solve(context.Background(), req)
	require.Error(t, err)
}

func TestSolveRejectsNonPreflopStreet(t *testing.T) {
	req := smallRequest()
	req.Street = "flop"
	_, err := hucfr.Solve(context.Background(), req)
	require.Error(t, err)
}

func TestSolveRejectsNonPositiveIterations(t *testing.T) {
	req := smallRequest()
	req.Iterations = 0
	_, err := hucfr.Solve(context.Background(), req)
	require.Error(t, err)
}

func TestSolveReturnsPartialResultOnCancellation(t *testing.T) {
	req := smallRequest()
	req.Iterations = 1_000_000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := hucfr.Solve(ctx, req)
	require.Error(t, err)
	require.NotNil(t, resp.OOPStrategy)
}
