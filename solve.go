package hucfr

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/lox/hucfr/apperrors"
	"github.com/lox/hucfr/classification"
	"github.com/lox/hucfr/poker"
	"github.com/lox/hucfr/rangepkg"
	"github.com/lox/hucfr/report"
	"github.com/lox/hucfr/solver"
	"github.com/lox/hucfr/tree"
)

var streetNames = [4]string{"preflop", "flop", "turn", "river"}

// Solve runs a complete chance-sampled CFR solve for req and returns the
// average strategy for both ranges, aggregated by hand-class, alongside the
// convergence history recorded during training. Cancelling ctx (or
// exceeding no built-in timeout, since none is configurable from a
// SolveRequest) stops training early and still returns the best-effort
// average strategy computed so far, wrapped in apperrors.Cancelled.
func Solve(ctx context.Context, req SolveRequest) (SolveResponse, error) {
	if strings.TrimSpace(req.BoardCards) != "" {
		return SolveResponse{}, &apperrors.InvalidConfig{Field: "BoardCards", Reason: "mid-street solves are not supported; only a preflop root can be checkpointed and resumed"}
	}
	street := strings.ToLower(strings.TrimSpace(req.Street))
	if street != "" && street != "preflop" {
		return SolveResponse{}, &apperrors.InvalidConfig{Field: "Street", Reason: "must be \"preflop\" (or empty) when BoardCards is empty"}
	}
	if req.Iterations <= 0 {
		return SolveResponse{}, &apperrors.InvalidConfig{Field: "Iterations", Reason: "must be positive"}
	}

	startingPot := req.PotSize
	if startingPot <= 0 {
		startingPot = req.SmallBlind + req.BigBlind
	}

	betting := tree.BettingConfig{
		BetSizes:         req.BetSizes,
		MaxBetsPerStreet: mergedMaxBets(req.MaxBetsPerStreet, req.MaxBets),
		AllowAllIn:       req.AllowAllIn,
		MinRaiseSize:     req.MinRaiseSize,
		StartingStack:    req.StartingStack,
		StartingPot:      startingPot,
	}

	setup := solver.HandSetup{
		Betting:       betting,
		SmallBlind:    req.SmallBlind,
		BigBlind:      req.BigBlind,
		StartingStack: req.StartingStack,
		RangeSpecs:    [2]string{req.OOPRange, req.IPRange},
	}

	abs := solver.AbstractionConfig{
		PreflopBucketCount:  orDefault(req.PreflopBuckets, 10),
		PostflopBucketCount: orDefault(req.PostflopBuckets, 20),
	}

	train := solver.DefaultTrainingConfig()
	train.Iterations = req.Iterations
	if req.Seed != 0 {
		train.Seed = req.Seed
	}

	trainer, err := solver.NewTrainer(setup, abs, train)
	if err != nil {
		return SolveResponse{}, err
	}

	start := time.Now()
	runErr := trainer.Run(ctx, nil)
	elapsed := time.Since(start)

	bp := trainer.Blueprint()
	mapper, err := solver.NewBucketMapper(trainer.Abstraction())
	if err != nil {
		return SolveResponse{}, err
	}

	root := trainer.Root()
	labels := rootActionLabels(root)

	oopRange, err := rangepkg.Parse(req.OOPRange)
	if err != nil {
		return SolveResponse{}, err
	}
	ipRange, err := rangepkg.Parse(req.IPRange)
	if err != nil {
		return SolveResponse{}, err
	}

	sit := report.Situation{
		Street:      tree.Preflop,
		Board:       poker.Hand(0),
		Pot:         root.State.Pot(startingPot),
		ToCall:      root.State.CurrentBetToCall,
		ActionCount: len(labels),
	}

	rng := rand.New(rand.NewSource(seedOrDefault(req.Seed)))
	equityTrials := orDefault(req.EquityTrials, 2000)

	sit.Player = 0
	oopReport, err := report.Build(bp, mapper, sit, oopRange, ipRange, equityTrials, rng)
	if err != nil {
		return SolveResponse{}, err
	}
	sit.Player = 1
	ipReport, err := report.Build(bp, mapper, sit, ipRange, oopRange, equityTrials, rng)
	if err != nil {
		return SolveResponse{}, err
	}

	finalConvergence := 0.0
	history := trainer.ConvergenceHistory()
	if len(history) > 0 {
		finalConvergence = history[len(history)-1].Metric
	}

	resp := SolveResponse{
		OOPStrategy:            labelStrategies(oopReport.ByHandClass, labels),
		IPStrategy:             labelStrategies(ipReport.ByHandClass, labels),
		TrainingIterations:     int(trainer.Iteration()),
		ComputationTimeSeconds: elapsed.Seconds(),
		NodesCount:             len(bp.Strategies),
		FinalConvergence:       finalConvergence,
		ConvergenceHistory:     history,
		BoardTexture:           classification.AnalyzeBoardTexture(sit.Board).String(),
		BetSizesUsed:           betting.BetSizes,
		MaxBetsPerStreetUsed:   betting.MaxBetsPerStreet,
	}

	if runErr != nil {
		return resp, runErr
	}
	return resp, nil
}

func rootActionLabels(root *tree.Node) []string {
	if root == nil || root.Kind != tree.KindAction {
		return nil
	}
	labels := make([]string, len(root.Edges))
	for i, edge := range root.Edges {
		switch edge.Action.Kind {
		case tree.Bet, tree.Raise, tree.AllIn:
			labels[i] = fmt.Sprintf("%s %d", edge.Action.Kind, edge.Action.Amount)
		default:
			labels[i] = edge.Action.Kind.String()
		}
	}
	return labels
}

func labelStrategies(in []report.HandClassStrategy, labels []string) []HandClassStrategy {
	out := make([]HandClassStrategy, len(in))
	for i, hc := range in {
		actions := make([]ActionWeight, len(hc.Actions))
		for j, p := range hc.Actions {
			label := fmt.Sprintf("action_%d", j)
			if j < len(labels) {
				label = labels[j]
			}
			actions[j] = ActionWeight{Label: label, Probability: p}
		}
		out[i] = HandClassStrategy{HandClass: hc.HandClass, Actions: actions, Weight: hc.Weight, Equity: hc.Equity}
	}
	return out
}

func mergedMaxBets(configured map[string]int, fallback int) map[string]int {
	merged := make(map[string]int, len(streetNames))
	for k, v := range configured {
		merged[k] = v
	}
	if fallback > 0 {
		for _, name := range streetNames {
			if _, ok := merged[name]; !ok {
				merged[name] = fallback
			}
		}
	}
	return merged
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func seedOrDefault(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return 1
}
