package solver

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/hucfr/apperrors"
	"github.com/lox/hucfr/poker"
	"github.com/lox/hucfr/rangepkg"
	"github.com/lox/hucfr/tree"
)

// Progress is emitted periodically while Run executes, summarizing the most
// recently completed iteration.
type Progress struct {
	Iteration       int
	RegretTableSize int
	Stats           TraversalStats
}

// ConvergencePoint is one exploitability-proxy sample: the L2 norm of the
// per-infoset current-strategy delta across the preceding measurement
// window, recorded every TrainingConfig.ConvergenceEvery iterations.
type ConvergencePoint struct {
	Iteration int
	Metric    float64
}

// HandSetup is everything needed to build the tree and sample private cards
// for a solve: the betting abstraction, the blinds/stack that fix the root
// GameState, and the two range strings (§4.B notation) each player holds.
// Kept alongside the trainer so a checkpoint can fully reconstruct it.
type HandSetup struct {
	Betting       tree.BettingConfig
	SmallBlind    int
	BigBlind      int
	StartingStack int
	RangeSpecs    [2]string
}

// Trainer orchestrates CFR iterations over a fixed, pre-built game tree for
// two fixed private-card ranges.
type Trainer struct {
	setup    HandSetup
	root     *tree.Node
	ranges   [2]*rangepkg.Range
	absCfg   AbstractionConfig
	trainCfg TrainingConfig
	bucket   *BucketMapper
	regrets  *RegretTable
	clock    quartz.Clock

	iteration atomic.Int64
	rng       *rand.Rand

	statsMu sync.Mutex
	stats   TraversalStats

	convergenceMu   sync.Mutex
	convergence     []ConvergencePoint
	lastStrategySum map[string][]float64

	rngSeed  int64
	rngInt63 int64
	rngIntn  int64

	checkpointPath  string
	checkpointEvery int
}

// NewTrainer builds the game tree from setup.Betting and the root blind
// state, parses both range specs, and returns a trainer ready to run.
func NewTrainer(setup HandSetup, absCfg AbstractionConfig, trainCfg TrainingConfig) (*Trainer, error) {
	if err := absCfg.Validate(); err != nil {
		return nil, err
	}
	if err := trainCfg.Validate(); err != nil {
		return nil, err
	}

	betting := setup.Betting
	betting.StartingStack = setup.StartingStack

	root := tree.NewRootState(setup.StartingStack, setup.SmallBlind, setup.BigBlind)
	built, err := tree.Build(root, betting)
	if err != nil {
		return nil, err
	}

	var ranges [2]*rangepkg.Range
	for i, spec := range setup.RangeSpecs {
		r, err := rangepkg.Parse(spec)
		if err != nil {
			return nil, err
		}
		ranges[i] = r
	}

	mapper, err := NewBucketMapper(absCfg)
	if err != nil {
		return nil, err
	}

	seed := trainCfg.Seed
	if seed == 0 {
		seed = 1
	}

	return &Trainer{
		setup:    setup,
		root:     built,
		ranges:   ranges,
		absCfg:   absCfg,
		trainCfg: trainCfg,
		bucket:   mapper,
		regrets:  NewRegretTable(),
		clock:    quartz.NewReal(),
		rng:      rand.New(rand.NewSource(seed)),
		rngSeed:  seed,
	}, nil
}

// Run executes iterations until TrainingConfig.Iterations is reached, ctx is
// cancelled, or IterationTimeout elapses, whichever comes first. On
// cancellation the regret table reflects every iteration that completed its
// update before the cancellation was observed; no partial update is ever
// applied.
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	var deadline time.Time
	if t.trainCfg.IterationTimeout > 0 {
		deadline = t.clock.Now().Add(t.trainCfg.IterationTimeout)
	}

	batch := t.trainCfg.ProgressEvery
	if batch <= 0 {
		batch = t.trainCfg.Iterations / 100
		if batch == 0 {
			batch = 1
		}
	}

	for i := int(t.iteration.Load()); i < t.trainCfg.Iterations; i++ {
		select {
		case <-ctx.Done():
			return &apperrors.Cancelled{Partial: t.Blueprint()}
		default:
		}
		if !deadline.IsZero() && t.clock.Now().After(deadline) {
			return &apperrors.Cancelled{Partial: t.Blueprint()}
		}

		start := t.clock.Now()
		target := i % 2
		stats, err := t.singleIteration(target)
		if err != nil {
			return err
		}
		stats.IterationTime = t.clock.Now().Sub(start)
		t.setStats(stats)
		iter := int(t.iteration.Add(1))

		if t.trainCfg.ConvergenceEvery > 0 && iter%t.trainCfg.ConvergenceEvery == 0 {
			t.recordConvergence(iter)
		}

		if t.checkpointPath != "" && t.checkpointEvery > 0 && iter%t.checkpointEvery == 0 {
			if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
				return err
			}
		}

		if progress != nil && iter%batch == 0 {
			progress(Progress{Iteration: iter, RegretTableSize: t.regrets.Size(), Stats: stats})
		}
	}

	if progress != nil {
		progress(Progress{Iteration: int(t.iteration.Load()), RegretTableSize: t.regrets.Size(), Stats: t.Stats()})
	}
	if t.checkpointPath != "" && t.checkpointEvery > 0 {
		if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
			return err
		}
	}
	return nil
}

// Blueprint materializes the averaged strategy accumulated so far.
func (t *Trainer) Blueprint() *Blueprint {
	entries := t.regrets.Entries()
	strategies := make(map[string][]float64, len(entries))
	for key, entry := range entries {
		strategies[key] = entry.AverageStrategy()
	}
	return &Blueprint{
		Version:     blueprintFileVersion,
		Iterations:  int(t.iteration.Load()),
		Abstraction: t.absCfg,
		Strategies:  strategies,
	}
}

// ConvergenceHistory returns every exploitability-proxy sample recorded so
// far, oldest first.
func (t *Trainer) ConvergenceHistory() []ConvergencePoint {
	t.convergenceMu.Lock()
	defer t.convergenceMu.Unlock()
	out := make([]ConvergencePoint, len(t.convergence))
	copy(out, t.convergence)
	return out
}

// recordConvergence computes the L2 norm of the per-infoset current-strategy
// delta against the snapshot taken at the previous measurement point.
func (t *Trainer) recordConvergence(iter int) {
	entries := t.regrets.Entries()
	current := make(map[string][]float64, len(entries))
	for key, entry := range entries {
		current[key] = entry.Strategy()
	}

	t.convergenceMu.Lock()
	defer t.convergenceMu.Unlock()
	metric := 0.0
	for key, strat := range current {
		prev := t.lastStrategySum[key]
		for i, v := range strat {
			var p float64
			if i < len(prev) {
				p = prev[i]
			}
			d := v - p
			metric += d * d
		}
	}
	t.convergence = append(t.convergence, ConvergencePoint{Iteration: iter, Metric: math.Sqrt(metric)})
	t.lastStrategySum = current
}

// singleIteration runs TrainingConfig.ParallelTables independent tables
// against the shared regret table, each with its own sampled hole cards,
// board deck, and action sampler, fanned out with errgroup.
func (t *Trainer) singleIteration(target int) (TraversalStats, error) {
	parallel := t.trainCfg.ParallelTables
	if parallel <= 0 {
		parallel = 1
	}

	type tableSeeds struct {
		deck   int64
		sample int64
	}
	seeds := make([]tableSeeds, parallel)
	for i := 0; i < parallel; i++ {
		seeds[i].deck = t.rng.Int63()
		t.rngInt63++
		seeds[i].sample = t.rng.Int63()
		t.rngInt63++
	}

	statsSlice := make([]TraversalStats, parallel)
	var group errgroup.Group
	for i := 0; i < parallel; i++ {
		idx := i
		group.Go(func() error {
			deckRNG := rand.New(rand.NewSource(seeds[idx].deck))
			sampler := rand.New(rand.NewSource(seeds[idx].sample))

			holes, deck, err := sampleHoles(t.ranges, deckRNG)
			if err != nil {
				return err
			}

			ctx := &iterationContext{
				regrets:    t.regrets,
				bucket:     t.bucket,
				sampling:   t.trainCfg.Sampling,
				updateOpts: RegretUpdateOptions{ClampNegativeRegrets: t.trainCfg.UseCFRPlus, LinearAveraging: t.trainCfg.LinearAveraging, Iteration: int(t.iteration.Load()) + 1},
				holes:      holes,
				deck:       deck,
				sampler:    sampler,
				stats:      &statsSlice[idx],
			}
			_, err = traverse(ctx, t.root, poker.Hand(0), target, 0, 1.0, 1.0)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return TraversalStats{}, err
	}

	aggregated := TraversalStats{}
	for _, s := range statsSlice {
		aggregated.NodesVisited += s.NodesVisited
		aggregated.TerminalNodes += s.TerminalNodes
		if s.MaxDepth > aggregated.MaxDepth {
			aggregated.MaxDepth = s.MaxDepth
		}
	}
	return aggregated, nil
}

// iterationComboResampleAttempts matches rangepkg's own resample cap, for
// the attempt count reported in NoViableSample.
const iterationComboResampleAttempts = 200

// sampleHoles draws one combo per player, excluding collisions between the
// two hands, and returns a fresh deck already excluding both hands for the
// chance nodes to deal community cards from.
func sampleHoles(ranges [2]*rangepkg.Range, rng *rand.Rand) ([2]poker.Hand, *poker.Deck, error) {
	combo0, ok := ranges[0].SampleCombo(rng, 0)
	if !ok {
		return [2]poker.Hand{}, nil, &apperrors.NoViableSample{Attempts: iterationComboResampleAttempts, Reason: "player 0 range has no feasible combo"}
	}
	hole0 := poker.NewHand(combo0.Card1, combo0.Card2)

	combo1, ok := ranges[1].SampleCombo(rng, hole0)
	if !ok {
		return [2]poker.Hand{}, nil, &apperrors.NoViableSample{Attempts: iterationComboResampleAttempts, Reason: "player 1 range has no combo avoiding player 0's hand"}
	}
	hole1 := poker.NewHand(combo1.Card1, combo1.Card2)

	deck := poker.NewDeckExcluding(rng, hole0|hole1)
	return [2]poker.Hand{hole0, hole1}, deck, nil
}

func (t *Trainer) setStats(stats TraversalStats) {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	t.stats = stats
}

// Stats returns the most recently completed iteration's traversal stats.
func (t *Trainer) Stats() TraversalStats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.stats
}

// TrainingConfig returns the trainer's training configuration.
func (t *Trainer) TrainingConfig() TrainingConfig {
	return t.trainCfg
}

// Root returns the pre-built root of the game tree this trainer iterates
// over, for callers that need to inspect the root's legal actions (e.g. to
// label a reported strategy) without rebuilding the tree themselves.
func (t *Trainer) Root() *tree.Node {
	return t.root
}

// Abstraction returns the bucketing configuration this trainer was built
// with.
func (t *Trainer) Abstraction() AbstractionConfig {
	return t.absCfg
}

// Iteration returns the number of completed iterations.
func (t *Trainer) Iteration() int64 {
	return t.iteration.Load()
}

// SetTotalIterations extends (never shrinks below what's already completed)
// the iteration budget, for resuming a checkpoint with a larger target.
func (t *Trainer) SetTotalIterations(n int) error {
	current := int(t.iteration.Load())
	if n < current {
		return fmt.Errorf("total iterations %d less than completed %d", n, current)
	}
	t.trainCfg.Iterations = n
	return nil
}
