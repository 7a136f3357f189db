// Package solver implements chance-sampled external-sampling Counterfactual
// Regret Minimization over a tree.Node game tree: per-infoset regret
// matching, strategy-sum accumulation, checkpointing, and blueprint export.
package solver

import (
	"errors"
	"time"
)

// SamplingMode controls how the non-update player's actions are handled
// during a traversal.
type SamplingMode uint8

const (
	// SamplingModeExternal samples a single action for the non-update
	// player (standard external-sampling MCCFR).
	SamplingModeExternal SamplingMode = iota
	// SamplingModeFullTraversal recurses into every action for both
	// players and skips the regret update for the non-update player
	// (vanilla CFR); used for small trees and determinism tests.
	SamplingModeFullTraversal
)

func (m SamplingMode) String() string {
	switch m {
	case SamplingModeExternal:
		return "external"
	case SamplingModeFullTraversal:
		return "full"
	default:
		return "unknown"
	}
}

// AbstractionConfig controls how hole cards and board textures are bucketed
// for infoset keying. It must stay fixed for the lifetime of a solve:
// changing it mid-solve silently fragments the regret table.
type AbstractionConfig struct {
	// PreflopBucketCount is the number of distinct preflop hole-card
	// buckets the solver maintains.
	PreflopBucketCount int

	// PostflopBucketCount is the number of distinct board-texture buckets
	// used from the flop onward.
	PostflopBucketCount int
}

// Validate ensures the abstraction is well-formed before training begins.
func (c AbstractionConfig) Validate() error {
	if c.PreflopBucketCount <= 0 {
		return errors.New("preflop bucket count must be > 0")
	}
	if c.PostflopBucketCount <= 0 {
		return errors.New("postflop bucket count must be > 0")
	}
	return nil
}

// DefaultAbstraction returns a conservative abstraction suitable for smoke
// tests.
func DefaultAbstraction() AbstractionConfig {
	return AbstractionConfig{
		PreflopBucketCount:  10,
		PostflopBucketCount: 20,
	}
}

// TrainingConfig aggregates the parameters that control CFR execution,
// independent of the betting abstraction (that lives in tree.BettingConfig).
type TrainingConfig struct {
	Iterations int
	Seed       int64

	// ParallelTables runs this many independent tables concurrently within
	// each iteration (fanned out by Trainer.singleIteration), each with its own sampled
	// combos/board/PRNG, sharing only the regret table.
	ParallelTables int

	// CheckpointEvery, if positive, writes a checkpoint after this many
	// completed iterations.
	CheckpointEvery int

	// ProgressEvery, if positive, invokes the progress callback after this
	// many completed iterations.
	ProgressEvery int

	// ConvergenceEvery, if positive, records an exploitability-proxy point
	// in the convergence history after this many completed iterations.
	ConvergenceEvery int

	// UseCFRPlus clips negative regrets to zero at update time (CFR+).
	UseCFRPlus bool

	// LinearAveraging weights strategy-sum accumulation by iteration
	// number (linear CFR) instead of uniformly.
	LinearAveraging bool

	Sampling SamplingMode

	// IterationTimeout bounds wall-clock time for the whole solve; zero
	// disables the timeout. Enforced by Trainer.Run exactly like
	// cooperative cancellation.
	IterationTimeout time.Duration
}

// Validate ensures the training parameters are safe to use.
func (c TrainingConfig) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.ParallelTables <= 0 {
		return errors.New("parallel tables must be > 0")
	}
	if c.CheckpointEvery < 0 {
		return errors.New("checkpoint interval cannot be negative")
	}
	if c.ProgressEvery < 0 {
		return errors.New("progress interval cannot be negative")
	}
	if c.ConvergenceEvery < 0 {
		return errors.New("convergence interval cannot be negative")
	}
	if c.Sampling > SamplingModeFullTraversal {
		return errors.New("invalid sampling mode")
	}
	if c.IterationTimeout < 0 {
		return errors.New("iteration timeout cannot be negative")
	}
	return nil
}

// DefaultTrainingConfig returns a minimal configuration for local
// experimentation.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Iterations:       1000,
		Seed:             1,
		ParallelTables:   1,
		CheckpointEvery:  0,
		ProgressEvery:    0,
		ConvergenceEvery: 100,
		UseCFRPlus:       false,
		Sampling:         SamplingModeExternal,
	}
}
