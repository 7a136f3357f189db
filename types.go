// Package hucfr is the in-process entry point for the rest of this module:
// a request/response facade over the range model, betting abstraction, and
// CFR engine, for a caller that wants a one-shot solve, a pre-flight config
// check, or a liveness probe without touching the lower-level packages
// directly. It ships no network transport — these are exported Go
// functions, not a wire protocol.
package hucfr

import "github.com/lox/hucfr/solver"

// Version identifies this module's solver implementation, independent of
// any one Blueprint's file-format version.
const Version = "1.0.0"

// SolveRequest describes a complete heads-up solve: both players' ranges,
// the stakes, and the betting abstraction to build the tree with.
//
// BoardCards is accepted for forward compatibility with the wire shape
// described alongside this type, but must currently be empty: this module
// only solves from the preflop root, where checkpoint/resume is fully
// supported end-to-end (see Solve for why a mid-street root is rejected
// instead of silently built without resume support).
type SolveRequest struct {
	OOPRange string
	IPRange  string

	SmallBlind    int
	BigBlind      int
	StartingStack int

	// PotSize, when positive, overrides the pot used for bet-fraction math
	// (e.g. to account for dead money); zero defaults to SmallBlind+BigBlind.
	PotSize int

	BoardCards string
	Street     string

	Iterations int
	Seed       int64

	BetSizes         []float64
	MaxBetsPerStreet map[string]int
	// MaxBets is the raise cap applied to any street absent from
	// MaxBetsPerStreet; zero defers to tree.DefaultMaxBetsPerStreet.
	MaxBets      int
	AllowAllIn   bool
	MinRaiseSize float64

	PreflopBuckets  int
	PostflopBuckets int

	EquityTrials int
}

// ActionWeight is one legal action's label and the probability the average
// strategy assigns it.
type ActionWeight struct {
	Label       string
	Probability float64
}

// HandClassStrategy mirrors report.HandClassStrategy but with labeled
// actions, for a caller that never wants to import the report package.
type HandClassStrategy struct {
	HandClass string
	Actions   []ActionWeight
	Weight    float64
	Equity    float64
}

// SolveResponse is the outcome of a completed (or cancelled) solve.
type SolveResponse struct {
	OOPStrategy []HandClassStrategy
	IPStrategy  []HandClassStrategy

	TrainingIterations     int
	ComputationTimeSeconds float64
	NodesCount             int
	FinalConvergence       float64
	ConvergenceHistory     []solver.ConvergencePoint

	BoardTexture string

	BetSizesUsed         []float64
	MaxBetsPerStreetUsed map[string]int
}

// ConfigValidationRequest is the betting-abstraction subset of a
// SolveRequest, for a pre-flight check before committing to a full solve.
type ConfigValidationRequest struct {
	StartingStack int

	BetSizes         []float64
	MaxBetsPerStreet map[string]int
	MaxBets          int
	AllowAllIn       bool
	MinRaiseSize     float64
}

// ConfigValidation is the result of a pre-flight check: whether the
// betting abstraction is well-formed, any non-fatal warnings, and rough
// sizing estimates to help a caller pick an iteration count.
type ConfigValidation struct {
	IsValid                      bool
	Warnings                     []string
	EstimatedNodes               int64
	EstimatedTrainingTimeSeconds float64
	RecommendedIterations        int
}

// HealthStatus reports liveness and the running solver's version.
type HealthStatus struct {
	Alive   bool
	Version string
}

// Health returns the current liveness status. It never fails: there is no
// external dependency (database, network service) whose absence could make
// this process less alive than the fact that it's running this code.
func Health() HealthStatus {
	return HealthStatus{Alive: true, Version: Version}
}
