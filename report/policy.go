package report

import (
	"errors"

	"github.com/lox/hucfr/solver"
)

// Policy exposes read-only access to a persisted Blueprint for sampling a
// live action without consulting the full aggregated report.
type Policy struct {
	blueprint *solver.Blueprint
}

// LoadPolicy constructs a runtime policy from a blueprint file on disk.
func LoadPolicy(path string) (*Policy, error) {
	bp, err := solver.LoadBlueprint(path)
	if err != nil {
		return nil, err
	}
	return &Policy{blueprint: bp}, nil
}

// NewPolicy wraps an already-loaded blueprint.
func NewPolicy(bp *solver.Blueprint) *Policy {
	return &Policy{blueprint: bp}
}

// Blueprint returns the underlying blueprint metadata.
func (p *Policy) Blueprint() *solver.Blueprint {
	if p == nil {
		return nil
	}
	return p.blueprint
}

// ActionWeights returns the stored probability distribution for key. A
// missing key, or a stored strategy shorter than actionCount, falls back to
// (padding out to) a uniform distribution so the caller always receives a
// valid distribution of exactly actionCount entries.
func (p *Policy) ActionWeights(key solver.InfoSetKey, actionCount int) ([]float64, error) {
	if p == nil || p.blueprint == nil {
		return nil, errors.New("report: nil policy")
	}
	if actionCount <= 0 {
		return nil, errors.New("report: action count must be positive")
	}

	out := make([]float64, actionCount)
	strat, ok := p.blueprint.Strategy(key)
	if !ok {
		return uniform(actionCount), nil
	}

	copy(out, strat)
	if len(strat) >= actionCount {
		return out, nil
	}
	v := 1.0 / float64(actionCount)
	for i := len(strat); i < actionCount; i++ {
		out[i] = v
	}
	return out, nil
}
