package solver_test

import (
	"path/filepath"
	"testing"

	"github.com/lox/hucfr/solver"
	"github.com/lox/hucfr/tree"
)

func TestBlueprintSaveLoadRoundTrip(t *testing.T) {
	abs := solver.DefaultAbstraction()
	key := solver.InfoSetKey{Street: tree.Flop, Player: 1, HoleBucket: 3, PotBucket: 2}

	bp := &solver.Blueprint{
		Version:     1,
		Iterations:  500,
		Abstraction: abs,
		Strategies:  map[string][]float64{key.String(): {0.25, 0.75}},
	}

	path := filepath.Join(t.TempDir(), "blueprint.json")
	if err := bp.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := solver.LoadBlueprint(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Iterations != 500 {
		t.Fatalf("iterations = %d, want 500", loaded.Iterations)
	}

	strat, ok := loaded.Strategy(key)
	if !ok {
		t.Fatalf("expected strategy for key %s", key)
	}
	if len(strat) != 2 || strat[0] != 0.25 || strat[1] != 0.75 {
		t.Fatalf("strategy = %v, want [0.25 0.75]", strat)
	}
}

func TestBlueprintStrategyMissingKey(t *testing.T) {
	bp := &solver.Blueprint{
		Version:     1,
		Abstraction: solver.DefaultAbstraction(),
		Strategies:  map[string][]float64{},
	}
	if _, ok := bp.Strategy(solver.InfoSetKey{Street: tree.River}); ok {
		t.Fatalf("expected missing key to report ok=false")
	}
}

func TestBlueprintSaveRejectsEmptyPath(t *testing.T) {
	bp := &solver.Blueprint{Version: 1, Abstraction: solver.DefaultAbstraction()}
	if err := bp.Save(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadBlueprintRejectsBadVersion(t *testing.T) {
	bp := &solver.Blueprint{
		Version:     99,
		Abstraction: solver.DefaultAbstraction(),
		Strategies:  map[string][]float64{},
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := bp.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := solver.LoadBlueprint(path); err == nil {
		t.Fatalf("expected version mismatch error")
	}
}
