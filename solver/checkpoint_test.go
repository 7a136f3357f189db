package solver_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lox/hucfr/solver"
)

func TestCheckpointSaveLoadResumesTraining(t *testing.T) {
	abs := solver.DefaultAbstraction()
	cfg := solver.DefaultTrainingConfig()
	cfg.Iterations = 30
	cfg.Seed = 13

	trainer, err := solver.NewTrainer(smallHeadsUpSetup(), abs, cfg)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}
	if err := trainer.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := trainer.SaveCheckpoint(path); err != nil {
		t.Fatalf("save checkpoint: %v", err)
	}

	resumed, err := solver.LoadTrainerFromCheckpoint(path)
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if resumed.Iteration() != 30 {
		t.Fatalf("resumed iteration = %d, want 30", resumed.Iteration())
	}

	before := trainer.Blueprint()
	after := resumed.Blueprint()
	if len(before.Strategies) != len(after.Strategies) {
		t.Fatalf("strategy count mismatch: %d vs %d", len(before.Strategies), len(after.Strategies))
	}
	for key, strat := range before.Strategies {
		got, ok := after.Strategies[key]
		if !ok {
			t.Fatalf("resumed blueprint missing key %s", key)
		}
		for i := range strat {
			if strat[i] != got[i] {
				t.Fatalf("strategy[%s][%d] = %v, want %v", key, i, got[i], strat[i])
			}
		}
	}

	if err := resumed.SetTotalIterations(60); err != nil {
		t.Fatalf("extend iterations: %v", err)
	}
	if err := resumed.Run(context.Background(), nil); err != nil {
		t.Fatalf("resumed run: %v", err)
	}
	if resumed.Iteration() != 60 {
		t.Fatalf("final iteration = %d, want 60", resumed.Iteration())
	}
}

func TestEnableCheckpointsWritesDuringRun(t *testing.T) {
	abs := solver.DefaultAbstraction()
	cfg := solver.DefaultTrainingConfig()
	cfg.Iterations = 25
	cfg.Seed = 21

	trainer, err := solver.NewTrainer(smallHeadsUpSetup(), abs, cfg)
	if err != nil {
		t.Fatalf("new trainer: %v", err)
	}

	path := filepath.Join(t.TempDir(), "auto.json")
	trainer.EnableCheckpoints(path, 10)

	if err := trainer.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	loaded, err := solver.LoadTrainerFromCheckpoint(path)
	if err != nil {
		t.Fatalf("load auto checkpoint: %v", err)
	}
	if loaded.Iteration() != 25 {
		t.Fatalf("final checkpoint iteration = %d, want 25", loaded.Iteration())
	}
}

func TestLoadTrainerFromCheckpointRejectsMissingFile(t *testing.T) {
	_, err := solver.LoadTrainerFromCheckpoint(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatalf("expected error for missing checkpoint file")
	}
}
