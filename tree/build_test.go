package tree

import (
	"errors"
	"testing"

	"github.com/lox/hucfr/apperrors"
)

func testConfig() BettingConfig {
	return BettingConfig{
		BetSizes:         []float64{0.5, 1.0},
		MaxBetsPerStreet: map[string]int{"preflop": 3, "flop": 3, "turn": 2, "river": 2},
		AllowAllIn:       true,
		MinRaiseSize:     0.5,
		StartingStack:    200,
		StartingPot:      0,
	}
}

func findEdge(node *Node, kind ActionKind) *Edge {
	for i := range node.Edges {
		if node.Edges[i].Action.Kind == kind {
			return &node.Edges[i]
		}
	}
	return nil
}

func TestBuildRootIsActionNode(t *testing.T) {
	t.Parallel()
	root := NewRootState(200, 1, 2)
	node, err := Build(root, testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Kind != KindAction {
		t.Fatalf("expected root to be an action node, got %v", node.Kind)
	}
	if node.ActingPlayer != inPosition {
		t.Fatalf("expected button to act first preflop, got player %d", node.ActingPlayer)
	}
}

func TestFoldLeadsToTerminal(t *testing.T) {
	t.Parallel()
	root := NewRootState(200, 1, 2)
	node, err := Build(root, testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	edge := findEdge(node, Fold)
	if edge == nil {
		t.Fatal("expected a Fold edge at the root")
	}
	if !edge.Child.IsTerminal() {
		t.Fatalf("expected Fold to lead to a terminal node, got %v", edge.Child.Kind)
	}
	if edge.Child.TerminalKind != TerminalFold {
		t.Fatalf("expected TerminalFold, got %v", edge.Child.TerminalKind)
	}
	if edge.Child.FoldWinner != outOfPosition {
		t.Fatalf("expected the big blind to win an SB/button fold, got player %d", edge.Child.FoldWinner)
	}
}

func TestBigBlindGetsOption(t *testing.T) {
	t.Parallel()
	root := NewRootState(200, 1, 2)
	node, err := Build(root, testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	callEdge := findEdge(node, Call)
	if callEdge == nil {
		t.Fatal("expected a Call edge at the root")
	}
	// After the small blind calls, the big blind must still get a decision:
	// the next node must be an action node (BB's option), not a chance node.
	if callEdge.Child.Kind != KindAction {
		t.Fatalf("expected big blind option action node after SB call, got %v", callEdge.Child.Kind)
	}
	if callEdge.Child.ActingPlayer != outOfPosition {
		t.Fatalf("expected big blind to act, got player %d", callEdge.Child.ActingPlayer)
	}

	// And once the big blind also checks, the street closes into a chance node.
	checkEdge := findEdge(callEdge.Child, Check)
	if checkEdge == nil {
		t.Fatal("expected a Check edge for the big blind's option")
	}
	if checkEdge.Child.Kind != KindChance {
		t.Fatalf("expected street closure into a chance node after BB checks, got %v", checkEdge.Child.Kind)
	}
	if checkEdge.Child.DealStreet != Flop || checkEdge.Child.DealCount != 3 {
		t.Fatalf("expected a 3-card flop deal, got street=%v count=%d", checkEdge.Child.DealStreet, checkEdge.Child.DealCount)
	}
}

func TestAllInRunsOutWithoutFurtherActionNodes(t *testing.T) {
	t.Parallel()
	root := NewRootState(10, 1, 2) // tiny stack forces an immediate all-in
	node, err := Build(root, testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	allInEdge := findEdge(node, AllIn)
	if allInEdge == nil {
		t.Fatal("expected an AllIn edge at the root with a 10-chip stack")
	}
	callEdge := findEdge(allInEdge.Child, Call)
	if callEdge == nil {
		t.Fatal("expected the big blind to be able to call the shove")
	}
	// Calling exhausts both stacks, so the rest of the tree is chance nodes
	// straight through to a showdown terminal.
	cur := callEdge.Child
	streetsSeen := 0
	for cur.Kind == KindChance {
		streetsSeen++
		cur = cur.Next
	}
	if streetsSeen != 3 {
		t.Fatalf("expected 3 chance deals (flop/turn/river) after an all-in call, got %d", streetsSeen)
	}
	if !cur.IsTerminal() || cur.TerminalKind != TerminalShowdown {
		t.Fatalf("expected a showdown terminal after the runout, got kind=%v terminal=%v", cur.Kind, cur.TerminalKind)
	}
}

func TestMinRaiseSizeElidesSmallRaises(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BetSizes = []float64{0.05, 1.0} // 0.05 pot should fall under a 0.5 min-raise
	cfg.MinRaiseSize = 0.5

	root := NewRootState(200, 1, 2)
	node, err := Build(root, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, edge := range node.Edges {
		if edge.Action.Kind == Raise && edge.Action.Amount < int(0.5*float64(root.Pot(0))) {
			t.Fatalf("found a raise amount %d below the configured minimum increment", edge.Action.Amount)
		}
	}
}

func TestTreeTooLarge(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.BetSizes = []float64{0.1, 0.25, 0.5, 0.75, 1.0, 1.5, 2.0}
	cfg.MaxBetsPerStreet = map[string]int{"preflop": 8, "flop": 8, "turn": 8, "river": 8}
	cfg.MaxActionsPerNode = 9
	cfg.NodeCeiling = 100

	_, err := Build(NewRootState(100000, 1, 2), cfg)
	if err == nil {
		t.Fatal("expected TreeTooLarge for an unreasonably deep configuration")
	}
	var tooLarge *apperrors.TreeTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected *apperrors.TreeTooLarge, got %T: %v", err, err)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MinRaiseSize = 0
	_, err := Build(NewRootState(200, 1, 2), cfg)
	if err == nil {
		t.Fatal("expected InvalidConfig for a zero MinRaiseSize")
	}
	var invalid *apperrors.InvalidConfig
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *apperrors.InvalidConfig, got %T: %v", err, err)
	}
}
