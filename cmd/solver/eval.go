package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lox/hucfr/poker"
	"github.com/lox/hucfr/rangepkg"
	"github.com/lox/hucfr/report"
	"github.com/lox/hucfr/solver"
	"github.com/lox/hucfr/tree"
)

// EvalCmd loads a saved blueprint and prints the Strategy Reporter's
// aggregated hand-class breakdown for a fixed situation: a street, an
// optional board, both players' ranges, and the pot/to-call sizes a
// traversal would have seen at that point in the tree.
type EvalCmd struct {
	Blueprint string `help:"path to a saved blueprint" required:""`

	Player   int    `help:"acting player (0=out of position, 1=in position)" default:"0"`
	OopRange string `help:"out-of-position range spec" required:""`
	IpRange  string `help:"in-position range spec" required:""`
	Board    string `help:"board cards, space separated (e.g. \"As Kd 7h\"); empty for preflop"`

	Pot         int `help:"pot size at this situation" default:"3"`
	ToCall      int `help:"amount the acting player faces" default:"0"`
	ActionCount int `help:"number of legal actions at this situation" default:"2"`

	EquityTrials int   `help:"Monte Carlo trials for each hand-class's equity estimate" default:"2000"`
	Seed         int64 `help:"random seed for equity sampling" default:"1"`

	Key string `help:"if set, look up raw ActionWeights for this infoset key string instead of building a full report"`
}

func (cmd *EvalCmd) Run(ctx context.Context) error {
	bp, err := solver.LoadBlueprint(cmd.Blueprint)
	if err != nil {
		return fmt.Errorf("load blueprint: %w", err)
	}

	log.Info().
		Str("generated", bp.GeneratedAt.Format("2006-01-02T15:04:05Z07:00")).
		Int("iterations", bp.Iterations).
		Int("infosets", len(bp.Strategies)).
		Msg("blueprint loaded")

	policy := report.NewPolicy(bp)

	if cmd.Key != "" {
		weights, err := policy.ActionWeights(parseInfoSetKey(cmd.Key), cmd.ActionCount)
		if err != nil {
			return fmt.Errorf("action weights: %w", err)
		}
		log.Info().Str("key", cmd.Key).Floats64("weights", weights).Msg("action weights")
		return nil
	}

	mapper, err := solver.NewBucketMapper(bp.Abstraction)
	if err != nil {
		return fmt.Errorf("build bucket mapper: %w", err)
	}

	board, err := parseBoard(cmd.Board)
	if err != nil {
		return fmt.Errorf("parse board: %w", err)
	}

	oopRange, err := rangepkg.Parse(cmd.OopRange)
	if err != nil {
		return fmt.Errorf("parse oop range: %w", err)
	}
	ipRange, err := rangepkg.Parse(cmd.IpRange)
	if err != nil {
		return fmt.Errorf("parse ip range: %w", err)
	}

	heroRange, villainRange := oopRange, ipRange
	if cmd.Player == 1 {
		heroRange, villainRange = ipRange, oopRange
	}

	sit := report.Situation{
		Player:      cmd.Player,
		Street:      streetForBoard(board),
		Board:       board,
		Pot:         cmd.Pot,
		ToCall:      cmd.ToCall,
		ActionCount: cmd.ActionCount,
	}

	rng := rand.New(rand.NewSource(cmd.Seed))
	rep, err := report.Build(bp, mapper, sit, heroRange, villainRange, cmd.EquityTrials, rng)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	log.Info().Strs("board_tags", rep.BoardTags).Str("street", sit.Street.String()).Msg("report")
	for _, hc := range rep.ByHandClass {
		log.Info().
			Str("hand_class", hc.HandClass).
			Floats64("actions", hc.Actions).
			Float64("weight", hc.Weight).
			Float64("equity", hc.Equity).
			Msg("hand class")
	}
	return nil
}

func parseBoard(s string) (poker.Hand, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return poker.Hand(0), nil
	}
	cards, err := poker.ParseCards(s)
	if err != nil {
		return poker.Hand(0), err
	}
	return poker.NewHand(cards...), nil
}

func streetForBoard(board poker.Hand) tree.Street {
	switch board.CountCards() {
	case 0, 1, 2:
		return tree.Preflop
	case 3:
		return tree.Flop
	case 4:
		return tree.Turn
	default:
		return tree.River
	}
}

// parseInfoSetKey parses the "%d/%d/%d/%d/%d/%d" form produced by
// InfoSetKey.String so a raw key can be passed on the command line without
// reconstructing it from a situation.
func parseInfoSetKey(s string) solver.InfoSetKey {
	var key solver.InfoSetKey
	var street, player int
	fields := strings.Split(s, "/")
	for len(fields) < 6 {
		fields = append(fields, "0")
	}
	fmt.Sscanf(fields[0], "%d", &street)
	fmt.Sscanf(fields[1], "%d", &player)
	fmt.Sscanf(fields[2], "%d", &key.HoleBucket)
	fmt.Sscanf(fields[3], "%d", &key.BoardBucket)
	fmt.Sscanf(fields[4], "%d", &key.PotBucket)
	fmt.Sscanf(fields[5], "%d", &key.ToCallBucket)
	key.Street = tree.Street(street)
	key.Player = player
	return key
}
