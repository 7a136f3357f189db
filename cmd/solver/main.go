package main

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/hucfr/solver"
	"github.com/lox/hucfr/tree"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train TrainCmd `cmd:"" help:"run chance-sampled CFR training and emit a blueprint"`
	Eval  EvalCmd  `cmd:"" help:"read out a trained blueprint"`
}

// TrainCmd runs a full solve: it assembles a HandSetup and AbstractionConfig
// from flags, builds the betting tree, and drives a Trainer to completion
// (or to its iteration timeout / cancellation), saving the resulting
// Blueprint to Out.
type TrainCmd struct {
	Out        string `help:"path to write the blueprint" required:""`
	Iterations int    `help:"number of CFR iterations" default:"100000"`
	Seed       int64  `help:"random seed; 0 uses the default seed" default:"0"`
	Parallel   int    `help:"number of concurrent tables sharing the regret table" default:"1"`

	SmallBlind    int    `help:"small blind size" default:"1"`
	BigBlind      int    `help:"big blind size" default:"2"`
	Stack         int    `help:"starting stack size, in chips" default:"200"`
	OopRange      string `help:"out-of-position range spec (e.g. \"AA,KK,AKs\")" required:""`
	IpRange       string `help:"in-position range spec" required:""`

	BetSizes       []float64 `help:"pot-fraction bet/raise sizes offered at every action node" default:"0.5,1.0" sep:","`
	MaxBetsPreflop int       `help:"raise cap on the preflop street" default:"3"`
	MaxBetsFlop    int       `help:"raise cap on the flop" default:"3"`
	MaxBetsTurn    int       `help:"raise cap on the turn" default:"3"`
	MaxBetsRiver   int       `help:"raise cap on the river" default:"3"`
	AllowAllIn     bool      `help:"always offer an all-in action alongside the configured bet sizes" default:"true"`
	MinRaiseSize   float64   `help:"minimum legal raise increment, as a pot fraction" default:"0.5"`

	PreflopBuckets  int `help:"number of preflop hole-card buckets" default:"10"`
	PostflopBuckets int `help:"number of postflop board-texture buckets" default:"20"`

	CheckpointPath  string `help:"path to write periodic checkpoints"`
	CheckpointEvery int    `help:"checkpoint interval in iterations (0 disables)" default:"0"`

	ProgressEvery    int `help:"log progress every N iterations (0 disables)" default:"1000"`
	ConvergenceEvery int `help:"record a convergence sample every N iterations (0 disables)" default:"1000"`

	CFRPlus         bool   `help:"enable CFR+ (negative regrets clipped to zero)"`
	LinearAveraging bool   `help:"weight strategy-sum accumulation by iteration number"`
	Sampling        string `help:"sampling mode (external|full)" enum:"external,full" default:"external"`

	IterationTimeout time.Duration `help:"wall-clock budget for the whole solve (0 disables)" default:"0"`

	ResumeFrom string `help:"resume training from a checkpoint file, ignoring the setup flags above"`
	CPUProfile string `help:"write a CPU profile to this path"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("hucfr"),
		kong.Description("heads-up no-limit hold'em chance-sampled CFR solver"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)

	switch ctx.Command() {
	case "train":
		if err := cli.Train.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("training failed")
		}
	case "eval":
		if err := cli.Eval.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("evaluation failed")
		}
	default:
		log.Fatal().Msgf("unknown command: %s", ctx.Command())
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

func (cmd *TrainCmd) Run(ctx context.Context) error {
	mode, err := parseSamplingMode(cmd.Sampling)
	if err != nil {
		return err
	}

	if cmd.CPUProfile != "" {
		f, err := os.Create(cmd.CPUProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", cmd.CPUProfile).Msg("CPU profiling enabled")
	}

	var trainer *solver.Trainer

	if cmd.ResumeFrom != "" {
		trainer, err = solver.LoadTrainerFromCheckpoint(cmd.ResumeFrom)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if cmd.Iterations > 0 {
			if err := trainer.SetTotalIterations(cmd.Iterations); err != nil {
				return err
			}
		}
		if cmd.CheckpointPath != "" && cmd.CheckpointEvery > 0 {
			trainer.EnableCheckpoints(cmd.CheckpointPath, cmd.CheckpointEvery)
		}
		trainCfg := trainer.TrainingConfig()
		if mode != trainCfg.Sampling {
			log.Warn().Str("requested", mode.String()).Str("checkpoint", trainCfg.Sampling.String()).Msg("cannot change sampling mode when resuming from checkpoint; keeping original")
		}
		if cmd.CFRPlus && !trainCfg.UseCFRPlus {
			log.Warn().Msg("cannot enable CFR+ when resuming from checkpoint; keeping original regret mode")
		}
		log.Info().Int("iterations", trainCfg.Iterations).Int64("resume_iteration", trainer.Iteration()).Int("parallel", trainCfg.ParallelTables).Str("sampling", trainCfg.Sampling.String()).Str("checkpoint", cmd.ResumeFrom).Msg("resuming training run")
	} else {
		betting := tree.BettingConfig{
			BetSizes: cmd.BetSizes,
			MaxBetsPerStreet: map[string]int{
				"preflop": cmd.MaxBetsPreflop,
				"flop":    cmd.MaxBetsFlop,
				"turn":    cmd.MaxBetsTurn,
				"river":   cmd.MaxBetsRiver,
			},
			AllowAllIn:    cmd.AllowAllIn,
			MinRaiseSize:  cmd.MinRaiseSize,
			StartingStack: cmd.Stack,
			StartingPot:   cmd.SmallBlind + cmd.BigBlind,
		}

		setup := solver.HandSetup{
			Betting:       betting,
			SmallBlind:    cmd.SmallBlind,
			BigBlind:      cmd.BigBlind,
			StartingStack: cmd.Stack,
			RangeSpecs:    [2]string{cmd.OopRange, cmd.IpRange},
		}

		abs := solver.AbstractionConfig{
			PreflopBucketCount:  cmd.PreflopBuckets,
			PostflopBucketCount: cmd.PostflopBuckets,
		}

		train := solver.DefaultTrainingConfig()
		train.Iterations = cmd.Iterations
		train.ParallelTables = cmd.Parallel
		if cmd.Seed != 0 {
			train.Seed = cmd.Seed
		}
		train.CheckpointEvery = cmd.CheckpointEvery
		train.ProgressEvery = cmd.ProgressEvery
		train.ConvergenceEvery = cmd.ConvergenceEvery
		train.UseCFRPlus = cmd.CFRPlus
		train.LinearAveraging = cmd.LinearAveraging
		train.Sampling = mode
		train.IterationTimeout = cmd.IterationTimeout

		trainer, err = solver.NewTrainer(setup, abs, train)
		if err != nil {
			return err
		}
		if cmd.CheckpointPath != "" && cmd.CheckpointEvery > 0 {
			trainer.EnableCheckpoints(cmd.CheckpointPath, cmd.CheckpointEvery)
		}
		log.Info().Int("iterations", train.Iterations).Int("parallel", train.ParallelTables).Bool("cfr_plus", train.UseCFRPlus).Str("sampling", train.Sampling.String()).Msg("starting training run")
	}

	start := time.Now()
	progress := func(p solver.Progress) {
		log.Info().
			Int("iteration", p.Iteration).
			Int("infosets", p.RegretTableSize).
			Int64("nodes", p.Stats.NodesVisited).
			Int64("terminals", p.Stats.TerminalNodes).
			Int("max_depth", p.Stats.MaxDepth).
			Dur("iter_time", p.Stats.IterationTime).
			Msg("progress")
	}

	if err := trainer.Run(ctx, progress); err != nil {
		return err
	}

	bp := trainer.Blueprint()
	duration := time.Since(start)
	log.Info().Dur("duration", duration).Int("infosets", len(bp.Strategies)).Msg("training completed")

	if err := bp.Save(cmd.Out); err != nil {
		return fmt.Errorf("save blueprint: %w", err)
	}
	log.Info().Str("path", cmd.Out).Msg("blueprint saved")
	return nil
}

func parseSamplingMode(input string) (solver.SamplingMode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "external":
		return solver.SamplingModeExternal, nil
	case "full":
		return solver.SamplingModeFullTraversal, nil
	default:
		return solver.SamplingModeExternal, fmt.Errorf("unknown sampling mode %q", input)
	}
}
