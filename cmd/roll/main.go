// Package main provides the roll binary: it evaluates dice expressions,
// creature attacks and saves, and Lua roll scripts from the command line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetrace/internal/config"
	"github.com/cory-johannsen/dicetrace/internal/game/combat"
	"github.com/cory-johannsen/dicetrace/internal/game/creature"
	"github.com/cory-johannsen/dicetrace/internal/game/dice"
	"github.com/cory-johannsen/dicetrace/internal/observability"
	"github.com/cory-johannsen/dicetrace/internal/scripting"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage error")

type options struct {
	configPath   string
	adv          bool
	dis          bool
	d20          string
	seed         int64
	rolls        string
	creaturePath string
	save         bool
	scriptPath   string
	plain        bool
	exprs        []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "loading config: %v\n", err)
		return exitError
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "initializing logger: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	src, err := buildSource(opts, cfg.Dice)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	roller := dice.NewLoggedRoller(src, logger, dice.WithMaxDice(cfg.Dice.MaxDice))
	out := newRenderer(stdout, opts.plain)

	if err := execute(opts, cfg, roller, logger, out); err != nil {
		logger.Debug("roll failed", zap.Error(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("roll", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to configuration file; empty uses defaults and DICE_* env")
	fs.BoolVar(&opts.adv, "adv", false, "roll each expression twice and keep the higher total")
	fs.BoolVar(&opts.dis, "dis", false, "roll each expression twice and keep the lower total")
	fs.StringVar(&opts.d20, "d20", "", "roll a single d20 pair with this modifier (requires -adv or -dis)")
	fs.Int64Var(&opts.seed, "seed", 0, "seed a reproducible random source; 0 uses the configured source")
	fs.StringVar(&opts.rolls, "rolls", "", "comma-separated die values to replay instead of random draws, e.g. 4,2,6,5")
	fs.StringVar(&opts.creaturePath, "creature", "", "creature stat block (YAML or JSON) to attack with")
	fs.BoolVar(&opts.save, "save", false, "with -creature, roll a Strength saving throw instead of an attack")
	fs.StringVar(&opts.scriptPath, "script", "", "Lua script to run against the dice engine")
	fs.BoolVar(&opts.plain, "plain", false, "print plain text instead of styled output")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: roll [flags] <expression>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.exprs = fs.Args()

	switch {
	case opts.adv && opts.dis:
		return options{}, fmt.Errorf("-adv and -dis are mutually exclusive")
	case opts.d20 != "" && !opts.adv && !opts.dis:
		return options{}, fmt.Errorf("-d20 requires -adv or -dis")
	case opts.save && opts.creaturePath == "":
		return options{}, fmt.Errorf("-save requires -creature")
	case opts.d20 == "" && opts.creaturePath == "" && opts.scriptPath == "" && len(opts.exprs) == 0:
		fs.Usage()
		return options{}, fmt.Errorf("no expression given")
	}
	return opts, nil
}

func (o options) mode() dice.Mode {
	switch {
	case o.adv:
		return dice.Advantage
	case o.dis:
		return dice.Disadvantage
	default:
		return 0
	}
}

// buildSource picks the randomness source: replayed values win over a seed,
// which wins over the configured source.
func buildSource(opts options, cfg config.DiceConfig) (dice.Source, error) {
	if opts.rolls != "" {
		values, err := parseRolls(opts.rolls)
		if err != nil {
			return nil, err
		}
		return dice.NewSequenceSource(values...), nil
	}
	if opts.seed != 0 {
		return dice.NewSeededSource(opts.seed), nil
	}
	if cfg.Source == "seeded" {
		return dice.NewSeededSource(cfg.Seed), nil
	}
	return dice.NewCryptoSource(), nil
}

func parseRolls(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("-rolls: %q is not an integer", p)
		}
		values = append(values, v)
	}
	return values, nil
}

func execute(opts options, cfg config.Config, roller *dice.Roller, logger *zap.Logger, out *renderer) error {
	mode := opts.mode()

	if opts.d20 != "" {
		mod, err := strconv.Atoi(opts.d20)
		if err != nil {
			return fmt.Errorf("%w: -d20 modifier %q is not an integer", errUsage, opts.d20)
		}
		res, err := roller.RollD20(mode, mod)
		if err != nil {
			return err
		}
		out.D20(res)
	}

	for _, expr := range opts.exprs {
		if mode == 0 {
			res, err := roller.RollExpr(expr)
			if err != nil {
				return err
			}
			out.Result(res)
			continue
		}
		res, err := roller.RollExprMode(expr, mode)
		if err != nil {
			return err
		}
		out.Advantage(res)
	}

	if opts.creaturePath != "" {
		c, err := creature.LoadFile(opts.creaturePath)
		if err != nil {
			return err
		}
		resolver := combat.NewResolver(roller, logger)
		if opts.save {
			res, err := resolver.Save(c, "str", mode)
			if err != nil {
				return err
			}
			out.Save(c.Name, res)
		} else {
			res, err := resolver.ResolveAttack(combat.PickAttack(c), mode)
			if err != nil {
				return err
			}
			out.Attack(c.Name, res)
		}
	}

	if opts.scriptPath != "" {
		engine := scripting.NewEngine(roller, logger, cfg.Scripting.InstructionLimit)
		defer engine.Close()
		if err := engine.RunFile(opts.scriptPath); err != nil {
			return err
		}
	}
	return nil
}
