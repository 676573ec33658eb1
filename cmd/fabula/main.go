// Fabula plays menu-driven interactive fiction written as Lua or YAML
// world files.
// Usage: fabula [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--config <file>] <game_directory>
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/term"

	"github.com/nathoo/fabula/cli"
	"github.com/nathoo/fabula/config"
	"github.com/nathoo/fabula/engine"
	"github.com/nathoo/fabula/loader"
	"github.com/nathoo/fabula/logger"
	"github.com/nathoo/fabula/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: fabula [--version] [--plain] [--script <file>] [--trace] [--seed <n>] [--config <file>] <game_directory>\n"

func main() {
	plain := false
	trace := false
	var gameDir, scriptFile, seedArg string
	configPath := config.DefaultPath

	args := os.Args[1:]
	next := func(i *int, flag string) string {
		if *i+1 >= len(args) {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", flag)
			os.Exit(1)
		}
		*i++
		return args[*i]
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("fabula %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--script":
			scriptFile = next(&i, "--script")
		case "--seed":
			seedArg = next(&i, "--seed")
		case "--config":
			configPath = next(&i, "--config")
		default:
			if gameDir == "" {
				gameDir = args[i]
			}
		}
	}

	if gameDir == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if seedArg != "" {
		if cfg.Seed, err = strconv.ParseInt(seedArg, 10, 64); err != nil {
			fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
			os.Exit(1)
		}
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	log, closeLog, err := logger.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Load and compile game content.
	defs, err := loader.LoadWithLogger(gameDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading game: %v\n", err)
		os.Exit(1)
	}

	eng, err := engine.New(defs, engine.WithSeed(cfg.Seed), engine.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting game: %v\n", err)
		os.Exit(1)
	}
	log.Info("game started", "title", defs.Game.Title, "seed", eng.RNG.Seed())

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := newCLI(eng, cfg, interactive)
		c.In = f
		c.EchoInput = true
		c.Trace = trace
		c.Run()
		return
	}

	// Use plain CLI if asked to or stdout is not a terminal.
	if plain || cfg.Plain || !interactive {
		c := newCLI(eng, cfg, interactive)
		c.Trace = trace
		c.Run()
		return
	}

	if err := tui.Run(eng, tui.Options{Reveal: cfg.Reveal, Wrap: cfg.Wrap}); err != nil {
		logger.WithError(log, err).Error("tui failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCLI prints the banner and wraps at the configured width, or at the
// terminal width when there is one.
func newCLI(eng *engine.Engine, cfg *config.Config, interactive bool) *cli.CLI {
	g := eng.Defs.Game
	fmt.Printf("%s v%s by %s\n\n", g.Title, g.Version, g.Author)

	c := cli.New(eng)
	c.Width = cfg.Wrap
	if c.Width == 0 && interactive {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			c.Width = w
		}
	}
	return c
}
