// wavechase opens the interactive viewer: a level is generated on screen,
// then four agents chase the target you steer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"wavechase/internal/config"
	"wavechase/internal/game"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("wavechase", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	level := fs.Int("level", 0, "starting level (overrides config)")
	seed := fs.Int64("seed", 0, "seed (overrides config when non-zero)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		return err
	}
	if *level > 0 {
		cfg.Level.Number = *level
	}
	if *seed != 0 {
		cfg.Level.Seed = *seed
	}

	// The terminal belongs to the viewer, so logs only go to a file.
	var out io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		out = f
	}
	log, err := config.NewLogger(cfg.Log, out)
	if err != nil {
		return err
	}

	g, err := game.New(cfg, log)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := g.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
