// wfcgen generates a level headlessly and prints it. Build:
//
//	go build -o wfcgen ./cmd/wfcgen
//
// Usage:
//
//	./wfcgen [-config wavechase.yaml] [-level 3] [-seed 42] [-format ascii|json|emoji] [-sim 600]
//	./wfcgen -schema > wavechase.schema.json
//
// With -sim it also runs the chase for that many ticks against a randomly
// walking target and prints per-agent statistics.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"wavechase/internal/config"
	"wavechase/internal/generate"
	"wavechase/internal/sim"
	"wavechase/internal/wfc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wfcgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML config file")
	level := fs.Int("level", 0, "level number (overrides config)")
	seed := fs.Int64("seed", 0, "seed (overrides config when non-zero)")
	format := fs.String("format", "ascii", "output format: ascii, emoji or json")
	check := fs.Bool("check", true, "verify grid invariants and exit 1 on violation")
	ticks := fs.Int("sim", 0, "simulate this many ticks after generating")
	schema := fs.Bool("schema", false, "print the config file JSON schema and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *schema {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(config.Schema()); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if *level > 0 {
		cfg.Level.Number = *level
	}
	if *seed != 0 {
		cfg.Level.Seed = *seed
	}
	log, err := config.NewLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	cat, err := cfg.Catalog()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	res, wcfg := generate.Build(cfg.Level.Params(), cat, log)
	switch strings.ToLower(*format) {
	case "json":
		if err := writeJSON(stdout, res, wcfg.Seed); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	case "emoji":
		fmt.Fprint(stdout, render(res, true))
	case "ascii":
		fmt.Fprint(stdout, render(res, false))
	default:
		fmt.Fprintf(stderr, "error: unknown format %q\n", *format)
		return 2
	}

	if *check {
		if err := wfc.Check(wcfg, res); err != nil {
			fmt.Fprintf(stderr, "invariant violation:\n%v\n", err)
			return 1
		}
	}

	if *ticks > 0 {
		s, err := sim.New(res, sim.Options{
			Seed:          wcfg.Seed,
			Brains:        cfg.Brains.Spawn,
			Agent:         cfg.Agent,
			Brain:         cfg.Brains.Params,
			LockGates:     cfg.Sim.LockGates,
			Walk:          true,
			TrailSpacing:  cfg.Sim.TrailSpacing,
			TrailCapacity: cfg.Sim.TrailCapacity,
			Log:           log,
		})
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		for i := 0; i < *ticks; i++ {
			s.Step(cfg.Sim.Tick)
		}
		report(stdout, s)
	}
	return 0
}

// render draws one rune per cell, or one emoji per cell when emoji is set.
// Holes are blank.
func render(res wfc.Result, emoji bool) string {
	var b strings.Builder
	for y := 0; y < res.Height; y++ {
		for x := 0; x < res.Width; x++ {
			c := res.At(x, y)
			switch {
			case c.Tile == nil && emoji:
				b.WriteString("  ")
			case c.Tile == nil:
				b.WriteByte(' ')
			case emoji && c.Tile.Glyph != "":
				b.WriteString(c.Tile.Glyph)
			default:
				b.WriteRune(c.Tile.ASCII)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type jsonCell struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Kind      string `json:"kind,omitempty"`
	Class     string `json:"class,omitempty"`
	Rotation  int    `json:"rotation"`
	SkipSpawn bool   `json:"skip_spawn,omitempty"`
}

type jsonResult struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Seed   int64      `json:"seed"`
	Holes  int        `json:"holes"`
	Cells  []jsonCell `json:"cells"`
}

func writeJSON(w io.Writer, res wfc.Result, seed int64) error {
	out := jsonResult{Width: res.Width, Height: res.Height, Seed: seed, Holes: res.Holes()}
	for _, c := range res.Cells {
		jc := jsonCell{X: c.X, Y: c.Y, Rotation: c.Rotation, SkipSpawn: c.SkipSpawn}
		if c.Tile != nil {
			jc.Kind, jc.Class = c.Tile.Name, c.Tile.Class.String()
		}
		out.Cells = append(out.Cells, jc)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func report(w io.Writer, s *sim.Sim) {
	fmt.Fprintf(w, "\nsimulated %d ticks (%v), %d gates locked\n", s.Ticks, s.Now, s.Gates.LockedCount())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "brain\tstate\tpanic\tdecisions\tpanics\toverrides\tgates\tpath fails\ttimeouts\tdist")
	target := s.TargetPos()
	for _, a := range s.Agents {
		st := a.Stats
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%d\t%d\t%d\t%d\t%d\t%d\t%.1f\n",
			a.Brain.Name(), a.State, a.Panic, st.Decisions, st.PanicEntries,
			st.Overrides, st.GateCrossings, st.PathFailures, st.Timeouts, a.Pos.Dist(target))
	}
	tw.Flush()
}
