// Package config loads the YAML settings shared by the viewer and wfcgen.
// Every field is optional; anything left out keeps its Default value.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"wavechase/assets"
	"wavechase/internal/agent"
	"wavechase/internal/brain"
	"wavechase/internal/generate"
	"wavechase/internal/tile"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Level  LevelConfig  `yaml:"level"`
	Agent  agent.Params `yaml:"agent"`
	Brains BrainsConfig `yaml:"brains"`
	Sim    SimConfig    `yaml:"sim"`
	Log    LogConfig    `yaml:"log"`
	// Tiles is a path to a catalog replacing the embedded one.
	Tiles string `yaml:"tiles"`
}

// LevelConfig picks a level by number and seed. The pointer fields
// override the per-level scaling when set.
type LevelConfig struct {
	Number int   `yaml:"number"`
	Seed   int64 `yaml:"seed"`

	Width               *int `yaml:"width"`
	Height              *int `yaml:"height"`
	Doors               *int `yaml:"doors"`
	Portals             *int `yaml:"portals"`
	TunnelPairs         *int `yaml:"tunnel_pairs"`
	MaxDoors            *int `yaml:"max_doors"`
	MaxPortals          *int `yaml:"max_portals"`
	MaxBorderTunnels    *int `yaml:"max_border_tunnels"`
	RejectHolesAttempts *int `yaml:"reject_holes_attempts"`
}

type BrainsConfig struct {
	// Spawn lists one brain id per agent.
	Spawn []string `yaml:"spawn"`

	brain.Params `yaml:",inline"`
}

type SimConfig struct {
	Tick          time.Duration `yaml:"tick"`
	StepsPerFrame int           `yaml:"steps_per_frame"` // wfc steps per frame while animating
	LockGates     bool          `yaml:"lock_gates"`
	TrailSpacing  float64       `yaml:"trail_spacing"`
	TrailCapacity int           `yaml:"trail_capacity"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Level:  LevelConfig{Number: 1, Seed: 1},
		Agent:  agent.DefaultParams(),
		Brains: BrainsConfig{Spawn: []string{"pursuit", "wander", "ambush", "flee"}, Params: brain.DefaultParams()},
		Sim: SimConfig{
			Tick:          50 * time.Millisecond,
			StepsPerFrame: 4,
			LockGates:     true,
			TrailSpacing:  1,
			TrailCapacity: 16,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads YAML from r over the defaults. Unknown keys are errors.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile loads path, or returns the defaults when path is empty.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Level.Number < 1:
		return fmt.Errorf("%w: level.number %d < 1", ErrInvalid, c.Level.Number)
	case c.Sim.Tick <= 0:
		return fmt.Errorf("%w: sim.tick must be positive", ErrInvalid)
	case c.Agent.Speed <= 0:
		return fmt.Errorf("%w: agent.speed must be positive", ErrInvalid)
	case c.Agent.PanicMax <= 0:
		return fmt.Errorf("%w: agent.panic_max must be positive", ErrInvalid)
	case c.Agent.MaxGateCrossings < 0 || c.Agent.MaxGateCrossings > 2:
		return fmt.Errorf("%w: agent.max_gate_crossings %d outside 0..2", ErrInvalid, c.Agent.MaxGateCrossings)
	}
	for _, dim := range []*int{c.Level.Width, c.Level.Height} {
		if dim != nil && *dim < 0 {
			return fmt.Errorf("%w: negative grid size", ErrInvalid)
		}
	}
	for _, id := range c.Brains.Spawn {
		if _, err := brain.New(id, c.Brains.Params); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != "text" && f != "json" {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Params resolves the level settings into generator parameters.
func (l LevelConfig) Params() generate.Params {
	p := generate.LevelParams(l.Number, l.Seed)
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Width, l.Width)
	set(&p.Height, l.Height)
	set(&p.Doors, l.Doors)
	set(&p.Portals, l.Portals)
	set(&p.TunnelPairs, l.TunnelPairs)
	set(&p.MaxDoors, l.MaxDoors)
	set(&p.MaxPortals, l.MaxPortals)
	set(&p.MaxBorderTunnels, l.MaxBorderTunnels)
	set(&p.RejectHolesAttempts, l.RejectHolesAttempts)
	return p
}

// Catalog loads the configured tile catalog, or the embedded default.
func (c Config) Catalog() (*tile.Catalog, error) {
	if c.Tiles == "" {
		return tile.LoadCatalog(bytes.NewReader(assets.DefaultTiles))
	}
	f, err := os.Open(c.Tiles)
	if err != nil {
		return nil, fmt.Errorf("config: tiles: %w", err)
	}
	defer f.Close()
	return tile.LoadCatalog(f)
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
	}
	return lvl, nil
}

// NewLogger builds a logger writing to w in the configured format.
func NewLogger(lc LogConfig, w io.Writer) (*slog.Logger, error) {
	lvl, err := parseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
