// Package game is the interactive terminal viewer. It animates level
// generation step by step, then runs the chase with the arrow keys steering
// the target.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"wavechase/internal/config"
	"wavechase/internal/generate"
	"wavechase/internal/render"
	"wavechase/internal/sim"
	"wavechase/internal/tile"
	"wavechase/internal/wfc"
)

// Phase tracks the viewer state machine.
type Phase uint8

const (
	PhaseGenerating Phase = iota
	PhaseChasing
)

const maxMessages = 50

const hint = "arrows/hjkl steer  space pause  n step  r reseed  [ ] level  a ascii  q quit"

// Game is the top-level orchestrator.
type Game struct {
	screen   tcell.Screen
	renderer *render.Renderer
	cfg      config.Config
	cat      *tile.Catalog
	log      *slog.Logger

	phase    Phase
	paused   bool
	run      *wfc.IncrementalRun
	sim      *sim.Sim
	messages []string
}

// New creates a Game on the terminal.
func New(cfg config.Config, log *slog.Logger) (*Game, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return NewWithScreen(screen, cfg, log)
}

// NewWithScreen builds a Game on an initialized screen, such as one backed
// by an SSH session. The Game finalizes the screen when Run returns.
func NewWithScreen(screen tcell.Screen, cfg config.Config, log *slog.Logger) (*Game, error) {
	if log == nil {
		log = slog.Default()
	}
	cat, err := cfg.Catalog()
	if err != nil {
		screen.Fini()
		return nil, err
	}
	g := &Game{
		screen:   screen,
		renderer: render.NewRenderer(screen, false),
		cfg:      cfg,
		cat:      cat,
		log:      log,
	}
	g.loadLevel()
	return g, nil
}

// loadLevel starts animating generation for the configured level and seed.
func (g *Game) loadLevel() {
	p := g.cfg.Level.Params()
	g.run = wfc.NewIncrementalRun(p.Config(g.cat, g.log))
	g.sim = nil
	g.phase = PhaseGenerating
	g.renderer.Fit(p.Width, p.Height)
	g.addMessage(fmt.Sprintf("level %d, seed %d: %dx%d", g.cfg.Level.Number, g.cfg.Level.Seed, p.Width, p.Height))
}

// finishLevel turns a completed run into a chase. A run that left holes is
// rebuilt with the retry policy.
func (g *Game) finishLevel() {
	res := g.run.BuildResult()
	if holes := res.Holes(); holes > 0 {
		g.addMessage(fmt.Sprintf("%d holes, retrying seeds", holes))
		res, _ = generate.Build(g.cfg.Level.Params(), g.cat, g.log)
	}
	s, err := sim.New(res, sim.Options{
		Seed:          g.cfg.Level.Seed,
		Brains:        g.cfg.Brains.Spawn,
		Agent:         g.cfg.Agent,
		Brain:         g.cfg.Brains.Params,
		LockGates:     g.cfg.Sim.LockGates,
		TrailSpacing:  g.cfg.Sim.TrailSpacing,
		TrailCapacity: g.cfg.Sim.TrailCapacity,
		Log:           g.log,
	})
	if errors.Is(err, sim.ErrNoRoom) {
		g.addMessage("level too small to spawn, reseeding")
		g.reseed()
		return
	}
	if err != nil {
		g.addMessage("error: " + err.Error())
		g.paused = true
		return
	}
	g.sim = s
	g.phase = PhaseChasing
	g.addMessage(fmt.Sprintf("chase started, %d gates locked", s.Gates.LockedCount()))
}

func (g *Game) reseed() {
	g.cfg.Level.Seed++
	g.loadLevel()
}

// advance moves the viewer forward one frame.
func (g *Game) advance() {
	switch g.phase {
	case PhaseGenerating:
		g.run.Advance(max(1, g.cfg.Sim.StepsPerFrame))
		if g.run.Done() {
			g.finishLevel()
		}
	case PhaseChasing:
		for _, c := range g.sim.Step(g.cfg.Sim.Tick) {
			if c.Portal {
				g.log.Debug("game: portal", "entity", c.ID, "from", c.Gate, "to", c.To)
			}
		}
	}
}

// Run is the main loop. It returns when the user quits or ctx ends.
func (g *Game) Run(ctx context.Context) error {
	defer g.screen.Fini()

	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(g.cfg.Sim.Tick)
	defer ticker.Stop()

	g.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				g.screen.Sync()
				g.refit()
			case *tcell.EventKey:
				if !g.handle(keyToAction(ev)) {
					return nil
				}
			}
		case <-ticker.C:
			if !g.paused {
				g.advance()
			}
		}
		g.draw()
	}
}

// handle applies one action and reports whether the viewer keeps running.
func (g *Game) handle(a Action) bool {
	switch a {
	case ActionQuit:
		return false
	case ActionPause:
		g.paused = !g.paused
	case ActionStep:
		g.paused = true
		g.advance()
	case ActionReseed:
		g.reseed()
	case ActionNextLevel:
		if g.cfg.Level.Number < generate.MaxLevel {
			g.cfg.Level.Number++
			g.loadLevel()
		}
	case ActionPrevLevel:
		if g.cfg.Level.Number > 1 {
			g.cfg.Level.Number--
			g.loadLevel()
		}
	case ActionToggleASCII:
		g.renderer.ToggleASCII()
	case ActionSteerN, ActionSteerS, ActionSteerE, ActionSteerW:
		if g.sim != nil {
			g.sim.Steer(actionToDir(a))
		}
	}
	return true
}

func (g *Game) refit() {
	p := g.cfg.Level.Params()
	g.renderer.Fit(p.Width, p.Height)
}

func (g *Game) draw() {
	g.renderer.Clear()
	status := ""
	switch g.phase {
	case PhaseGenerating:
		g.renderer.DrawEngine(g.run.Engine)
		done, total := g.run.Progress()
		status = fmt.Sprintf("generating  %d/%d collapsed  step %d", done, total, g.run.Steps())
		g.renderer.DrawHUD(g.withLast(status), nil, hint)
	case PhaseChasing:
		g.renderer.DrawMap(g.sim.Map)
		g.renderer.DrawEntities(g.sim.World, g.cfg.Agent.PanicMax)
		status = fmt.Sprintf("chasing  t=%v  ticks %d", g.sim.Now.Truncate(time.Millisecond), g.sim.Ticks)
		g.renderer.DrawHUD(g.withLast(status), g.sim.Agents, hint)
	}
	g.renderer.Show()
}

// withLast appends the latest message and the pause marker to status.
func (g *Game) withLast(status string) string {
	if g.paused {
		status = "[paused] " + status
	}
	if n := len(g.messages); n > 0 {
		status += "  | " + g.messages[n-1]
	}
	return status
}

func (g *Game) addMessage(msg string) {
	g.messages = append(g.messages, msg)
	if len(g.messages) > maxMessages {
		g.messages = g.messages[len(g.messages)-maxMessages:]
	}
	g.log.Info("game: " + msg)
}
