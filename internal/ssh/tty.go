// Package ssh runs the viewer over SSH: each session gets its own tcell
// screen driven by the session's channel.
package ssh

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// ErrNoPTY is returned for sessions that did not request a terminal.
var ErrNoPTY = errors.New("ssh: session has no PTY")

// defaultTerm is used when the client's TERM is missing or not allowed.
const defaultTerm = "xterm-256color"

// allowedTerms are the TERM values handed to terminfo. Anything else falls
// back to defaultTerm.
var allowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"rxvt-unicode":          true,
	"rxvt-unicode-256color": true,
}

// Tty implements tcell.Tty on top of an SSH session.
type Tty struct {
	session gossh.Session
	winCh   <-chan gossh.Window

	mu     sync.Mutex
	window gossh.Window
	onSize func()
	watch  sync.Once
}

// NewTty wraps s. It fails with ErrNoPTY when the client did not ask for a
// terminal.
func NewTty(s gossh.Session) (*Tty, error) {
	pty, winCh, ok := s.Pty()
	if !ok {
		return nil, ErrNoPTY
	}
	return &Tty{session: s, winCh: winCh, window: pty.Window}, nil
}

func (t *Tty) Read(b []byte) (int, error)  { return t.session.Read(b) }
func (t *Tty) Write(b []byte) (int, error) { return t.session.Write(b) }
func (t *Tty) Close() error                { return t.session.Close() }

// The channel is opened and flushed by the SSH server.
func (t *Tty) Start() error { return nil }
func (t *Tty) Stop() error  { return nil }
func (t *Tty) Drain() error { return nil }

// WindowSize returns the latest size the client reported.
func (t *Tty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

// NotifyResize registers cb for window changes. The first call starts the
// goroutine that follows the session's window channel until it closes.
func (t *Tty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onSize = cb
	t.mu.Unlock()
	t.watch.Do(func() { go t.follow() })
}

func (t *Tty) follow() {
	for win := range t.winCh {
		t.mu.Lock()
		t.window = win
		cb := t.onSize
		t.mu.Unlock()
		if cb != nil {
			cb()
		}
	}
}

// Term picks the terminal type from a session environment.
func Term(environ []string) string {
	for _, env := range environ {
		if v, ok := strings.CutPrefix(env, "TERM="); ok && allowedTerms[v] {
			return v
		}
	}
	return defaultTerm
}

// termMu serializes TERM in the process environment, which terminfo reads
// while a screen is created.
var termMu sync.Mutex

// NewScreen creates and initializes a tcell screen for s.
func NewScreen(s gossh.Session) (tcell.Screen, error) {
	tty, err := NewTty(s)
	if err != nil {
		return nil, err
	}
	termMu.Lock()
	_ = os.Setenv("TERM", Term(s.Environ()))
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	termMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("terminal setup: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("screen init: %w", err)
	}
	return screen, nil
}
