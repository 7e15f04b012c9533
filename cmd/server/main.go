// server serves the chase viewer over SSH. Every connection gets its own
// level, seeded from the configured seed plus the session number. Build:
//
//	go build -o wavechase-server ./cmd/server
//
// Usage:
//
//	./wavechase-server [-port 2222] [-key server_host_key] [-config wavechase.yaml]
//
// Connect with:
//
//	ssh -t -p 2222 localhost
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"

	"wavechase/internal/config"
	"wavechase/internal/game"
	internalssh "wavechase/internal/ssh"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.Int("port", 2222, "SSH server port")
	keyFile := fs.String("key", "server_host_key", "PEM host key (generated if absent)")
	cfgPath := fs.String("config", "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	log, err := config.NewLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	signer, err := loadOrCreateHostKey(*keyFile, log)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	h := &handler{cfg: cfg, log: log}
	srv := &gossh.Server{
		Addr:        fmt.Sprintf(":%d", *port),
		Handler:     h.serve,
		PtyCallback: func(gossh.Context, gossh.Pty) bool { return true },
		HostSigners: []gossh.Signer{signer},
	}
	log.Info("server: listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
		log.Error("server: stopped", "err", err)
		return 1
	}
	return 0
}

// handler starts one viewer per SSH session.
type handler struct {
	cfg      config.Config
	log      *slog.Logger
	sessions atomic.Int64
}

// sessionConfig returns the config for the n-th session.
func (h *handler) sessionConfig(n int64) config.Config {
	cfg := h.cfg
	cfg.Level.Seed += n
	return cfg
}

// serve blocks for the lifetime of the connection.
func (h *handler) serve(s gossh.Session) {
	n := h.sessions.Add(1)
	log := h.log.With("session", n, "user", s.User(), "remote", s.RemoteAddr().String())

	screen, err := internalssh.NewScreen(s)
	if errors.Is(err, internalssh.ErrNoPTY) {
		fmt.Fprintln(s, "wavechase needs a terminal. Connect with: ssh -t -p <port> <host>")
		return
	}
	if err != nil {
		log.Warn("server: screen", "err", err)
		fmt.Fprintf(s, "terminal setup failed: %v\n", err)
		return
	}

	g, err := game.NewWithScreen(screen, h.sessionConfig(n), log)
	if err != nil {
		log.Error("server: game", "err", err)
		return
	}
	log.Info("server: session started")
	if err := g.Run(s.Context()); err != nil {
		log.Info("server: session ended", "reason", err)
		return
	}
	log.Info("server: session ended")
}

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key when the file is absent or unreadable.
func loadOrCreateHostKey(path string, log *slog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			log.Info("server: loaded host key", "path", path)
			return signer, nil
		}
	}

	log.Info("server: generating host key", "path", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	// Failing to persist only costs a new key next start.
	if block, err := xssh.MarshalPrivateKey(key, "wavechase server"); err == nil {
		if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
			log.Warn("server: save host key", "err", err)
		}
	}
	return signer, nil
}
