package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wavechase/internal/tile"
	"wavechase/internal/wfc"
)

func TestRunASCII(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"-level", "1", "-seed", "12345"}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 21 {
		t.Fatalf("got %d rows, want 21", len(lines))
	}
	for i, l := range lines {
		if n := len([]rune(l)); n != 21 {
			t.Errorf("row %d has %d cells, want 21", i, n)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	var a, b, errOut bytes.Buffer
	run([]string{"-seed", "77"}, &a, &errOut)
	run([]string{"-seed", "77"}, &b, &errOut)
	if a.String() != b.String() {
		t.Fatal("same seed printed different levels")
	}
}

func TestRunJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"-format", "json", "-seed", "5"}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	var got jsonResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Width*got.Height != len(got.Cells) {
		t.Errorf("%dx%d grid with %d cells", got.Width, got.Height, len(got.Cells))
	}
	if got.Cells[0].Class != "border" {
		t.Errorf("corner class = %q, want border", got.Cells[0].Class)
	}
}

func TestRunSim(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"-seed", "9", "-sim", "200"}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	s := out.String()
	if !strings.Contains(s, "simulated 200 ticks") {
		t.Errorf("missing sim summary:\n%s", s)
	}
	for _, b := range []string{"pursuit", "wander", "ambush", "flee"} {
		if !strings.Contains(s, b) {
			t.Errorf("report missing %s", b)
		}
	}
}

func TestRunSchema(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"-schema"}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if got["title"] != "wavechase configuration" {
		t.Errorf("title = %v", got["title"])
	}
}

func TestRunBadInput(t *testing.T) {
	cases := []struct {
		name string
		args []string
		code int
	}{
		{"unknown flag", []string{"-bogus"}, 2},
		{"unknown format", []string{"-format", "svg"}, 2},
		{"missing config", []string{"-config", filepath.Join(os.TempDir(), "does-not-exist.yaml")}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			if got := run(tc.args, &out, &errOut); got != tc.code {
				t.Errorf("exit %d, want %d", got, tc.code)
			}
		})
	}
}

func TestRender(t *testing.T) {
	floor := &tile.Kind{Name: "floor", Class: tile.ClassFloor, ASCII: '.', Glyph: "⬛"}
	res := wfc.Result{Width: 2, Height: 1, Cells: []wfc.CellResult{
		{X: 0, Y: 0, Tile: floor},
		{X: 1, Y: 0},
	}}
	if got := render(res, false); got != ". \n" {
		t.Errorf("ascii = %q", got)
	}
	if got := render(res, true); got != "⬛  \n" {
		t.Errorf("emoji = %q", got)
	}
}
