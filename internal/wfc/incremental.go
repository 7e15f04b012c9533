package wfc

// IncrementalRun drives an Engine a few steps at a time so a caller can
// render progress between steps. Running it to completion yields exactly
// the Result Generate returns for the same Config.
type IncrementalRun struct {
	*Engine
}

// NewIncrementalRun initializes an engine for cfg.
func NewIncrementalRun(cfg Config) *IncrementalRun {
	e := New(cfg)
	e.Initialize()
	return &IncrementalRun{Engine: e}
}

// Advance performs up to n steps and returns how many ran.
func (r *IncrementalRun) Advance(n int) int {
	ran := 0
	for ran < n && r.Step() {
		ran++
	}
	return ran
}

// Progress returns the number of collapsed cells and the cell total.
func (r *IncrementalRun) Progress() (collapsed, total int) {
	for i := range r.cells {
		if r.cells[i].collapsed {
			collapsed++
		}
	}
	return collapsed, len(r.cells)
}
