package gateway

import (
	"errors"
	"sync"
)

// ErrSubmissionInFlight rejects a duplicate submit while the first one is
// still outstanding.
var ErrSubmissionInFlight = errors.New("invio già in corso, attendere")

// FormGuard gives each form an at-most-one-in-flight submission. The
// guard is released on completion regardless of outcome, so a timed-out
// request cannot wedge the form.
type FormGuard struct {
	mu       sync.Mutex
	inflight map[string]bool
}

func NewFormGuard() *FormGuard {
	return &FormGuard{inflight: map[string]bool{}}
}

func (g *FormGuard) begin(form string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight[form] {
		return false
	}
	g.inflight[form] = true
	return true
}

func (g *FormGuard) end(form string) {
	g.mu.Lock()
	delete(g.inflight, form)
	g.mu.Unlock()
}

// Busy reports whether a form has an outstanding submission; the UI uses
// it to disable the triggering control.
func (g *FormGuard) Busy(form string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inflight[form]
}
