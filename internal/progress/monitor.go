// Package progress provides the fractional progress monitor threaded
// through reference searches. A Monitor holds a monotonically non-decreasing
// fraction in [0, 1] and can spawn bounded child scopes that map their own
// 0..1 range onto a slice of the parent.
package progress

import "sync"

// Monitor is a mutable fractional progress value. Safe for concurrent use;
// updates that would move the fraction backwards are ignored.
type Monitor struct {
	mu       sync.Mutex
	fraction float64
	dialog   bool

	parent *Monitor
	base   float64 // parent fraction where this scope starts
	span   float64 // share of the parent this scope covers
}

// NewMonitor returns a top-level monitor at fraction 0.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// SetFraction advances the monitor to f, clamped to [0, 1]. Decreases are
// dropped so observers always see monotonic progress. Child scopes forward
// the update, rescaled, to their parent.
func (m *Monitor) SetFraction(f float64) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}

	m.mu.Lock()
	advanced := f > m.fraction
	if advanced {
		m.fraction = f
	}
	parent, scaled := m.parent, m.base+f*m.span
	m.mu.Unlock()

	if advanced && parent != nil {
		parent.SetFraction(scaled)
	}
}

// Fraction returns the current fraction.
func (m *Monitor) Fraction() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fraction
}

// Child creates a bounded sub-scope covering the next span of this
// monitor's range, starting at the current fraction. The child's own
// fraction runs 0..1; completing the child advances the parent by span.
func (m *Monitor) Child(span float64) *Monitor {
	if span < 0 {
		span = 0
	}
	m.mu.Lock()
	base := m.fraction
	m.mu.Unlock()
	return &Monitor{parent: m, base: base, span: span}
}

// SetDialogShown records whether a UI dialog for this operation is visible.
func (m *Monitor) SetDialogShown(shown bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog = shown
}

// DialogShown reports whether a UI dialog for this operation is visible.
func (m *Monitor) DialogShown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dialog
}
