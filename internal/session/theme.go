package session

import "sync/atomic"

// Theme receives the global theme switch whenever the profile preference
// changes.
type Theme interface {
	SetDark(dark bool)
}

// Indicator is the process-wide theme flag the presentation layer reads.
type Indicator struct {
	dark atomic.Bool
}

func (i *Indicator) SetDark(dark bool) { i.dark.Store(dark) }

// Dark reports the current theme.
func (i *Indicator) Dark() bool { return i.dark.Load() }

// Name returns "dark" or "light".
func (i *Indicator) Name() string {
	if i.Dark() {
		return "dark"
	}
	return "light"
}
