// Package reveal tracks whether rendered regions have ever entered the
// viewport so callers can gate one-time entrance effects.
package reveal

import (
	"log/slog"
	"sync"
)

// Region identifies a renderable area. Top and Height are in the same unit as
// the viewport that observes it (rows for the terminal preview).
type Region struct {
	ID     string
	Top    int
	Height int
}

// Bottom returns the first unit past the end of the region.
func (r Region) Bottom() int { return r.Top + r.Height }

// Entry is one intersection report for a watched region.
type Entry struct {
	Region       Region
	Intersecting bool
	// Ratio is the visible fraction of the region in [0,1].
	Ratio float64
}

// Observer is the visibility-observation mechanism. Observe registers fn for
// region and may deliver entries from any goroutine until the returned
// Subscription is released.
type Observer interface {
	Observe(region Region, fn func(Entry)) (Subscription, error)
}

// Subscription releases an observation. Unobserve must be idempotent.
type Subscription interface {
	Unobserve()
}

// Tracker attaches reveal handles to regions.
type Tracker struct {
	Observer Observer
	Logger   *slog.Logger
}

// New returns a tracker backed by obs. A nil observer is allowed: every region
// is then reported visible straight away.
func New(obs Observer) Tracker {
	return Tracker{Observer: obs}
}

func (t Tracker) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// Handle is the reveal state of one attached region.
type Handle struct {
	region Region

	mu       sync.Mutex
	visible  bool
	closed   bool
	sub      Subscription
	revealed chan struct{}
}

// Attach starts watching region. The watch is dropped after the first
// intersection or on Close, whichever comes first.
func (t Tracker) Attach(region Region) *Handle {
	h := &Handle{region: region, revealed: make(chan struct{})}
	if t.Observer == nil {
		h.markVisible()
		return h
	}
	sub, err := t.Observer.Observe(region, h.observe)
	if err != nil {
		t.logger().Warn("reveal: observe failed, showing region", "region", region.ID, "error", err)
		h.markVisible()
		return h
	}

	h.mu.Lock()
	if h.visible || h.closed {
		// Revealed or closed during Observe; nothing left to watch.
		h.mu.Unlock()
		sub.Unobserve()
		return h
	}
	h.sub = sub
	h.mu.Unlock()
	return h
}

func (h *Handle) observe(e Entry) {
	if !e.Intersecting || e.Ratio <= 0 {
		return
	}
	if sub := h.markVisible(); sub != nil {
		sub.Unobserve()
	}
}

// markVisible flips the flag once and hands back the subscription to release.
func (h *Handle) markVisible() Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.visible || h.closed {
		return nil
	}
	h.visible = true
	close(h.revealed)
	sub := h.sub
	h.sub = nil
	return sub
}

// Region returns the watched region.
func (h *Handle) Region() Region { return h.region }

// EverVisible reports whether the region has intersected the viewport at least
// once. It never goes back to false.
func (h *Handle) EverVisible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

// Revealed is closed when the region is first seen. It stays open forever for
// regions that are never scrolled to or are closed first.
func (h *Handle) Revealed() <-chan struct{} { return h.revealed }

// Close releases any pending observation. Safe to call more than once.
func (h *Handle) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sub := h.sub
	h.sub = nil
	h.mu.Unlock()
	if sub != nil {
		sub.Unobserve()
	}
}
