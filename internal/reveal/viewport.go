package reveal

import (
	"errors"
	"sync"
)

// Viewport is an in-process Observer over a vertically scrolling page. Every
// scroll recomputes intersections and pushes an entry to each watcher whose
// intersecting state changed. Registration delivers an initial entry.
type Viewport struct {
	mu       sync.Mutex
	height   int
	offset   int
	nextID   int
	watchers map[int]*watcher
}

type watcher struct {
	region       Region
	fn           func(Entry)
	intersecting bool
}

// NewViewport returns a viewport of the given height scrolled to the top.
func NewViewport(height int) *Viewport {
	return &Viewport{height: height, watchers: make(map[int]*watcher)}
}

// Observe implements Observer. A region with no height can never intersect;
// its subscription is inert and fn is never called.
func (v *Viewport) Observe(region Region, fn func(Entry)) (Subscription, error) {
	if fn == nil {
		return nil, errors.New("reveal: nil callback")
	}
	if region.Height <= 0 {
		return &viewportSub{v: v, id: -1}, nil
	}
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	w := &watcher{region: region, fn: fn}
	entry := v.entryLocked(region)
	w.intersecting = entry.Intersecting
	v.watchers[id] = w
	v.mu.Unlock()

	fn(entry)
	return &viewportSub{v: v, id: id}, nil
}

// ScrollTo moves the top of the viewport to offset and notifies watchers.
func (v *Viewport) ScrollTo(offset int) {
	if offset < 0 {
		offset = 0
	}
	v.mu.Lock()
	v.offset = offset
	pending := v.changedLocked()
	v.mu.Unlock()
	deliver(pending)
}

// Resize changes the viewport height and notifies watchers.
func (v *Viewport) Resize(height int) {
	if height < 0 {
		height = 0
	}
	v.mu.Lock()
	v.height = height
	pending := v.changedLocked()
	v.mu.Unlock()
	deliver(pending)
}

// Offset returns the current scroll offset.
func (v *Viewport) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// Watching returns the number of live observations.
func (v *Viewport) Watching() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.watchers)
}

type delivery struct {
	fn    func(Entry)
	entry Entry
}

func (v *Viewport) changedLocked() []delivery {
	var out []delivery
	for _, w := range v.watchers {
		e := v.entryLocked(w.region)
		if e.Intersecting == w.intersecting {
			continue
		}
		w.intersecting = e.Intersecting
		out = append(out, delivery{fn: w.fn, entry: e})
	}
	return out
}

// Callbacks run without the lock held so they may unobserve.
func deliver(pending []delivery) {
	for _, d := range pending {
		d.fn(d.entry)
	}
}

func (v *Viewport) entryLocked(r Region) Entry {
	top := max(r.Top, v.offset)
	bottom := min(r.Bottom(), v.offset+v.height)
	visible := bottom - top
	if visible <= 0 || r.Height <= 0 {
		return Entry{Region: r}
	}
	return Entry{
		Region:       r,
		Intersecting: true,
		Ratio:        float64(visible) / float64(r.Height),
	}
}

type viewportSub struct {
	v    *Viewport
	id   int
	once sync.Once
}

func (s *viewportSub) Unobserve() {
	s.once.Do(func() {
		s.v.mu.Lock()
		delete(s.v.watchers, s.id)
		s.v.mu.Unlock()
	})
}
