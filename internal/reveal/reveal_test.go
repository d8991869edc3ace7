package reveal_test

import (
	"errors"
	"sync"
	"testing"

	"portfolio/internal/reveal"
)

// fakeObserver records subscriptions and lets tests push entries by hand.
type fakeObserver struct {
	mu   sync.Mutex
	fns  map[string]func(reveal.Entry)
	subs map[string]*fakeSub
	err  error
}

type fakeSub struct {
	mu       sync.Mutex
	released int
}

func (s *fakeSub) Unobserve() {
	s.mu.Lock()
	s.released++
	s.mu.Unlock()
}

func (s *fakeSub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{fns: map[string]func(reveal.Entry){}, subs: map[string]*fakeSub{}}
}

func (o *fakeObserver) Observe(region reveal.Region, fn func(reveal.Entry)) (reveal.Subscription, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	sub := &fakeSub{}
	o.fns[region.ID] = fn
	o.subs[region.ID] = sub
	return sub, nil
}

func (o *fakeObserver) push(id string, e reveal.Entry) {
	o.mu.Lock()
	fn := o.fns[id]
	o.mu.Unlock()
	fn(e)
}

func TestFireOnce(t *testing.T) {
	obs := newFakeObserver()
	h := reveal.New(obs).Attach(reveal.Region{ID: "about", Top: 100, Height: 10})
	if h.EverVisible() {
		t.Fatalf("expected hidden before any intersection")
	}
	obs.push("about", reveal.Entry{Intersecting: false})
	if h.EverVisible() {
		t.Fatalf("non-intersecting entry must not reveal")
	}
	obs.push("about", reveal.Entry{Intersecting: true, Ratio: 0.1})
	if !h.EverVisible() {
		t.Fatalf("expected visible after intersection")
	}
	select {
	case <-h.Revealed():
	default:
		t.Fatalf("revealed channel not closed")
	}
	// Leaving and re-entering the viewport changes nothing.
	obs.push("about", reveal.Entry{Intersecting: false})
	obs.push("about", reveal.Entry{Intersecting: true, Ratio: 1})
	if !h.EverVisible() {
		t.Fatalf("visibility reverted")
	}
	if got := obs.subs["about"].count(); got != 1 {
		t.Fatalf("expected exactly one unobserve after first reveal, got %d", got)
	}
	h.Close()
	if got := obs.subs["about"].count(); got != 1 {
		t.Fatalf("close after reveal must not unobserve again, got %d", got)
	}
}

func TestZeroRatioDoesNotReveal(t *testing.T) {
	obs := newFakeObserver()
	h := reveal.New(obs).Attach(reveal.Region{ID: "edge", Height: 5})
	obs.push("edge", reveal.Entry{Intersecting: true, Ratio: 0})
	if h.EverVisible() {
		t.Fatalf("zero-area overlap must not reveal")
	}
}

func TestCloseBeforeRevealReleasesWatch(t *testing.T) {
	obs := newFakeObserver()
	h := reveal.New(obs).Attach(reveal.Region{ID: "footer", Top: 500, Height: 10})
	h.Close()
	h.Close()
	if got := obs.subs["footer"].count(); got != 1 {
		t.Fatalf("expected one release on teardown, got %d", got)
	}
	obs.push("footer", reveal.Entry{Intersecting: true, Ratio: 1})
	if h.EverVisible() {
		t.Fatalf("closed handle must ignore late entries")
	}
}

func TestFailOpen(t *testing.T) {
	h := reveal.New(nil).Attach(reveal.Region{ID: "hero", Height: 10})
	if !h.EverVisible() {
		t.Fatalf("nil observer must report visible")
	}

	obs := newFakeObserver()
	obs.err = errors.New("no intersection support")
	h = reveal.New(obs).Attach(reveal.Region{ID: "skills", Top: 900, Height: 10})
	if !h.EverVisible() {
		t.Fatalf("observe error must report visible")
	}
	h.Close()
}

func TestViewportRevealsOnScroll(t *testing.T) {
	vp := reveal.NewViewport(10)
	tr := reveal.New(vp)
	hero := tr.Attach(reveal.Region{ID: "hero", Top: 0, Height: 8})
	about := tr.Attach(reveal.Region{ID: "about", Top: 20, Height: 8})
	footer := tr.Attach(reveal.Region{ID: "footer", Top: 100, Height: 4})
	defer footer.Close()

	if !hero.EverVisible() {
		t.Fatalf("hero is on screen at attach time")
	}
	if about.EverVisible() {
		t.Fatalf("about is below the fold")
	}
	if got := vp.Watching(); got != 2 {
		t.Fatalf("expected 2 live watches after hero reveal, got %d", got)
	}

	vp.ScrollTo(11) // rows 11..20, touches row 20 of about
	if !about.EverVisible() {
		t.Fatalf("about should be revealed after scrolling into view")
	}
	vp.ScrollTo(0)
	if !about.EverVisible() {
		t.Fatalf("about must stay revealed after scrolling away")
	}
	if footer.EverVisible() {
		t.Fatalf("footer never scrolled to")
	}
	if got := vp.Watching(); got != 1 {
		t.Fatalf("expected only footer watched, got %d", got)
	}
	footer.Close()
	if got := vp.Watching(); got != 0 {
		t.Fatalf("expected no watches after teardown, got %d", got)
	}
}

func TestEmptyRegionNeverReveals(t *testing.T) {
	vp := reveal.NewViewport(10)
	calls := 0
	sub, err := vp.Observe(reveal.Region{ID: "x"}, func(reveal.Entry) { calls++ })
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	sub.Unobserve()
	sub.Unobserve()

	h := reveal.New(vp).Attach(reveal.Region{ID: "x", Top: 10000})
	defer h.Close()
	for _, offset := range []int{0, 5000, 10000, 20000} {
		vp.ScrollTo(offset)
	}
	if h.EverVisible() {
		t.Fatalf("zero-height region must stay hidden")
	}
	select {
	case <-h.Revealed():
		t.Fatalf("revealed channel closed for zero-height region")
	default:
	}
	if calls != 0 || vp.Watching() != 0 {
		t.Fatalf("expected no deliveries and no live watches, got calls=%d watching=%d", calls, vp.Watching())
	}
}

func TestConcurrentEntries(t *testing.T) {
	obs := newFakeObserver()
	h := reveal.New(obs).Attach(reveal.Region{ID: "projects", Height: 10})
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			obs.push("projects", reveal.Entry{Intersecting: true, Ratio: 0.5})
		}()
	}
	wg.Wait()
	if !h.EverVisible() {
		t.Fatalf("expected visible")
	}
	if got := obs.subs["projects"].count(); got != 1 {
		t.Fatalf("expected one unobserve under concurrent entries, got %d", got)
	}
}
