package site

import (
	"context"
	"fmt"
	"io"
	"strings"

	"portfolio/internal/reveal"
)

// Preview scrolls through the page in a terminal-sized viewport and prints
// each section the first time it comes into view.
type Preview struct {
	// Height of the viewport in rows.
	Height int
	// Step is how many rows each scroll tick moves.
	Step int
	// Limit is a page row: scrolling stops at the first tick whose viewport
	// reaches it, so the last screen may show rows past Limit. Zero scrolls
	// to the end of the page.
	Limit int
	// Observer overrides the viewport; nil means use the built-in one. Set
	// NoObserver to exercise the fail-open path.
	Observer   reveal.Observer
	NoObserver bool
}

// Report lists which sections were revealed, in order, and which never were.
type Report struct {
	Revealed []string `json:"revealed"`
	Hidden   []string `json:"hidden"`
}

// Layout assigns each section a region stacked top to bottom with one blank
// row between sections.
func Layout(sections []Section) []reveal.Region {
	regions := make([]reveal.Region, len(sections))
	top := 0
	for i, s := range sections {
		h := len(s.Lines) + 1
		regions[i] = reveal.Region{ID: s.ID, Top: top, Height: h}
		top += h + 1
	}
	return regions
}

// Run prints sections to w as they are revealed and reports the result.
func (p Preview) Run(ctx context.Context, w io.Writer, sections []Section) (Report, error) {
	height, step := p.Height, p.Step
	if height <= 0 {
		height = 24
	}
	if step <= 0 {
		step = height / 2
	}
	regions := Layout(sections)
	pageEnd := 0
	if n := len(regions); n > 0 {
		pageEnd = regions[n-1].Bottom()
	}
	limit := pageEnd
	if p.Limit > 0 && p.Limit < limit {
		limit = p.Limit
	}

	var vp *reveal.Viewport
	var tracker reveal.Tracker
	switch {
	case p.NoObserver:
		tracker = reveal.New(nil)
	case p.Observer != nil:
		tracker = reveal.New(p.Observer)
	default:
		vp = reveal.NewViewport(height)
		tracker = reveal.New(vp)
	}

	handles := make([]*reveal.Handle, len(regions))
	for i, r := range regions {
		handles[i] = tracker.Attach(r)
	}
	defer func() {
		for _, h := range handles {
			h.Close()
		}
	}()

	var rep Report
	shown := make([]bool, len(sections))
	flush := func(offset int) error {
		for i, h := range handles {
			if shown[i] || !h.EverVisible() {
				continue
			}
			shown[i] = true
			rep.Revealed = append(rep.Revealed, sections[i].ID)
			if err := writeSection(w, sections[i], offset); err != nil {
				return err
			}
		}
		return nil
	}

	for offset := 0; ; offset += step {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if vp != nil {
			vp.ScrollTo(offset)
		}
		if err := flush(offset); err != nil {
			return rep, err
		}
		if offset+height >= limit {
			break
		}
	}
	for i, s := range sections {
		if !shown[i] {
			rep.Hidden = append(rep.Hidden, s.ID)
		}
	}
	return rep, nil
}

func writeSection(w io.Writer, s Section, offset int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s  (revealed at row %d)\n", s.Title, offset)
	for _, l := range s.Lines {
		if l == "" {
			continue
		}
		b.WriteString("   ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
