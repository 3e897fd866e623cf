// Package tooltip tracks which column the pointer hovers in the main chart.
package tooltip

import (
	"math"
	"time"

	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

// None means no column is hovered.
const None = -1

// TouchGrace is how long after a touch a mouse enter is ignored. Touch
// screens synthesize one right after the finger lifts.
const TouchGrace = 500 * time.Millisecond

// Margins frame the plot inside the canvas.
type Margins struct {
	Top, Bottom, Left, Right float64
}

type Resolver struct {
	width, height float64
	margins       Margins
	r             dataset.Range

	current   int
	mouse     bool
	touching  bool
	lastTouch time.Time
	onChange  func(next, prev int)
}

// New creates a resolver that calls onChange with the new and previous
// column whenever the hovered column changes.
func New(onChange func(next, prev int)) *Resolver {
	return &Resolver{current: None, onChange: onChange}
}

// SetGeometry sets the canvas size and plot margins, all in the units the
// pointer positions use.
func (t *Resolver) SetGeometry(width, height float64, m Margins) {
	t.width, t.height, t.margins = width, height, m
}

func (t *Resolver) SetRange(r dataset.Range) {
	t.r = r
}

// Current returns the hovered column or None.
func (t *Resolver) Current() int {
	return t.current
}

// Resolve projects a position onto the nearest visible column. Positions
// outside the plot's vertical band resolve to None.
func (t *Resolver) Resolve(x, y float64) int {
	if y < t.margins.Top || y >= t.height-t.margins.Bottom || t.r.Len() <= 0 {
		return None
	}
	step := (t.width - t.margins.Left - t.margins.Right) / float64(t.r.Len())
	if step <= 0 {
		return None
	}
	i := t.r.First + int(math.Round((x-t.margins.Left)/step))
	return max(t.r.First, min(t.r.Last, i))
}

func (t *Resolver) MouseEnter(now time.Time, x, y float64) {
	if t.touching || (!t.lastTouch.IsZero() && now.Sub(t.lastTouch) < TouchGrace) {
		return
	}
	t.mouse = true
	t.set(t.Resolve(x, y))
}

func (t *Resolver) MouseMove(now time.Time, x, y float64) {
	if !t.mouse {
		t.MouseEnter(now, x, y)
		return
	}
	t.set(t.Resolve(x, y))
}

func (t *Resolver) MouseLeave() {
	t.mouse = false
	t.set(None)
}

func (t *Resolver) TouchStart(now time.Time, x, y float64) {
	t.touching, t.mouse = true, false
	t.lastTouch = now
	t.set(t.Resolve(x, y))
}

func (t *Resolver) TouchMove(now time.Time, x, y float64) {
	if !t.touching {
		return
	}
	t.lastTouch = now
	t.set(t.Resolve(x, y))
}

func (t *Resolver) TouchEnd(now time.Time) {
	t.touching = false
	t.lastTouch = now
	t.set(None)
}

func (t *Resolver) set(i int) {
	if i == t.current {
		return
	}
	prev := t.current
	t.current = i
	if t.onChange != nil {
		t.onChange(i, prev)
	}
}
