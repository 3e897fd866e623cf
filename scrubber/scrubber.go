// Package scrubber maps the preview window (a normalized position and width
// over the whole axis) to the range of columns shown in the main chart.
package scrubber

import (
	"math"

	"github.com/pkg/errors"

	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
	"git.sr.ht/~whereswaldon/tickchart/drag"
)

// ErrInvalidEnvironment reports a window that rounds to a single column. It
// can only come from a broken dataset or configuration.
var ErrInvalidEnvironment = errors.New("invalid environment")

// roundingSlack keeps a window exactly one column wide from rounding both
// edges onto the same column.
const roundingSlack = 1e-9

// Geometry of the control in CSS pixels.
type Geometry struct {
	Width float64
	// Edge is the width of each resize handle.
	Edge float64
}

type Controller struct {
	n       int
	columns config.Columns
	geo     Geometry

	pos, width         float64
	minWidth, maxWidth float64
	sized              bool

	bounds dataset.Range
	placed bool
	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(dataset.Range)
}

// New creates a controller for an axis of n samples. Resize must be called
// before the controller is used.
func New(n int, columns config.Columns) *Controller {
	return &Controller{n: n, columns: columns}
}

// Subscribe registers fn for range changes.
func (c *Controller) Subscribe(fn func(dataset.Range)) (unsubscribe func()) {
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Resize derives the width limits from the control width. The configured
// column limits are scaled by width/adaptive, and never drop below one
// column. The first call places the window from the configured start/end
// columns, later calls keep it where it is.
func (c *Controller) Resize(g Geometry, silent bool) error {
	if c.n < 2 {
		return errors.Wrapf(ErrInvalidEnvironment, "%d samples", c.n)
	}
	c.geo = g
	column := 1 / float64(c.n-1)
	k := 1.0
	if c.columns.Adaptive > 0 && g.Width > 0 {
		k = g.Width / c.columns.Adaptive
	}
	scaled := func(cols int) float64 {
		return math.Min(1, math.Max(1, math.Floor(float64(cols-1)*k))*column)
	}
	c.minWidth = scaled(c.columns.Min)
	c.maxWidth = 1
	if c.columns.Max > 0 && c.columns.Max >= c.columns.Min {
		c.maxWidth = scaled(c.columns.Max)
	}
	if c.sized {
		c.width = clamp(c.width, c.minWidth, c.maxWidth)
		c.pos = clamp(c.pos, 0, 1-c.width)
	} else {
		c.width = c.minWidth
		if c.columns.End > c.columns.Start {
			c.width = math.Min(c.maxWidth, math.Max(c.minWidth, float64(c.columns.End-c.columns.Start)*column))
		}
		c.pos = math.Max(0, 1-c.width-float64(c.columns.Start)*column)
		c.sized = true
	}
	return c.update(silent)
}

func (c *Controller) Pos() float64      { return c.pos }
func (c *Controller) Width() float64    { return c.width }
func (c *Controller) MinWidth() float64 { return c.minWidth }
func (c *Controller) MaxWidth() float64 { return c.maxWidth }

// Bounds returns the columns currently selected.
func (c *Controller) Bounds() dataset.Range {
	return c.bounds
}

// Geometry returns the geometry passed to the last Resize.
func (c *Controller) Geometry() Geometry {
	return c.geo
}

// Handle dispatches a drag on the named affordance.
func (c *Controller) Handle(a Affordance, ev drag.Event) error {
	if ev.Kind == drag.End {
		return nil
	}
	switch a {
	case Body:
		return c.DragBody(ev)
	case Window:
		return c.DragWindow(ev)
	case LeftEdge:
		return c.DragLeft(ev)
	case RightEdge:
		return c.DragRight(ev)
	}
	return nil
}

// DragBody centers the window under the pointer.
func (c *Controller) DragBody(ev drag.Event) error {
	c.pos = clamp(ev.X/c.geo.Width-c.width/2, 0, 1-c.width)
	return c.update(false)
}

// DragWindow pans the window, keeping its width.
func (c *Controller) DragWindow(ev drag.Event) error {
	c.pos = clamp((ev.X-ev.OffsetX)/c.geo.Width, 0, 1-c.width)
	return c.update(false)
}

// DragLeft moves the left edge while the right edge stays put.
func (c *Controller) DragLeft(ev drag.Event) error {
	right := c.pos + c.width
	pos := (ev.X - ev.OffsetX) / c.geo.Width
	lo := math.Max(0, right-c.maxWidth)
	hi := right - c.minWidth
	switch {
	case pos >= hi:
		c.pos, c.width = hi, c.minWidth
	case pos <= lo:
		c.pos, c.width = lo, right-lo
	default:
		c.pos, c.width = pos, right-pos
	}
	return c.update(false)
}

// DragRight moves the right edge while the left edge stays put.
func (c *Controller) DragRight(ev drag.Event) error {
	toRight := c.geo.Edge - ev.OffsetX
	width := (ev.X+toRight)/c.geo.Width - c.pos
	c.width = math.Max(c.minWidth, math.Min(math.Min(1-c.pos, c.maxWidth), width))
	return c.update(false)
}

func (c *Controller) update(silent bool) error {
	span := float64(c.n - 1)
	b := dataset.Range{
		First: int(math.Round(span * c.pos)),
		Last:  int(math.Round(span*(c.pos+c.width) + roundingSlack)),
	}
	if b.First == b.Last {
		return errors.Wrapf(ErrInvalidEnvironment, "window at %v+%v selects the single column %d", c.pos, c.width, b.First)
	}
	if c.placed && b == c.bounds {
		return nil
	}
	c.bounds, c.placed = b, true
	if silent {
		return nil
	}
	for _, s := range c.subs {
		s.fn(b)
	}
	return nil
}

// Affordance names the part of the control a drag started on.
type Affordance uint8

const (
	Body Affordance = iota
	Window
	LeftEdge
	RightEdge
)

// HitTest finds the affordance under x along with the press offset inside
// it.
func (c *Controller) HitTest(x float64) (Affordance, float64) {
	left := c.pos * c.geo.Width
	right := (c.pos + c.width) * c.geo.Width
	switch {
	case x >= left && x < left+c.geo.Edge:
		return LeftEdge, x - left
	case x > right-c.geo.Edge && x <= right:
		return RightEdge, x - (right - c.geo.Edge)
	case x >= left && x <= right:
		return Window, x - left
	default:
		return Body, 0
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
