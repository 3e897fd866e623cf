package chart

import (
	"image/color"
	"math"
	"time"
)

type Align uint8

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

type Baseline uint8

const (
	BaselineAlphabetic Baseline = iota
	BaselineTop
)

// TextStyle sizes are in device pixels.
type TextStyle struct {
	Family   string
	Size     float64
	Weight   int
	Color    color.NRGBA
	Align    Align
	Baseline Baseline
}

type Point struct {
	X, Y float64
}

// Surface is a 2D canvas measured in device pixels.
type Surface interface {
	Size() (width, height float64)
	// DPR is the number of device pixels per CSS pixel.
	DPR() float64
	Clear()
	FillRect(x, y, w, h float64, c color.NRGBA)
	DrawLine(points []Point, c color.NRGBA, width float64)
	DrawText(text string, x, y float64, style TextStyle)
	MeasureText(text string, style TextStyle) float64
	// DrawArc strokes a full circle.
	DrawArc(x, y, r float64, c color.NRGBA, width float64)
}

// Scheduler runs a callback once before the next frame is painted.
type Scheduler interface {
	RequestTick(func(now time.Time))
}

// ManualScheduler queues tick requests until Run is called. Hosts with their
// own frame loop run it once per frame.
type ManualScheduler struct {
	pending []func(time.Time)
}

var _ Scheduler = (*ManualScheduler)(nil)

func (m *ManualScheduler) RequestTick(fn func(time.Time)) {
	m.pending = append(m.pending, fn)
}

func (m *ManualScheduler) Pending() bool {
	return len(m.pending) > 0
}

// Run invokes the callbacks queued so far. Callbacks they queue wait for the
// next Run.
func (m *ManualScheduler) Run(now time.Time) int {
	queued := m.pending
	m.pending = nil
	for _, fn := range queued {
		fn(now)
	}
	return len(queued)
}

// Settle runs frames every step until nothing is pending or limit frames
// have run. It returns the time of the last frame.
func (m *ManualScheduler) Settle(now time.Time, step time.Duration, limit int) time.Time {
	for i := 0; i < limit && m.Pending(); i++ {
		m.Run(now)
		now = now.Add(step)
	}
	return now
}

func fade(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = math.Max(0, math.Min(1, opacity))
	c.A = uint8(math.Round(float64(c.A) * opacity))
	return c
}
