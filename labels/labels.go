// Package labels decides which date labels the horizontal axis shows.
//
// Labels sit at logical indices (0 = most recent sample). They are grouped into
// power-of-two buckets: the bucket of stride i holds the labels at odd
// multiples of i, counted from the first label offset. Showing every bucket
// whose stride is at least S therefore shows exactly one label every S
// samples, and doubling S only ever hides labels.
package labels

import (
	"math"
	"strconv"
	"time"

	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

const (
	// MaxStride caps the search for a collision-free stride.
	MaxStride = 1024
	// spacing is the minimum distance between labels, in label widths.
	spacing = 1.75
)

// Measure returns the rendered width of a string in device pixels.
type Measure func(text string) float64

// Span is an inclusive range of logical indices eligible for labels.
type Span struct {
	First, Last int
}

type Bucket struct {
	Stride  int
	Indices []int
}

type Presets struct {
	// Buckets are ordered by ascending stride.
	Buckets []Bucket
	// First holds the label at the first label offset when the span reaches
	// it. It is not part of any stride bucket.
	First []int
}

// Bucket returns the indices of the bucket with the given stride.
func (p Presets) Bucket(stride int) ([]int, bool) {
	for _, b := range p.Buckets {
		if b.Stride == stride {
			return b.Indices, true
		}
	}
	return nil, false
}

// At returns every index shown when buckets below stride are hidden.
func (p Presets) At(stride int) []int {
	var out []int
	for _, b := range p.Buckets {
		if b.Stride >= stride {
			out = append(out, b.Indices...)
		}
	}
	return out
}

// Keys names the buckets, the sentinel last.
func (p Presets) Keys() []string {
	keys := make([]string, 0, len(p.Buckets)+1)
	for _, b := range p.Buckets {
		keys = append(keys, strconv.Itoa(b.Stride))
	}
	if p.First != nil {
		keys = append(keys, "first")
	}
	return keys
}

// Last is the label with the largest logical index.
type Last struct {
	// Stride is 0 when the label comes from the First sentinel.
	Stride int
	Value  int
}

// Last finds the oldest label across all buckets. Ties go to the bucket seen
// first.
func (p Presets) Last() (Last, bool) {
	found, best := false, Last{Value: -1}
	consider := func(stride int, indices []int) {
		if len(indices) == 0 {
			return
		}
		if v := indices[len(indices)-1]; v > best.Value {
			best, found = Last{Stride: stride, Value: v}, true
		}
	}
	for _, b := range p.Buckets {
		consider(b.Stride, b.Indices)
	}
	consider(0, p.First)
	return best, found
}

type Calculator struct {
	axis       []int64
	loc        *time.Location
	days       []string
	months     []string
	minColumns int
	labelWidth float64
	plotWidth  float64
}

// New prepares a calculator for the axis (unix milliseconds, oldest first).
// The widest label is measured once, as the longest month name followed by a
// two-digit day.
func New(axis []int64, l config.Localization, minColumns int, loc *time.Location, measure Measure) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	longest := ""
	for _, m := range l.Months {
		if len(m) > len(longest) {
			longest = m
		}
	}
	return &Calculator{
		axis:       axis,
		loc:        loc,
		days:       l.Days,
		months:     l.Months,
		minColumns: minColumns,
		labelWidth: measure(longest + " 00"),
	}
}

// SetPlotWidth records the width between the horizontal margins in device
// pixels.
func (c *Calculator) SetPlotWidth(w float64) {
	c.plotWidth = w
}

func (c *Calculator) LabelWidth() float64 {
	return c.labelWidth
}

// FirstLabelOffset keeps the newest label half a label clear of the right
// edge at the tightest zoom.
func (c *Calculator) FirstLabelOffset() int {
	step := c.plotWidth / float64(c.minColumns)
	if step <= 0 {
		return 1
	}
	return max(1, int(math.Round(c.labelWidth/2/step)))
}

// MinStride returns the smallest stride whose labels do not collide at the
// zoom given by r. It reports false when even MaxStride is too dense.
func (c *Calculator) MinStride(r dataset.Range) (int, bool) {
	if r.Len() <= 0 {
		return 0, false
	}
	step := c.plotWidth / float64(r.Len())
	for stride := 1; stride <= MaxStride; stride *= 2 {
		if step*float64(stride) > c.labelWidth*spacing {
			return stride, true
		}
	}
	return 0, false
}

// VisibleSpan widens the columns of r into the logical span whose labels may
// be on screen, aligned to the minimum stride.
func (c *Calculator) VisibleSpan(r dataset.Range) Span {
	stride, ok := c.MinStride(r)
	if !ok {
		stride = MaxStride
	}
	n := len(c.axis)
	offset := c.FirstLabelOffset()
	limit := n - 1
	newest := n - 1 - r.Last
	oldest := n - 1 - r.First

	first := ceilDiv(max(0, newest-offset), stride)*stride - stride + offset
	last := floorDiv(max(0, oldest-offset), stride)*stride + stride + offset
	if first < 0 {
		first -= floorDiv(first, stride) * stride
	}
	if last > limit {
		half := max(1, stride/2)
		last -= ceilDiv(last-limit, half) * half
	}
	return Span{First: first, Last: last}
}

// Presets fills the stride buckets for a span.
func (c *Calculator) Presets(s Span) Presets {
	offset := c.FirstLabelOffset()
	first := s.First - offset
	last := s.Last - offset

	var p Presets
	for i := 1; ; i *= 2 {
		b := Bucket{Stride: i}
		start := ceilDiv(max(1, first)-i, 2*i)*2*i + i
		for j := start; j <= last; j += 2 * i {
			b.Indices = append(b.Indices, j+offset)
		}
		p.Buckets = append(p.Buckets, b)
		if i*2 > last {
			if first == 0 {
				p.First = []int{offset}
			}
			break
		}
	}
	return p
}

// Visible is Presets for the span visible at r.
func (c *Calculator) Visible(r dataset.Range) Presets {
	return c.Presets(c.VisibleSpan(r))
}

func (c *Calculator) date(logical int) time.Time {
	return time.UnixMilli(c.axis[len(c.axis)-1-logical]).In(c.loc)
}

// Label formats the sample at a logical index as "Mon D".
func (c *Calculator) Label(logical int) string {
	d := c.date(logical)
	return c.months[d.Month()-1] + " " + strconv.Itoa(d.Day())
}

func (c *Calculator) DayOfWeek(logical int) string {
	return c.days[c.date(logical).Weekday()]
}

func floorDiv(a, b int) int {
	return int(math.Floor(float64(a) / float64(b)))
}

func ceilDiv(a, b int) int {
	return int(math.Ceil(float64(a) / float64(b)))
}
