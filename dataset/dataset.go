// Package dataset holds the loaded chart: a shared timestamp axis and the
// series plotted against it.
//
// Samples are stored in column order, oldest first. A logical index counts
// backwards from the most recent sample, so logical index 0 is column N-1.
package dataset

import (
	"image/color"
	"math"
	"slices"
)

// Graph is one plotted series.
type Graph struct {
	Key     string
	Name    string
	Color   color.NRGBA
	Values  []float64
	Visible bool
}

// Max returns the largest value in the inclusive column range.
func (g *Graph) Max(r Range) float64 {
	m := math.Inf(-1)
	for _, v := range g.Values[r.First : r.Last+1] {
		m = max(m, v)
	}
	return m
}

// Min returns the smallest value in the inclusive column range.
func (g *Graph) Min(r Range) float64 {
	m := math.Inf(1)
	for _, v := range g.Values[r.First : r.Last+1] {
		m = min(m, v)
	}
	return m
}

// At interpolates the value at a fractional column.
func (g *Graph) At(column float64) float64 {
	if column <= 0 {
		return g.Values[0]
	}
	last := len(g.Values) - 1
	if column >= float64(last) {
		return g.Values[last]
	}
	i := int(column)
	frac := column - float64(i)
	return g.Values[i] + (g.Values[i+1]-g.Values[i])*frac
}

// Chart is a full dataset ready for display.
type Chart struct {
	// Axis holds sample timestamps in unix milliseconds, oldest first.
	Axis   []int64
	Graphs []*Graph
}

func (c *Chart) Len() int {
	return len(c.Axis)
}

// Full is the range covering every sample.
func (c *Chart) Full() Range {
	return Range{First: 0, Last: c.Len() - 1}
}

// Logical converts a column into a distance from the most recent sample.
func (c *Chart) Logical(column int) int {
	return c.Len() - 1 - column
}

// Column converts a logical index back into a column.
func (c *Chart) Column(logical int) int {
	return c.Len() - 1 - logical
}

// Mask snapshots the visibility of every graph.
func (c *Chart) Mask() Mask {
	m := make(Mask, len(c.Graphs))
	for i, g := range c.Graphs {
		m[i] = g.Visible
	}
	return m
}

// Range is an inclusive pair of columns.
type Range struct {
	First, Last int
}

func (r Range) Len() int {
	return r.Last - r.First
}

// Mask records per-graph visibility in graph order.
type Mask []bool

func (m Mask) Equal(o Mask) bool {
	return slices.Equal(m, o)
}

// Any reports whether at least one graph is visible.
func (m Mask) Any() bool {
	return slices.Contains(m, true)
}

func (m Mask) String() string {
	b := make([]byte, len(m))
	for i, v := range m {
		b[i] = '0'
		if v {
			b[i] = '1'
		}
	}
	return string(b)
}
