package tooltip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

type change struct {
	next, prev int
}

func makeResolver() (*Resolver, *[]change) {
	var changes []change
	r := New(func(next, prev int) {
		changes = append(changes, change{next: next, prev: prev})
	})
	// 10 columns over 100 pixels: one column every 10 pixels.
	r.SetGeometry(120, 100, Margins{Top: 10, Bottom: 20, Left: 10, Right: 10})
	r.SetRange(dataset.Range{First: 0, Last: 10})
	return r, &changes
}

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	r, _ := makeResolver()
	type testcase struct {
		name     string
		x, y     float64
		expected int
	}
	for _, tc := range []testcase{
		{name: "left edge", x: 10, y: 50, expected: 0},
		{name: "rounds down", x: 24, y: 50, expected: 1},
		{name: "rounds up", x: 26, y: 50, expected: 2},
		{name: "clamped left", x: -40, y: 50, expected: 0},
		{name: "clamped right", x: 500, y: 50, expected: 10},
		{name: "above", x: 50, y: 9, expected: None},
		{name: "top edge", x: 50, y: 10, expected: 4},
		{name: "below", x: 50, y: 80, expected: None},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Resolve(tc.x, tc.y))
		})
	}
}

func TestResolveOffsetRange(t *testing.T) {
	r, _ := makeResolver()
	r.SetRange(dataset.Range{First: 40, Last: 45})
	assert.Equal(t, 40, r.Resolve(10, 50))
	assert.Equal(t, 45, r.Resolve(110, 50))
}

func TestLeavingBandUnhovers(t *testing.T) {
	r, changes := makeResolver()
	r.MouseEnter(now, 60, 50)
	assert.Equal(t, 5, r.Current())
	*changes = nil

	r.MouseMove(now, 60, 95)
	r.MouseMove(now, 60, 99)
	assert.Equal(t, []change{{next: None, prev: 5}}, *changes)
}

func TestOnlyChangesNotify(t *testing.T) {
	r, changes := makeResolver()
	r.MouseEnter(now, 60, 50)
	r.MouseMove(now, 61, 50)
	r.MouseMove(now, 63, 60)
	r.MouseMove(now, 70, 60)
	assert.Equal(t, []change{{next: 5, prev: None}, {next: 6, prev: 5}}, *changes)
}

func TestTouchSuppressesMouseEnter(t *testing.T) {
	r, changes := makeResolver()
	r.TouchStart(now, 30, 50)
	r.TouchMove(now.Add(10*time.Millisecond), 40, 50)
	r.TouchEnd(now.Add(20 * time.Millisecond))
	assert.Equal(t, []change{{next: 2, prev: None}, {next: 3, prev: 2}, {next: None, prev: 3}}, *changes)

	r.MouseEnter(now.Add(300*time.Millisecond), 60, 50)
	assert.Equal(t, None, r.Current())

	r.MouseEnter(now.Add(600*time.Millisecond), 60, 50)
	assert.Equal(t, 5, r.Current())
}

func TestMouseLeave(t *testing.T) {
	r, changes := makeResolver()
	r.MouseEnter(now, 60, 50)
	r.MouseLeave()
	r.MouseLeave()
	assert.Equal(t, []change{{next: 5, prev: None}, {next: None, prev: 5}}, *changes)
}
