package fx

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

type redrawCounter struct {
	calls  int
	frames []Frame
}

func (r *redrawCounter) redraw(f Frame) {
	r.calls++
	r.frames = append(r.frames, f)
}

func TestCreateDuplicate(t *testing.T) {
	e := New(nil)
	_, err := e.Create("a", Scalar(1), nil)
	require.NoError(t, err)
	_, err = e.Create("a", Scalar(2), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSlot))
	s, ok := e.Slot("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, s.Value.X)
}

func TestTickInterpolates(t *testing.T) {
	var r redrawCounter
	e := New(r.redraw)
	e.Start("fade", nil, Scalar(0), Scalar(1), 100*time.Millisecond, Linear, false)

	frame := e.Tick(at(0))
	assert.Equal(t, 0.0, frame["fade"].Value.X)
	frame = e.Tick(at(50))
	assert.InDelta(t, .5, frame["fade"].Value.X, 1e-9)
	frame = e.Tick(at(100))
	assert.Equal(t, 1.0, frame["fade"].Value.X)
	assert.True(t, frame["fade"].Done)
	assert.Equal(t, 3, r.calls)

	s, ok := e.Slot("fade")
	require.True(t, ok)
	assert.False(t, s.Active())
	assert.False(t, e.HasActiveWork())
}

func TestTickRange(t *testing.T) {
	e := New(nil)
	e.Start("v-bounds", nil, Range(0, 100), Range(10, 300), 200*time.Millisecond, Linear, false)
	e.Tick(at(0))
	frame := e.Tick(at(100))
	v := frame["v-bounds"].Value
	assert.Equal(t, KindRange, v.Kind)
	assert.InDelta(t, 5, v.Min, 1e-9)
	assert.InDelta(t, 200, v.Max, 1e-9)
}

func TestAutoRemove(t *testing.T) {
	e := New(nil)
	e.Start("h-labels:4", 4, Scalar(1), Scalar(0), 100*time.Millisecond, nil, true)
	e.Tick(at(0))
	frame := e.Tick(at(150))
	assert.True(t, frame["h-labels:4"].Removed)
	assert.Equal(t, 4, frame["h-labels:4"].Data)
	_, ok := e.Slot("h-labels:4")
	assert.False(t, ok)
	assert.Empty(t, e.Group("h-labels"))
}

func TestInvertContinuity(t *testing.T) {
	for _, easing := range []string{"linear", "easeOutQuad", "easeInOutCubic"} {
		t.Run(easing, func(t *testing.T) {
			f, err := Easing(easing)
			require.NoError(t, err)
			e := New(nil)
			e.Start("x", nil, Scalar(0), Scalar(1), 100*time.Millisecond, f, false)
			e.Tick(at(0))
			e.Tick(at(30))
			s, _ := e.Slot("x")
			before := s.Value.X

			require.True(t, e.Invert("x", true))
			assert.Equal(t, before, s.Value.X)
			frame := e.Tick(at(30))
			assert.InDelta(t, before, frame["x"].Value.X, 1e-12)

			target, ok := s.Target()
			require.True(t, ok)
			assert.Equal(t, 0.0, target.X)

			frame = e.Tick(at(200))
			assert.True(t, frame["x"].Removed)
		})
	}
}

func TestInvertTwiceReachesTarget(t *testing.T) {
	cases := []struct {
		name    string
		between int
		want    []float64
	}{
		{name: "across frames", between: 75, want: []float64{0.5, 0.25, 0.25}},
		{name: "same frame", between: 50, want: []float64{0.5, 0.5, 0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(nil)
			e.Start("tooltip:fade", nil, Scalar(0), Scalar(1), 100*time.Millisecond, Linear, false)
			e.Tick(at(0))
			frame := e.Tick(at(50))
			require.InDelta(t, tc.want[0], frame["tooltip:fade"].Value.X, 1e-12)

			require.True(t, e.Invert("tooltip:fade", true))
			e.Tick(at(50))
			frame = e.Tick(at(tc.between))
			require.InDelta(t, tc.want[1], frame["tooltip:fade"].Value.X, 1e-12)

			require.True(t, e.Invert("tooltip:fade", false))
			s, _ := e.Slot("tooltip:fade")
			assert.InDelta(t, tc.want[2], s.Value.X, 1e-12)
			target, ok := s.Target()
			require.True(t, ok)
			assert.Equal(t, 1.0, target.X)
			tr, _ := s.Transition()
			assert.Equal(t, 0.0, tr.Origin.X)

			e.Tick(at(tc.between))
			e.Tick(at(1000))
			s, ok = e.Slot("tooltip:fade")
			require.True(t, ok)
			assert.False(t, s.Active())
			assert.Equal(t, 1.0, s.Value.X)

			// The slot rests on 1 and remembers 0 as where it came from.
			require.True(t, e.Invert("tooltip:fade", false))
			target, _ = s.Target()
			assert.Equal(t, 0.0, target.X)
		})
	}
}

func TestInvertAtRest(t *testing.T) {
	e := New(nil)
	e.Put("tooltip:fade", Scalar(1), nil)
	require.True(t, e.Invert("tooltip:fade", true))
	s, _ := e.Slot("tooltip:fade")
	target, ok := s.Target()
	require.True(t, ok)
	assert.Equal(t, 0.0, target.X)

	e.Put("pos", Index(3), nil)
	assert.False(t, e.Invert("pos", false))
	assert.False(t, e.Invert("missing", false))
}

func TestInvertReturnsToPreviousRest(t *testing.T) {
	e := New(nil)
	e.Start("graph-fade:0", nil, Scalar(-1), Scalar(1), 10*time.Millisecond, Linear, false)
	e.Tick(at(0))
	e.Tick(at(10))
	require.True(t, e.Invert("graph-fade:0", false))
	e.Tick(at(20))
	frame := e.Tick(at(40))
	assert.Equal(t, -1.0, frame["graph-fade:0"].Value.X)
}

func TestIdleTickIsIdempotent(t *testing.T) {
	var r redrawCounter
	e := New(r.redraw)
	e.Put("a", Scalar(.25), nil)
	e.Tick(at(0))
	assert.Equal(t, 1, r.calls, "creating a slot requests one redraw")

	for i := 1; i < 5; i++ {
		frame := e.Tick(at(i))
		assert.Empty(t, frame)
	}
	assert.Equal(t, 1, r.calls)
	s, _ := e.Slot("a")
	assert.Equal(t, .25, s.Value.X)

	e.Invalidate()
	assert.True(t, e.HasActiveWork())
	e.Tick(at(10))
	e.Tick(at(11))
	assert.Equal(t, 2, r.calls)
}

func TestRedrawOncePerTick(t *testing.T) {
	var r redrawCounter
	e := New(r.redraw)
	for _, name := range []string{"a", "b", "c"} {
		e.Start(name, nil, Scalar(0), Scalar(1), time.Second, Linear, false)
	}
	e.Tick(at(0))
	e.Tick(at(500))
	assert.Equal(t, 2, r.calls)
	assert.Len(t, r.frames[1], 3)
	for _, entry := range r.frames[1] {
		assert.InDelta(t, .5, entry.Value.X, 1e-9)
	}
}

func TestStartReplaces(t *testing.T) {
	e := New(nil)
	e.Start("x", "payload", Scalar(0), Scalar(1), 100*time.Millisecond, Linear, false)
	e.Tick(at(0))
	e.Tick(at(50))
	e.Start("x", nil, Scalar(.5), Scalar(0), 100*time.Millisecond, Linear, true)
	s, _ := e.Slot("x")
	assert.Equal(t, "payload", s.Data)
	tr, ok := s.Transition()
	require.True(t, ok)
	assert.Equal(t, 0.0, tr.To.X)
	assert.True(t, tr.Remove)
}

func TestRemove(t *testing.T) {
	e := New(nil)
	e.Start("v-bounds", nil, Range(0, 10), Range(0, 20), 100*time.Millisecond, Linear, false)
	e.Tick(at(0))
	e.Tick(at(50))
	e.Remove("v-bounds", false)
	s, ok := e.Slot("v-bounds")
	require.True(t, ok)
	assert.False(t, s.Active())
	assert.InDelta(t, 15, s.Value.Max, 1e-9)
	e.Tick(at(100))
	assert.InDelta(t, 15, s.Value.Max, 1e-9)

	e.Remove("v-bounds", true)
	_, ok = e.Slot("v-bounds")
	assert.False(t, ok)
}

func TestGroup(t *testing.T) {
	e := New(nil)
	e.Put("h-labels:8", Scalar(1), 8)
	e.Put("h-labelsx", Scalar(1), nil)
	e.Put("h-labels:2", Scalar(1), 2)
	e.Put("v-labels:500", Scalar(1), nil)

	group := e.Group("h-labels")
	require.Len(t, group, 2)
	assert.Equal(t, "h-labels:8", group[0].Name)
	assert.Equal(t, "h-labels:2", group[1].Name)

	e.RemoveGroup("h-labels", true)
	assert.Empty(t, e.Group("h-labels"))
	_, ok := e.Slot("h-labelsx")
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	e := New(nil)
	e.Start("in", nil, Scalar(0), Scalar(1), time.Second, Linear, false)
	e.Start("out", nil, Scalar(1), Scalar(0), time.Second, Linear, true)
	e.Tick(at(0))
	e.Tick(at(100))
	e.Clear()

	s, ok := e.Slot("in")
	require.True(t, ok)
	assert.Equal(t, 1.0, s.Value.X)
	_, ok = e.Slot("out")
	assert.False(t, ok)
	assert.True(t, e.HasActiveWork(), "clearing leaves a redraw pending")
	e.Tick(at(200))
	assert.False(t, e.HasActiveWork())
}
