package main

import (
	"image"
	"image/color"
	"testing"
	"time"

	"gioui.org/f32"
	"gioui.org/font/gofont"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"git.sr.ht/~whereswaldon/tickchart/chart"
	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

func testTheme() *material.Theme {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	return th
}

func testContext(ops *op.Ops, size image.Point) C {
	return C{
		Ops:         ops,
		Metric:      unit.Metric{PxPerDp: 1, PxPerSp: 1},
		Constraints: layout.Exact(size),
		Now:         time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testChart(n int) *dataset.Chart {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &dataset.Chart{Axis: make([]int64, n)}
	a := &dataset.Graph{Key: "y0", Name: "Joined", Color: color.NRGBA{R: 0x3d, G: 0xc2, B: 0x3f, A: 0xff}, Visible: true}
	b := &dataset.Graph{Key: "y1", Name: "Left", Color: color.NRGBA{R: 0xf3, G: 0x4c, B: 0x44, A: 0xff}, Visible: true}
	for i := range c.Axis {
		c.Axis[i] = start.AddDate(0, 0, i).UnixMilli()
		a.Values = append(a.Values, float64(100+i%17*40))
		b.Values = append(b.Values, float64(50+i%5*10))
	}
	c.Graphs = []*dataset.Graph{a, b}
	return c
}

func TestGioSurfaceSize(t *testing.T) {
	s := newGioSurface(testTheme())
	require.True(t, s.SetSize(image.Pt(200, 100), 2))
	require.False(t, s.SetSize(image.Pt(200, 100), 2))
	w, h := s.Size()
	require.Equal(t, 200.0, w)
	require.Equal(t, 100.0, h)
	require.Equal(t, 2.0, s.DPR())
}

func TestGioSurfaceMeasureText(t *testing.T) {
	s := newGioSurface(testTheme())
	s.SetSize(image.Pt(200, 100), 1)
	style := chart.TextStyle{Size: 15, Weight: 400, Color: color.NRGBA{A: 0xff}}
	short := s.MeasureText("Apr 8", style)
	require.Greater(t, short, 0.0)
	require.Greater(t, s.MeasureText("Apr 8, 2024", style), short)
	require.Equal(t, short, s.MeasureText("Apr 8", style))

	larger := style
	larger.Size = 30
	require.Greater(t, s.MeasureText("Apr 8", larger), short)
}

func TestGioSurfaceReplaysLastDrawing(t *testing.T) {
	s := newGioSurface(testTheme())
	s.SetSize(image.Pt(200, 100), 1)

	// Nothing was drawn yet.
	var ops op.Ops
	dims := s.Layout(testContext(&ops, image.Pt(200, 100)))
	require.Equal(t, image.Pt(200, 100), dims.Size)

	s.Clear()
	s.FillRect(0, 0, 200, 100, color.NRGBA{R: 0xff, A: 0xff})
	s.DrawLine([]chart.Point{{X: 0, Y: 0}, {X: 100, Y: 50}}, color.NRGBA{A: 0xff}, 2)
	s.DrawArc(50, 50, 6, color.NRGBA{B: 0xff, A: 0xff}, 3)
	s.DrawText("0", 16, 80, chart.TextStyle{Size: 15, Color: color.NRGBA{A: 0xff}})
	for i := 0; i < 2; i++ {
		ops.Reset()
		dims = s.Layout(testContext(&ops, image.Pt(200, 100)))
		require.Equal(t, image.Pt(200, 100), dims.Size)
	}
}

func TestChartViewVisibility(t *testing.T) {
	cfg := config.Default()
	cfg.Visible = map[string]bool{"y0": false}
	v := NewChartView(testTheme(), testChart(100), cfg, map[string]bool{"y1": false}, time.UTC, zaptest.NewLogger(t))
	require.Equal(t, map[string]bool{"y0": false, "y1": false}, v.Visibility())
	require.Equal(t, map[string]bool{"y0": false}, cfg.Visible, "the shared configuration is untouched")
}

func TestChartViewLayout(t *testing.T) {
	th := testTheme()
	v := NewChartView(th, testChart(100), config.Default(), nil, time.UTC, zaptest.NewLogger(t))
	defer v.Close()

	var ops op.Ops
	gtx := testContext(&ops, image.Pt(600, 500))
	v.Layout(gtx, th)
	require.NoError(t, v.err)
	require.NotNil(t, v.widget)
	before := v.widget.Main.Range()
	require.Equal(t, 99, before.Last)

	w, _ := v.mini.Size()
	require.Equal(t, 600.0, w)

	// Pan the preview window by dragging its body to the left.
	press := pointer.Event{Kind: pointer.Press, Source: pointer.Mouse, Buttons: pointer.ButtonPrimary, Position: f32.Pt(570, 20)}
	v.drag(press)
	require.True(t, v.tracker.Active())
	move := press
	move.Kind = pointer.Drag
	move.Position.X = 300
	v.drag(move)
	release := move
	release.Kind = pointer.Release
	release.Buttons = 0
	v.drag(release)
	require.False(t, v.tracker.Active())

	after := v.widget.Main.Range()
	require.Less(t, after.First, before.First)
	require.InDelta(t, before.Len(), after.Len(), 1)

	ops.Reset()
	v.Layout(testContext(&ops, image.Pt(600, 500)), th)
}
