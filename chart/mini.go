package chart

import (
	"math"

	"git.sr.ht/~whereswaldon/tickchart/bounds"
	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
	"git.sr.ht/~whereswaldon/tickchart/fx"
	"git.sr.ht/~whereswaldon/tickchart/scrubber"
)

// MiniChart draws every sample of the visible series under the preview
// window. Its vertical bounds follow the data, not label steps.
type MiniChart struct {
	cfg    *config.Config
	data   *dataset.Chart
	surf   Surface
	state  *fx.Engine
	easing fx.EasingFunc
	window *scrubber.Controller
	mask   dataset.Mask
}

func newMiniChart(data *dataset.Chart, cfg *config.Config, surf Surface, easing fx.EasingFunc, window *scrubber.Controller) *MiniChart {
	m := &MiniChart{
		cfg:    cfg,
		data:   data,
		surf:   surf,
		easing: easing,
		window: window,
	}
	m.state = fx.New(m.redraw)
	return m
}

func (m *MiniChart) State() *fx.Engine {
	return m.state
}

// Update reconciles the chart with the series visibility.
func (m *MiniChart) Update(instant bool) {
	if instant {
		m.state.Clear()
	}
	mask := m.data.Mask()
	cur, hasCur := m.state.Slot(vBoundsSlot)
	b, ok := bounds.Range(m.data.Graphs, mask, m.data.Full())
	switch {
	case !ok:
		m.state.Remove(vBoundsSlot, false)
	case hasCur && b.Min == cur.Value.Min && b.Max == cur.Value.Max:
	case instant || !hasCur || !m.mask.Any() || mask.Equal(m.mask):
		m.state.Put(vBoundsSlot, fx.Range(b.Min, b.Max), b)
	default:
		m.state.Start(vBoundsSlot, b, cur.Value, fx.Range(b.Min, b.Max), m.cfg.FX.Duration, m.easing, false)
	}
	if !mask.Equal(m.mask) {
		if !instant && m.mask != nil {
			m.updateGraphVisibility(mask)
		}
		m.mask = mask
	}
	m.state.Invalidate()
}

// updateGraphVisibility fades series over [-1,1] and draws them at
// max(0,v), so a series appears only in the second half of its fade.
func (m *MiniChart) updateGraphVisibility(mask dataset.Mask) {
	for i, visible := range mask {
		if i < len(m.mask) && m.mask[i] == visible {
			continue
		}
		id := graphSlot(i)
		if _, ok := m.state.Slot(id); ok {
			m.state.Invert(id, true)
			continue
		}
		from, to := 1.0, -1.0
		if visible {
			from, to = -1, 1
		}
		m.state.Start(id, i, fx.Scalar(from), fx.Scalar(to), m.cfg.FX.Duration, nil, true)
	}
}

func (m *MiniChart) redraw(fx.Frame) {
	m.surf.Clear()
	w, h := m.surf.Size()
	dpr := m.surf.DPR()
	m.surf.FillRect(0, 0, w, h, m.cfg.Chart.Color.Background.NRGBA())
	if vb, ok := m.state.Slot(vBoundsSlot); ok {
		m.drawGraphs(vb.Value, w, h, dpr)
	}
	m.drawWindow(w, h, dpr)
}

func (m *MiniChart) drawGraphs(vb fx.Value, w, h, dpr float64) {
	n := m.data.Len()
	top := m.cfg.Preview.Margin * dpr
	perPixel := (vb.Max - vb.Min) / (h - 2*top)
	if n < 2 || perPixel <= 0 {
		return
	}
	step := w / float64(n-1)
	width := m.cfg.Preview.Thickness * dpr
	for i, g := range m.data.Graphs {
		opacity := 1.0
		if s, ok := m.state.Slot(graphSlot(i)); ok {
			opacity = math.Max(0, s.Value.X)
		} else if !g.Visible {
			continue
		}
		if opacity <= 0 {
			continue
		}
		points := make([]Point, n)
		for col, v := range g.Values {
			points[col] = Point{float64(col) * step, top + (vb.Max-v)/perPixel}
		}
		m.surf.DrawLine(points, fade(g.Color, opacity), width)
	}
}

// drawWindow shades the samples outside the scrubber window and paints its
// frame and handles.
func (m *MiniChart) drawWindow(w, h, dpr float64) {
	if m.window == nil {
		return
	}
	left := m.window.Pos() * w
	right := (m.window.Pos() + m.window.Width()) * w
	edge := m.window.Geometry().Edge * dpr
	border := dpr
	shade := m.cfg.Preview.Shade.NRGBA()
	handle := m.cfg.Preview.Handle.NRGBA()

	m.surf.FillRect(0, 0, left, h, shade)
	m.surf.FillRect(right, 0, w-right, h, shade)
	m.surf.FillRect(left, 0, edge, h, handle)
	m.surf.FillRect(right-edge, 0, edge, h, handle)
	m.surf.FillRect(left+edge, 0, right-left-2*edge, border, handle)
	m.surf.FillRect(left+edge, h-border, right-left-2*edge, border, handle)
}
