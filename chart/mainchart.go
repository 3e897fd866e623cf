package chart

import (
	"math"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"git.sr.ht/~whereswaldon/tickchart/bounds"
	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
	"git.sr.ht/~whereswaldon/tickchart/fx"
	"git.sr.ht/~whereswaldon/tickchart/labels"
	"git.sr.ht/~whereswaldon/tickchart/tooltip"
)

// Slot names and group prefixes shared by the charts.
const (
	vBoundsSlot   = "v-bounds"
	hLabelsGroup  = "h-labels"
	vLabelsGroup  = "v-labels"
	graphGroup    = "graph-fade"
	tooltipFade   = "tooltip:fade"
	tooltipPos    = "tooltip:position"
	noStride      = math.MaxInt
)

func hLabelSlot(stride int) string {
	return hLabelsGroup + ":" + strconv.Itoa(stride)
}

func vLabelSlot(maxLabel float64) string {
	return vLabelsGroup + ":" + strconv.FormatFloat(maxLabel, 'f', -1, 64)
}

func graphSlot(i int) string {
	return graphGroup + ":" + strconv.Itoa(i)
}

// MainChart draws the zoomed-in chart: graphs over the visible range, date
// labels underneath, value grid lines and the hover tooltip.
type MainChart struct {
	cfg    *config.Config
	data   *dataset.Chart
	surf   Surface
	state  *fx.Engine
	labels *labels.Calculator
	tip    *tooltip.Resolver
	easing fx.EasingFunc
	log    *zap.Logger

	hb        dataset.Range
	hbSet     bool
	minStride int
	mask      dataset.Mask
}

func newMainChart(data *dataset.Chart, cfg *config.Config, surf Surface, easing fx.EasingFunc, loc *time.Location, log *zap.Logger) *MainChart {
	m := &MainChart{
		cfg:       cfg,
		data:      data,
		surf:      surf,
		easing:    easing,
		log:       log,
		minStride: noStride,
	}
	m.state = fx.New(m.redraw)
	labelStyle := m.labelStyle(AlignCenter, BaselineTop)
	m.labels = labels.New(data.Axis, cfg.Localization, cfg.Columns.Min, loc, func(s string) float64 {
		return surf.MeasureText(s, labelStyle)
	})
	m.tip = tooltip.New(m.onTooltip)
	return m
}

// State exposes the animation slots of the chart.
func (m *MainChart) State() *fx.Engine {
	return m.state
}

// Tooltip exposes the hover resolver. Positions are in device pixels of the
// main surface.
func (m *MainChart) Tooltip() *tooltip.Resolver {
	return m.tip
}

// Range returns the visible column range.
func (m *MainChart) Range() dataset.Range {
	return m.hb
}

// Resize picks up a new surface size. Running animations snap to their end.
func (m *MainChart) Resize() {
	g := m.geometry()
	m.labels.SetPlotWidth(g.right - g.left)
	m.tip.SetGeometry(g.width, g.height, tooltip.Margins{
		Top:    g.top,
		Bottom: g.height - g.bottom,
		Left:   g.left,
		Right:  g.width - g.right,
	})
	if m.hbSet {
		hb := m.hb
		m.Update(&hb, true)
		return
	}
	m.state.Invalidate()
}

// Update moves the chart to a new visible range, or keeps the current one
// when hb is nil, and reconciles the series visibility. An instant update
// skips every animation.
func (m *MainChart) Update(hb *dataset.Range, instant bool) {
	if hb != nil {
		m.updateHorizontalLabels(*hb, instant)
		m.hb, m.hbSet = *hb, true
		m.tip.SetRange(*hb)
	}
	if instant {
		m.state.Clear()
	}
	mask := m.data.Mask()
	m.updateVerticalBounds(mask, instant)
	if !mask.Equal(m.mask) {
		if !instant && m.mask != nil {
			m.updateGraphVisibility(mask)
		}
		m.mask = mask
	}
	m.state.Invalidate()
}

func (m *MainChart) updateHorizontalLabels(hb dataset.Range, instant bool) {
	stride, ok := m.labels.MinStride(hb)
	if !ok {
		stride = noStride
	}
	presets := m.labels.Visible(hb)
	d := m.cfg.FX.Duration

	switch {
	case instant:
		m.state.RemoveGroup(hLabelsGroup, true)
		for _, b := range presets.Buckets {
			if b.Stride >= stride {
				m.state.Put(hLabelSlot(b.Stride), fx.Scalar(1), b.Stride)
			}
		}
	case !m.hbSet || stride != m.minStride || !slices.Equal(m.labels.Visible(m.hb).Keys(), presets.Keys()):
		items := m.state.Group(hLabelsGroup)
		for _, item := range items {
			if _, ok := m.state.Slot(item.Name); !ok {
				continue
			}
			preset, _ := item.Data.(int)
			tr, active := item.Transition()
			switch {
			case !active && preset < stride:
				// Lower strides still fading out would flicker under this one.
				for _, other := range items {
					if other == item {
						continue
					}
					otr, busy := other.Transition()
					if p, _ := other.Data.(int); busy && otr.To.X == 0 && p < preset {
						m.state.Remove(other.Name, true)
					}
				}
				m.state.Start(item.Name, nil, item.Value, fx.Scalar(0), d, nil, true)
			case active && tr.To.X == 1 && preset < stride:
				m.state.Invert(item.Name, true)
			case active && tr.To.X == 0 && preset >= stride:
				m.state.Invert(item.Name, false)
			}
		}
		for _, b := range presets.Buckets {
			id := hLabelSlot(b.Stride)
			if _, ok := m.state.Slot(id); !ok && b.Stride >= stride {
				m.state.Start(id, b.Stride, fx.Scalar(0), fx.Scalar(1), d, nil, false)
			}
		}
	}
	m.minStride = stride
}

func (m *MainChart) updateVerticalBounds(mask dataset.Mask, instant bool) {
	if !m.hbSet {
		return
	}
	cur, hasCur := m.state.Slot(vBoundsSlot)
	b, ok := bounds.Vertical(m.data.Graphs, mask, m.hb, m.boundsGeometry())
	if !ok {
		m.state.Remove(vBoundsSlot, false)
		return
	}
	if hasCur && b.Min == cur.Value.Min && b.Max == cur.Value.Max {
		if target, moving := cur.Target(); !moving || (target.Min == b.Min && target.Max == b.Max) {
			return
		}
	}
	m.updateVerticalLabels(b, mask, instant)
	if instant || !hasCur || mask.Equal(m.mask) {
		m.state.Put(vBoundsSlot, fx.Range(b.Min, b.Max), b)
		return
	}
	m.state.Start(vBoundsSlot, b, cur.Value, fx.Range(b.Min, b.Max), m.cfg.FX.Duration, m.easing, false)
}

func (m *MainChart) updateVerticalLabels(b bounds.Bounds, mask dataset.Mask, instant bool) {
	maxLabel := bounds.MaxLabel(b.MaxValue)
	id := vLabelSlot(maxLabel)
	values := bounds.Labels(maxLabel)
	if instant || mask.Equal(m.mask) {
		m.state.RemoveGroup(vLabelsGroup, true)
		m.state.Put(id, fx.Scalar(1), values)
		return
	}
	d := m.cfg.FX.Duration
	for _, item := range m.state.Group(vLabelsGroup) {
		if item.Name == id {
			continue
		}
		tr, active := item.Transition()
		switch {
		case !active:
			m.state.Start(item.Name, nil, item.Value, fx.Scalar(0), d, nil, true)
		case tr.To.X == 1:
			m.state.Invert(item.Name, true)
		}
	}
	item, ok := m.state.Slot(id)
	if !ok {
		m.state.Start(id, values, fx.Scalar(0), fx.Scalar(1), d, nil, false)
		return
	}
	if tr, active := item.Transition(); active && tr.To.X == 0 {
		m.state.Invert(id, false)
	}
}

func (m *MainChart) updateGraphVisibility(mask dataset.Mask) {
	for i, visible := range mask {
		if i < len(m.mask) && m.mask[i] == visible {
			continue
		}
		id := graphSlot(i)
		if _, ok := m.state.Slot(id); ok {
			m.state.Invert(id, true)
			continue
		}
		from, to := 1.0, 0.0
		if visible {
			from, to = 0, 1
		}
		m.state.Start(id, i, fx.Scalar(from), fx.Scalar(to), m.cfg.FX.Duration, nil, true)
	}
}

// onTooltip animates the tooltip toward the hovered column. A quick move
// between two columns starts a third of the way toward the previous target
// so the line does not lag behind the pointer.
func (m *MainChart) onTooltip(next, prev int) {
	d := m.cfg.FX.Duration
	if next != tooltip.None {
		fade, ok := m.state.Slot(tooltipFade)
		pos, hasPos := m.state.Slot(tooltipPos)
		if !ok || !hasPos {
			m.state.Start(tooltipFade, nil, fx.Scalar(0), fx.Scalar(1), d, nil, false)
			m.state.Put(tooltipPos, fx.Index(float64(next)), nil)
			return
		}
		if tr, active := fade.Transition(); active && tr.To.X == 0 {
			m.state.Invert(tooltipFade, false)
		}
		from := pos.Value.X
		if prev != tooltip.None {
			from = from*2/3 + float64(prev)/3
		}
		m.state.Start(tooltipPos, nil, fx.Index(from), fx.Index(float64(next)), d, m.easing, false)
		return
	}
	fade, ok := m.state.Slot(tooltipFade)
	if !ok {
		return
	}
	tr, active := fade.Transition()
	switch {
	case !active:
		m.state.Start(tooltipFade, nil, fade.Value, fx.Scalar(0), d, nil, true)
	case tr.To.X == 1:
		m.state.Invert(tooltipFade, true)
	}
}

type geometry struct {
	width, height            float64
	top, bottom, left, right float64
	dpr                      float64
}

// geometry returns the plot rectangle in device pixels.
func (m *MainChart) geometry() geometry {
	w, h := m.surf.Size()
	dpr := m.surf.DPR()
	mg := m.cfg.Chart.Margin
	return geometry{
		width:  w,
		height: h,
		top:    mg.Top * dpr,
		bottom: h - mg.Bottom*dpr,
		left:   mg.Left * dpr,
		right:  w - mg.Right*dpr,
		dpr:    dpr,
	}
}

func (m *MainChart) boundsGeometry() bounds.Geometry {
	g := m.geometry()
	return bounds.Geometry{
		PlotHeight: g.bottom - g.top,
		Reserve:    (m.cfg.Font.Size*m.cfg.Font.HLetter + m.cfg.Chart.LabelVOffset.Left) * g.dpr,
	}
}

func (m *MainChart) labelStyle(align Align, baseline Baseline) TextStyle {
	dpr := m.surf.DPR()
	return TextStyle{
		Family:   m.cfg.Font.Family,
		Size:     m.cfg.Font.Size * dpr,
		Weight:   m.cfg.Font.Weight,
		Color:    m.cfg.Font.Color.NRGBA(),
		Align:    align,
		Baseline: baseline,
	}
}
