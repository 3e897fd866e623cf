package chart

import (
	"image/color"
	"math"

	"git.sr.ht/~whereswaldon/tickchart/bounds"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
	"git.sr.ht/~whereswaldon/tickchart/fx"
)

// frame maps data to device pixels for one redraw.
type frame struct {
	geometry
	first, last int
	min, max    float64
	// perPixel is the value covered by one vertical pixel.
	perPixel float64
	step     float64
	// align shifts grid lines onto whole pixels.
	align float64
}

func (f frame) x(column float64) float64 {
	return f.left + (column-float64(f.first))*f.step
}

func (f frame) y(v float64) float64 {
	return f.top + (f.max-v)/f.perPixel
}

func (m *MainChart) redraw(fx.Frame) {
	m.surf.Clear()
	g := m.geometry()
	m.surf.FillRect(0, 0, g.width, g.height, m.cfg.Chart.Color.Background.NRGBA())
	if !m.hbSet || m.hb.Len() <= 0 {
		return
	}
	f := frame{
		geometry: g,
		first:    m.hb.First,
		last:     m.hb.Last,
		step:     (g.right - g.left) / float64(m.hb.Len()),
	}
	half := m.cfg.Chart.Thickness.Grid * g.dpr / 2
	f.align = math.Ceil(half) - half

	m.drawHorizontalLabels(f)
	vb, ok := m.state.Slot(vBoundsSlot)
	if !ok {
		return
	}
	f.min, f.max = vb.Value.Min, vb.Value.Max
	f.perPixel = (f.max - f.min) / (g.bottom - g.top)
	if f.perPixel <= 0 {
		return
	}
	m.drawVerticalLabels(f)
	m.drawGraphs(f)
	m.drawTooltip(f)
}

func (m *MainChart) drawHorizontalLabels(f frame) {
	n := m.data.Len()
	span := m.labels.VisibleSpan(m.hb)
	presets := m.labels.Presets(span)
	style := m.labelStyle(AlignCenter, BaselineTop)
	y := f.bottom + m.cfg.Chart.LabelVOffset.Bottom*f.dpr
	at := func(logical int) float64 {
		return f.x(float64(n - 1 - logical))
	}

	if len(presets.First) > 0 {
		v := presets.First[0]
		text := m.labels.Label(v)
		w := m.surf.MeasureText(text, style)
		x := at(v)
		if m.hb.Last == n-1 {
			x = math.Min(x, f.width-m.cfg.Chart.Margin.Right*f.dpr*0.75-w/2)
		}
		m.surf.DrawText(text, x, y, style)
	}

	skip := -1
	if span.Last == n-1 {
		if last, ok := presets.Last(); ok {
			text := m.labels.Label(last.Value)
			w := m.surf.MeasureText(text, style)
			if x := at(last.Value) - w/2; x > f.left/f.dpr {
				m.surf.DrawText(text, at(last.Value), y, style)
			}
			skip = last.Value
		}
	}

	base := style.Color
	for _, slot := range m.state.Group(hLabelsGroup) {
		stride, _ := slot.Data.(int)
		indices, ok := presets.Bucket(stride)
		if !ok {
			continue
		}
		style.Color = fade(base, slot.Value.X)
		for _, idx := range indices {
			if idx == skip || idx < 0 || idx >= n {
				continue
			}
			m.surf.DrawText(m.labels.Label(idx), at(idx), y, style)
		}
	}
}

func (m *MainChart) drawVerticalLabels(f frame) {
	line := m.cfg.Chart.Color.HLine.NRGBA()
	width := m.cfg.Chart.Thickness.Grid * f.dpr
	offset := m.cfg.Chart.LabelVOffset.Left * f.dpr
	style := m.labelStyle(AlignStart, BaselineAlphabetic)
	base := style.Color

	y := math.Round(f.y(0))
	m.surf.DrawLine([]Point{{f.left, y - f.align}, {f.right, y - f.align}}, line, width)
	m.surf.DrawText("0", f.left, y-offset, style)

	for _, slot := range m.state.Group(vLabelsGroup) {
		values, _ := slot.Data.([]float64)
		opacity := slot.Value.X
		style.Color = fade(base, opacity)
		for _, v := range values[min(1, len(values)):] {
			y := math.Round(f.y(v))
			m.surf.DrawLine([]Point{{f.left, y - f.align}, {f.right, y - f.align}}, fade(line, opacity), width)
			m.surf.DrawText(bounds.ValueToLabel(v, m.cfg.Localization), f.left, y-offset, style)
		}
	}
}

// graphOpacity reports how strongly a series is drawn, or false when it is
// hidden and not fading.
func (m *MainChart) graphOpacity(i int, g *dataset.Graph) (float64, bool) {
	if s, ok := m.state.Slot(graphSlot(i)); ok {
		return s.Value.X, true
	}
	return 1, g.Visible
}

func (m *MainChart) drawGraphs(f frame) {
	width := m.cfg.Chart.Thickness.Graph * f.dpr
	n := m.data.Len()
	for i, g := range m.data.Graphs {
		opacity, ok := m.graphOpacity(i, g)
		if !ok || opacity <= 0 {
			continue
		}
		c := fade(g.Color, opacity)
		points := make([]Point, 0, f.last-f.first+1)
		for col := f.first; col <= f.last; col++ {
			points = append(points, Point{f.x(float64(col)), f.y(g.Values[col])})
		}
		m.surf.DrawLine(points, c, width)
		if !m.cfg.Chart.Tails {
			continue
		}
		if f.first > 0 {
			tail := []Point{points[0]}
			for col := f.first - 1; col >= 0; col-- {
				x := f.x(float64(col))
				tail = append(tail, Point{x, f.y(g.Values[col])})
				if x < 0 {
					break
				}
			}
			m.surf.DrawLine(tail, c, width)
		}
		if f.last < n-1 {
			tail := []Point{points[len(points)-1]}
			for col := f.last + 1; col < n; col++ {
				x := f.x(float64(col))
				tail = append(tail, Point{x, f.y(g.Values[col])})
				if x > f.width {
					break
				}
			}
			m.surf.DrawLine(tail, c, width)
		}
	}
}

func (m *MainChart) drawTooltip(f frame) {
	fadeSlot, ok := m.state.Slot(tooltipFade)
	if !ok {
		return
	}
	pos, ok := m.state.Slot(tooltipPos)
	if !ok {
		return
	}
	visible := false
	for i, g := range m.data.Graphs {
		if _, ok := m.graphOpacity(i, g); ok {
			visible = true
			break
		}
	}
	if !visible {
		return
	}
	progress := fadeSlot.Value.X
	index := pos.Value.X
	x := f.x(index)
	column := int(math.Round(index))
	if target, moving := pos.Target(); moving {
		column = int(target.X)
	}

	boxBottom := m.drawTooltipBox(f, m.TooltipAt(column), x, progress)
	m.surf.DrawLine([]Point{{x - f.align, boxBottom}, {x - f.align, f.bottom}}, fade(m.cfg.Chart.Color.VLine.NRGBA(), progress), m.cfg.Chart.Thickness.Grid*f.dpr)

	r := m.cfg.Tooltip.CrossingRadius * f.dpr * progress
	half := m.cfg.Chart.Thickness.Graph * f.dpr / 2
	background := m.cfg.Chart.Color.Background.NRGBA()
	for i, g := range m.data.Graphs {
		opacity, ok := m.graphOpacity(i, g)
		if !ok || opacity <= 0 {
			continue
		}
		y := f.y(g.At(index))
		m.surf.FillRect(x-r-half, y-r-half, 2*(r+half), 2*(r+half), background)
		m.surf.DrawArc(x, y, r, fade(g.Color, opacity*progress), 2*half)
	}
}

// TooltipRow is one series in the tooltip.
type TooltipRow struct {
	Name  string
	Color color.NRGBA
	// Value is the compact label and Hint the full number.
	Value, Hint string
}

// Tooltip is the content shown for a hovered column.
type Tooltip struct {
	Column int
	Title  string
	Rows   []TooltipRow
}

// TooltipAt builds the tooltip content for a column. Rows are listed for the
// series that are visible or fading.
func (m *MainChart) TooltipAt(column int) Tooltip {
	n := m.data.Len()
	column = max(0, min(n-1, column))
	logical := n - 1 - column
	t := Tooltip{
		Column: column,
		Title:  m.labels.DayOfWeek(logical) + ", " + m.labels.Label(logical),
	}
	for i, g := range m.data.Graphs {
		if _, ok := m.graphOpacity(i, g); !ok {
			continue
		}
		v := g.Values[column]
		t.Rows = append(t.Rows, TooltipRow{
			Name:  g.Name,
			Color: g.Color,
			Value: bounds.ValueToLabel(v, m.cfg.Localization),
			Hint:  bounds.FormatValue(v, m.cfg.Localization.Separator),
		})
	}
	return t
}

// drawTooltipBox paints the tooltip near the top of the canvas, keeping it
// inside the surface. It returns the bottom edge of the box.
func (m *MainChart) drawTooltipBox(f frame, t Tooltip, x, progress float64) float64 {
	pad := 8 * f.dpr
	style := m.labelStyle(AlignStart, BaselineTop)
	lineHeight := style.Size * 1.4

	title := style
	title.Weight = 700
	title.Color = fade(title.Color, progress)
	width := m.surf.MeasureText(t.Title, title)
	texts := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		texts[i] = row.Value + " " + row.Name
		if row.Hint != row.Value {
			texts[i] += " (" + row.Hint + ")"
		}
		width = math.Max(width, m.surf.MeasureText(texts[i], style))
	}
	boxW := width + 2*pad
	boxH := lineHeight*float64(1+len(t.Rows)) + 2*pad
	left := x - m.cfg.Tooltip.Offset*f.dpr
	left = math.Max(0, math.Min(f.width-boxW, left))

	m.surf.FillRect(left, 0, boxW, boxH, fade(m.cfg.Chart.Color.Background.NRGBA(), progress))
	m.surf.DrawText(t.Title, left+pad, pad, title)
	for i, row := range t.Rows {
		rowStyle := style
		rowStyle.Color = fade(row.Color, progress)
		m.surf.DrawText(texts[i], left+pad, pad+lineHeight*float64(i+1), rowStyle)
	}
	return boxH
}
