package main

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"git.sr.ht/~whereswaldon/tickchart/chart"
)

// gioSurface records the drawing of one chart into its own op list. The
// widget redraws only when something changed, so the last recording is
// replayed on every frame in between.
type gioSurface struct {
	th     *material.Theme
	size   image.Point
	dpr    float64
	ops    op.Ops
	macro  op.MacroOp
	call   op.CallOp
	open   bool
	scrap  op.Ops
	widths map[textKey]float64
}

type textKey struct {
	text   string
	size   float64
	weight int
}

var _ chart.Surface = (*gioSurface)(nil)

func newGioSurface(th *material.Theme) *gioSurface {
	return &gioSurface{th: th, dpr: 1, widths: make(map[textKey]float64)}
}

// SetSize reports whether the size changed.
func (s *gioSurface) SetSize(size image.Point, dpr float64) bool {
	if size == s.size && dpr == s.dpr {
		return false
	}
	s.size, s.dpr = size, dpr
	clear(s.widths)
	return true
}

func (s *gioSurface) Size() (float64, float64) {
	return float64(s.size.X), float64(s.size.Y)
}

func (s *gioSurface) DPR() float64 {
	return s.dpr
}

func (s *gioSurface) Clear() {
	if s.open {
		s.macro.Stop()
	}
	s.ops.Reset()
	s.macro = op.Record(&s.ops)
	s.open = true
}

// Layout replays the last recording.
func (s *gioSurface) Layout(gtx C) D {
	if s.open {
		s.call = s.macro.Stop()
		s.open = false
	}
	defer clip.Rect{Max: s.size}.Push(gtx.Ops).Pop()
	s.call.Add(gtx.Ops)
	return D{Size: s.size}
}

func (s *gioSurface) FillRect(x, y, w, h float64, c color.NRGBA) {
	if !s.open || w <= 0 || h <= 0 || c.A == 0 {
		return
	}
	r := image.Rect(round(x), round(y), round(x+w), round(y+h))
	paint.FillShape(&s.ops, c, clip.Rect(r).Op())
}

func (s *gioSurface) DrawLine(points []chart.Point, c color.NRGBA, width float64) {
	if !s.open || len(points) < 2 || c.A == 0 {
		return
	}
	var p clip.Path
	p.Begin(&s.ops)
	p.MoveTo(pt(points[0]))
	for _, q := range points[1:] {
		p.LineTo(pt(q))
	}
	paint.FillShape(&s.ops, c, clip.Stroke{Path: p.End(), Width: float32(width)}.Op())
}

func (s *gioSurface) DrawArc(x, y, r float64, c color.NRGBA, width float64) {
	if !s.open || r <= 0 || c.A == 0 {
		return
	}
	center := f32.Pt(float32(x), float32(y))
	var p clip.Path
	p.Begin(&s.ops)
	p.MoveTo(center.Add(f32.Pt(float32(r), 0)))
	p.ArcTo(center, center, 2*math.Pi)
	p.Close()
	paint.FillShape(&s.ops, c, clip.Stroke{Path: p.End(), Width: float32(width)}.Op())
}

func (s *gioSurface) DrawText(text string, x, y float64, style chart.TextStyle) {
	if !s.open || text == "" || style.Color.A == 0 {
		return
	}
	macro := op.Record(&s.ops)
	dims := s.label(text, style).Layout(s.context(&s.ops))
	call := macro.Stop()
	w := float64(dims.Size.X)
	switch style.Align {
	case chart.AlignCenter:
		x -= w / 2
	case chart.AlignEnd:
		x -= w
	}
	if style.Baseline == chart.BaselineAlphabetic {
		y -= float64(dims.Size.Y - dims.Baseline)
	}
	defer op.Offset(image.Pt(round(x), round(y))).Push(&s.ops).Pop()
	call.Add(&s.ops)
}

func (s *gioSurface) MeasureText(text string, style chart.TextStyle) float64 {
	key := textKey{text: text, size: style.Size, weight: style.Weight}
	if w, ok := s.widths[key]; ok {
		return w
	}
	s.scrap.Reset()
	dims := s.label(text, style).Layout(s.context(&s.scrap))
	w := float64(dims.Size.X)
	s.widths[key] = w
	return w
}

func (s *gioSurface) label(text string, style chart.TextStyle) material.LabelStyle {
	// One sp per pixel, see context.
	l := material.Label(s.th, unit.Sp(style.Size), text)
	l.Color = style.Color
	l.MaxLines = 1
	l.Font.Typeface = font.Typeface(style.Family)
	l.Font.Weight = font.Weight(style.Weight - 400)
	return l
}

// context builds a layout context for text outside of a frame. Sizes are
// already in device pixels.
func (s *gioSurface) context(ops *op.Ops) C {
	return C{
		Ops:    ops,
		Metric: unit.Metric{PxPerDp: 1, PxPerSp: 1},
		Constraints: layout.Constraints{
			Max: image.Pt(math.MaxInt32/2, math.MaxInt32/2),
		},
	}
}

func pt(p chart.Point) f32.Point {
	return f32.Pt(float32(p.X), float32(p.Y))
}

func round(v float64) int {
	return int(math.Round(v))
}
