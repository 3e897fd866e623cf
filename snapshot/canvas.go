// Package snapshot renders the chart widget headlessly into a PNG image.
package snapshot

import (
	"image/color"
	"io"
	"math"

	"github.com/pkg/errors"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"git.sr.ht/~whereswaldon/tickchart/chart"
)

// Canvas is one raster image shared by several regions.
type Canvas struct {
	r             gochart.Renderer
	width, height int
	dpr           float64
}

func NewCanvas(width, height int, dpr float64) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid canvas size %dx%d", width, height)
	}
	r, err := gochart.PNG(width, height)
	if err != nil {
		return nil, errors.Wrap(err, "creating PNG renderer")
	}
	// One point per pixel, so font sizes stay in device pixels.
	r.SetDPI(72)
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, errors.Wrap(err, "loading default font")
	}
	r.SetFont(font)
	return &Canvas{r: r, width: width, height: height, dpr: dpr}, nil
}

// Region returns a surface drawing into the rectangle at (x, y).
func (c *Canvas) Region(x, y, width, height int) *Surface {
	return &Surface{c: c, x: x, y: y, width: width, height: height}
}

func (c *Canvas) Save(w io.Writer) error {
	return errors.Wrap(c.r.Save(w), "encoding PNG")
}

// Surface draws into one region of a Canvas.
type Surface struct {
	c             *Canvas
	x, y          int
	width, height int
}

var _ chart.Surface = (*Surface)(nil)

func (s *Surface) Size() (float64, float64) {
	return float64(s.width), float64(s.height)
}

func (s *Surface) DPR() float64 {
	return s.c.dpr
}

// Clear paints the region white. PNG snapshots are opaque.
func (s *Surface) Clear() {
	s.fill(0, 0, float64(s.width), float64(s.height), drawing.ColorWhite)
}

func (s *Surface) FillRect(x, y, w, h float64, c color.NRGBA) {
	if w <= 0 || h <= 0 || c.A == 0 {
		return
	}
	s.fill(x, y, w, h, toDrawing(c))
}

func (s *Surface) fill(x, y, w, h float64, c drawing.Color) {
	r := s.c.r
	r.SetFillColor(c)
	r.SetStrokeColor(drawing.ColorTransparent)
	r.SetStrokeWidth(0)
	r.MoveTo(s.px(x, y))
	r.LineTo(s.px(x+w, y))
	r.LineTo(s.px(x+w, y+h))
	r.LineTo(s.px(x, y+h))
	r.Close()
	r.Fill()
}

func (s *Surface) DrawLine(points []chart.Point, c color.NRGBA, width float64) {
	if len(points) < 2 || c.A == 0 {
		return
	}
	r := s.c.r
	r.SetStrokeColor(toDrawing(c))
	r.SetStrokeWidth(width)
	r.MoveTo(s.px(points[0].X, points[0].Y))
	for _, p := range points[1:] {
		r.LineTo(s.px(p.X, p.Y))
	}
	r.Stroke()
}

func (s *Surface) DrawText(text string, x, y float64, style chart.TextStyle) {
	if text == "" || style.Color.A == 0 {
		return
	}
	r := s.c.r
	s.applyFont(style)
	box := r.MeasureText(text)
	switch style.Align {
	case chart.AlignCenter:
		x -= float64(box.Width()) / 2
	case chart.AlignEnd:
		x -= float64(box.Width())
	}
	if style.Baseline == chart.BaselineTop {
		y += float64(box.Height())
	}
	px, py := s.px(x, y)
	r.Text(text, px, py)
}

func (s *Surface) MeasureText(text string, style chart.TextStyle) float64 {
	if text == "" {
		return 0
	}
	s.applyFont(style)
	return float64(s.c.r.MeasureText(text).Width())
}

func (s *Surface) applyFont(style chart.TextStyle) {
	r := s.c.r
	r.SetFontSize(style.Size)
	r.SetFontColor(toDrawing(style.Color))
}

func (s *Surface) DrawArc(x, y, radius float64, c color.NRGBA, width float64) {
	if radius <= 0 || c.A == 0 {
		return
	}
	r := s.c.r
	r.SetStrokeColor(toDrawing(c))
	r.SetStrokeWidth(width)
	cx, cy := s.px(x, y)
	r.MoveTo(cx+int(math.Round(radius)), cy)
	r.ArcTo(cx, cy, radius, radius, 0, 2*math.Pi)
	r.Stroke()
}

// px converts region coordinates to canvas pixels.
func (s *Surface) px(x, y float64) (int, int) {
	return s.x + int(math.Round(x)), s.y + int(math.Round(y))
}

func toDrawing(c color.NRGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
