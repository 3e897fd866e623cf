package snapshot

import (
	"io"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"git.sr.ht/~whereswaldon/tickchart/chart"
	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

// NoHover leaves the tooltip hidden.
const NoHover = -1

const (
	frameStep  = 16 * time.Millisecond
	frameLimit = 1000
)

type Options struct {
	// Width and Height size the main chart in CSS pixels. The preview is
	// drawn below it.
	Width, Height int
	DPR           float64
	// Hover is the logical index of the hovered sample, or NoHover.
	Hover    int
	Location *time.Location
	Logger   *zap.Logger
}

// Render draws data with every animation settled and writes the PNG to w.
func Render(data *dataset.Chart, cfg *config.Config, opts Options, w io.Writer) error {
	dpr := opts.DPR
	if dpr <= 0 {
		dpr = 1
	}
	width := int(math.Round(float64(opts.Width) * dpr))
	mainHeight := int(math.Round(float64(opts.Height) * dpr))
	miniHeight := int(math.Round(cfg.Preview.Height * dpr))
	canvas, err := NewCanvas(width, mainHeight+miniHeight, dpr)
	if err != nil {
		return err
	}
	sched := &chart.ManualScheduler{}
	widget, err := chart.New(data, cfg,
		canvas.Region(0, 0, width, mainHeight),
		canvas.Region(0, mainHeight, width, miniHeight),
		sched, chart.Options{Logger: opts.Logger, Location: opts.Location})
	if err != nil {
		return errors.Wrap(err, "building chart")
	}
	defer widget.Close()

	now := sched.Settle(time.Now(), frameStep, frameLimit)
	if opts.Hover != NoHover {
		x, y, err := hoverPoint(widget, data, cfg, opts.Hover, width, mainHeight, dpr)
		if err != nil {
			return err
		}
		widget.Pointer(chart.PointerEvent{Kind: chart.MouseEnter, Time: now, X: x, Y: y})
		now = sched.Settle(now, frameStep, frameLimit)
	}
	if sched.Pending() {
		return errors.Errorf("chart still animating after %d frames", frameLimit)
	}
	return canvas.Save(w)
}

// hoverPoint returns the device pixel position of a logical index in the
// middle of the plot.
func hoverPoint(w *chart.Widget, data *dataset.Chart, cfg *config.Config, logical, width, height int, dpr float64) (float64, float64, error) {
	r := w.Main.Range()
	column := data.Column(logical)
	if logical < 0 || column < r.First || column > r.Last {
		return 0, 0, &config.ConfigurationError{
			Field:  "hover",
			Reason: "sample is outside the visible range",
		}
	}
	m := cfg.Chart.Margin
	left := m.Left * dpr
	step := (float64(width) - left - m.Right*dpr) / float64(r.Len())
	top, bottom := m.Top*dpr, float64(height)-m.Bottom*dpr
	return left + float64(column-r.First)*step, (top + bottom) / 2, nil
}
