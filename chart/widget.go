// Package chart renders a time-series chart with a zoomable preview onto
// abstract drawing surfaces.
//
// A Widget owns two charts: the main chart shows the range selected by a
// scrubber window laid over the mini chart. Every visual change runs through
// an animation engine, and the widget asks its Scheduler for a tick only
// while an engine has work to do.
package chart

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
	"git.sr.ht/~whereswaldon/tickchart/drag"
	"git.sr.ht/~whereswaldon/tickchart/fx"
	"git.sr.ht/~whereswaldon/tickchart/scrubber"
)

// DefaultEdgeWidth is the width of the preview handles in CSS pixels.
const DefaultEdgeWidth = 10

type Options struct {
	Logger *zap.Logger
	// Location renders the date labels. Nil means time.Local.
	Location *time.Location
	// EdgeWidth overrides DefaultEdgeWidth.
	EdgeWidth float64
}

type Widget struct {
	cfg  *config.Config
	data *dataset.Chart
	log  *zap.Logger

	Main     *MainChart
	Mini     *MiniChart
	Scrubber *scrubber.Controller

	sched     Scheduler
	scheduled bool
	edge      float64

	dragging   bool
	affordance scrubber.Affordance
	dragOffset float64
	unsub      []func()
}

// New builds a widget drawing data onto the main and mini surfaces. Both
// surfaces must already have their final size.
func New(data *dataset.Chart, cfg *config.Config, main, mini Surface, sched Scheduler, opts Options) (*Widget, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	edge := opts.EdgeWidth
	if edge <= 0 {
		edge = DefaultEdgeWidth
	}
	easing, err := fx.EasingOrLinear(cfg.FX.Easing)
	if err != nil {
		log.Warn("falling back to linear easing", zap.Error(err))
	}
	for _, g := range data.Graphs {
		g.Visible = cfg.IsVisible(g.Key)
	}

	w := &Widget{
		cfg:      cfg,
		data:     data,
		log:      log,
		sched:    sched,
		edge:     edge,
		Scrubber: scrubber.New(data.Len(), cfg.Columns),
	}
	if err := w.Scrubber.Resize(w.scrubberGeometry(mini), true); err != nil {
		return nil, errors.Wrap(err, "placing preview window")
	}
	w.Mini = newMiniChart(data, cfg, mini, easing, w.Scrubber)
	w.Main = newMainChart(data, cfg, main, easing, opts.Location, log)
	w.Main.tip.SetRange(w.Scrubber.Bounds())
	w.Main.Resize()
	w.Mini.Update(true)
	hb := w.Scrubber.Bounds()
	w.Main.Update(&hb, true)

	w.unsub = append(w.unsub, w.Scrubber.Subscribe(func(r dataset.Range) {
		w.log.Debug("visible range changed", zap.Int("first", r.First), zap.Int("last", r.Last))
		w.Main.Update(&r, false)
		w.schedule()
	}))
	w.schedule()
	return w, nil
}

// Validate rejects datasets the widget cannot draw.
func Validate(data *dataset.Chart) error {
	n := data.Len()
	switch {
	case n < 2:
		return &config.ConfigurationError{Field: "x", Reason: "need at least 2 samples"}
	case len(data.Graphs) == 0:
		return &config.ConfigurationError{Field: "graphs", Reason: "need at least one series"}
	}
	for _, g := range data.Graphs {
		if len(g.Values) != n {
			return &config.ConfigurationError{Field: g.Key, Reason: "length differs from the x axis"}
		}
	}
	return nil
}

func (w *Widget) scrubberGeometry(mini Surface) scrubber.Geometry {
	width, _ := mini.Size()
	return scrubber.Geometry{Width: width / mini.DPR(), Edge: w.edge}
}

// Close detaches the widget from the scrubber and every drag source.
func (w *Widget) Close() {
	for _, fn := range w.unsub {
		fn()
	}
	w.unsub = nil
}

// Resize picks up new surface sizes. The preview window keeps its relative
// position.
func (w *Widget) Resize() error {
	w.Main.Resize()
	if err := w.Scrubber.Resize(w.scrubberGeometry(w.Mini.surf), false); err != nil {
		return errors.Wrap(err, "resizing preview window")
	}
	w.Mini.state.Invalidate()
	w.schedule()
	return nil
}

// SetVisible shows or hides series i.
func (w *Widget) SetVisible(i int, visible bool) {
	g := w.data.Graphs[i]
	if g.Visible == visible {
		return
	}
	g.Visible = visible
	w.log.Debug("series visibility changed", zap.String("series", g.Key), zap.Bool("visible", visible))
	w.Mini.Update(false)
	w.Main.Update(nil, false)
	w.schedule()
}

func (w *Widget) Toggle(i int) {
	w.SetVisible(i, !w.data.Graphs[i].Visible)
}

// Drag forwards a preview drag to the scrubber. Positions are in device
// pixels of the mini surface; the offsets are ignored and recomputed from
// the press position.
func (w *Widget) Drag(ev drag.Event) error {
	dpr := w.Mini.surf.DPR()
	ev.X, ev.Y = ev.X/dpr, ev.Y/dpr
	ev.StartX, ev.StartY = ev.StartX/dpr, ev.StartY/dpr
	switch ev.Kind {
	case drag.Start:
		w.affordance, w.dragOffset = w.Scrubber.HitTest(ev.StartX)
		w.dragging = true
	case drag.End:
		w.dragging = false
		return nil
	}
	if !w.dragging {
		return nil
	}
	ev.OffsetX = w.dragOffset
	err := w.Scrubber.Handle(w.affordance, ev)
	w.Mini.state.Invalidate()
	w.schedule()
	return err
}

// Attach subscribes the widget to a drag source on the preview. Errors end
// the gesture and reach onError.
func (w *Widget) Attach(src drag.Source, onError func(error)) {
	w.unsub = append(w.unsub, src.Subscribe(func(ev drag.Event) {
		if err := w.Drag(ev); err != nil {
			w.dragging = false
			if onError != nil {
				onError(err)
			}
		}
	}))
}

type PointerKind uint8

const (
	MouseEnter PointerKind = iota
	MouseMove
	MouseLeave
	TouchStart
	TouchMove
	TouchEnd
)

// PointerEvent is a hover or touch over the main chart, in device pixels.
type PointerEvent struct {
	Kind PointerKind
	Time time.Time
	X, Y float64
}

// Pointer routes a hover or touch to the tooltip.
func (w *Widget) Pointer(ev PointerEvent) {
	tip := w.Main.tip
	switch ev.Kind {
	case MouseEnter:
		tip.MouseEnter(ev.Time, ev.X, ev.Y)
	case MouseMove:
		tip.MouseMove(ev.Time, ev.X, ev.Y)
	case MouseLeave:
		tip.MouseLeave()
	case TouchStart:
		tip.TouchStart(ev.Time, ev.X, ev.Y)
	case TouchMove:
		tip.TouchMove(ev.Time, ev.X, ev.Y)
	case TouchEnd:
		tip.TouchEnd(ev.Time)
	}
	w.schedule()
}

// Invalidate redraws both charts on the next tick.
func (w *Widget) Invalidate() {
	w.Main.state.Invalidate()
	w.Mini.state.Invalidate()
	w.schedule()
}

// Animating reports whether a tick is pending.
func (w *Widget) Animating() bool {
	return w.scheduled
}

func (w *Widget) schedule() {
	if w.scheduled || !(w.Main.state.HasActiveWork() || w.Mini.state.HasActiveWork()) {
		return
	}
	w.scheduled = true
	w.sched.RequestTick(w.tick)
}

func (w *Widget) tick(now time.Time) {
	w.scheduled = false
	w.Mini.state.Tick(now)
	w.Main.state.Tick(now)
	w.schedule()
}
