package main

import (
	"image"
	"time"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~whereswaldon/tickchart/bounds"
	"git.sr.ht/~whereswaldon/tickchart/chart"
	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
	"git.sr.ht/~whereswaldon/tickchart/drag"
)

var checkedIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ToggleCheckBox)
	return icon
}()

var uncheckedIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.ToggleCheckBoxOutlineBlank)
	return icon
}()

// ChartView hosts a chart.Widget inside a Gio window: the main chart, the
// preview underneath it and a legend to toggle series.
type ChartView struct {
	data *dataset.Chart
	cfg  *config.Config
	log  *zap.Logger
	loc  *time.Location

	widget     *chart.Widget
	main, mini *gioSurface
	sched      chart.ManualScheduler
	tracker    drag.Tracker
	err        error

	enabled  []widget.Bool
	keyTable component.GridState
}

// NewChartView shows data. Series listed in visible keep the visibility they
// had in a previous view.
func NewChartView(th *material.Theme, data *dataset.Chart, cfg *config.Config, visible map[string]bool, loc *time.Location, log *zap.Logger) *ChartView {
	c := *cfg
	c.Visible = maps.Clone(cfg.Visible)
	if c.Visible == nil {
		c.Visible = make(map[string]bool)
	}
	maps.Copy(c.Visible, visible)
	v := &ChartView{
		data:    data,
		cfg:     &c,
		log:     log,
		loc:     loc,
		main:    newGioSurface(th),
		mini:    newGioSurface(th),
		enabled: make([]widget.Bool, len(data.Graphs)),
	}
	for i, g := range data.Graphs {
		v.enabled[i].Value = c.IsVisible(g.Key)
	}
	return v
}

// Visibility reports the current visibility of every series by key.
func (v *ChartView) Visibility() map[string]bool {
	out := make(map[string]bool, len(v.data.Graphs))
	for i, g := range v.data.Graphs {
		out[g.Key] = v.enabled[i].Value
	}
	return out
}

func (v *ChartView) Close() {
	if v.widget != nil {
		v.widget.Close()
	}
}

// resize builds the widget once both surfaces have a size, and forwards later
// size changes to it.
func (v *ChartView) resize(mainSize, miniSize image.Point, dpr float64) error {
	if mainSize.X <= 0 || mainSize.Y <= 0 || miniSize.Y <= 0 {
		return nil
	}
	changed := v.main.SetSize(mainSize, dpr)
	changed = v.mini.SetSize(miniSize, dpr) || changed
	if v.widget == nil {
		w, err := chart.New(v.data, v.cfg, v.main, v.mini, &v.sched, chart.Options{
			Logger:   v.log,
			Location: v.loc,
		})
		if err != nil {
			return errors.Wrap(err, "building chart")
		}
		w.Attach(&v.tracker, func(err error) {
			v.log.Warn("preview drag failed", zap.Error(err))
		})
		v.widget = w
		return nil
	}
	if changed {
		return v.widget.Resize()
	}
	return nil
}

func (v *ChartView) Update(gtx C) {
	if v.widget == nil {
		return
	}
	for i := range v.enabled {
		if v.enabled[i].Update(gtx) {
			v.widget.SetVisible(i, v.enabled[i].Value)
		}
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: v.main,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move | pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		if ev, ok := ev.(pointer.Event); ok {
			v.hover(gtx.Now, ev)
		}
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: v.mini,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		if ev, ok := ev.(pointer.Event); ok {
			v.drag(ev)
		}
	}
}

// hover maps mouse and touch input over the main chart to tooltip events.
func (v *ChartView) hover(now time.Time, ev pointer.Event) {
	pe := chart.PointerEvent{Time: now, X: float64(ev.Position.X), Y: float64(ev.Position.Y)}
	if ev.Source == pointer.Touch {
		switch ev.Kind {
		case pointer.Press:
			pe.Kind = chart.TouchStart
		case pointer.Drag:
			pe.Kind = chart.TouchMove
		case pointer.Release, pointer.Cancel:
			pe.Kind = chart.TouchEnd
		default:
			return
		}
	} else {
		switch ev.Kind {
		case pointer.Enter:
			pe.Kind = chart.MouseEnter
		case pointer.Move, pointer.Drag:
			pe.Kind = chart.MouseMove
		case pointer.Leave, pointer.Cancel:
			pe.Kind = chart.MouseLeave
		default:
			return
		}
	}
	v.widget.Pointer(pe)
}

func (v *ChartView) drag(ev pointer.Event) {
	p := drag.Pointer{
		ID:      int(ev.PointerID),
		X:       float64(ev.Position.X),
		Y:       float64(ev.Position.Y),
		Primary: ev.Source == pointer.Touch || ev.Buttons.Contain(pointer.ButtonPrimary),
	}
	switch ev.Kind {
	case pointer.Press:
		v.tracker.Press(p, 0, 0)
	case pointer.Drag:
		v.tracker.Move(p)
	case pointer.Release:
		v.tracker.Release(p)
	case pointer.Cancel:
		v.tracker.Cancel()
	}
}

func (v *ChartView) Layout(gtx C, th *material.Theme) D {
	v.Update(gtx)

	// Determine the space occupied by the legend.
	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Pt(gtx.Constraints.Max.X, 0)
	keyDims, keyCall := rec(gtx, func(gtx C) D {
		return v.layoutLegend(gtx, th)
	})
	gtx.Constraints = origConstraints

	dpr := config.DevicePixelRatio(float64(gtx.Metric.PxPerDp))
	previewHeight := gtx.Dp(unit.Dp(v.cfg.Preview.Height))
	gap := gtx.Dp(8)
	mainSize := image.Pt(gtx.Constraints.Max.X, gtx.Constraints.Max.Y-keyDims.Size.Y-previewHeight-2*gap)
	miniSize := image.Pt(gtx.Constraints.Max.X, previewHeight)
	if err := v.resize(mainSize, miniSize, dpr); err != nil && v.err == nil {
		v.log.Error("chart unavailable", zap.Error(err))
		v.err = err
	}
	if v.err != nil {
		l := material.Body1(th, v.err.Error())
		l.Color = errorColor
		return l.Layout(gtx)
	}

	v.sched.Run(gtx.Now)
	if v.sched.Pending() {
		gtx.Execute(op.InvalidateCmd{})
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return v.layoutSurface(gtx, v.main, pointer.CursorDefault)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx C) D {
			return v.layoutSurface(gtx, v.mini, pointer.CursorGrab)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx C) D {
			keyCall.Add(gtx.Ops)
			return keyDims
		}),
	)
}

func (v *ChartView) layoutSurface(gtx C, s *gioSurface, cursor pointer.Cursor) D {
	dims := s.Layout(gtx)
	defer clip.Rect{Max: dims.Size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, s)
	cursor.Add(gtx.Ops)
	return dims
}

func (v *ChartView) layoutLegend(gtx C, th *material.Theme) D {
	table := component.Table(th, &v.keyTable)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	toggleColWidth := gtx.Dp(40)
	valueColWidth := gtx.Dp(100)
	nameColWidth := gtx.Constraints.Max.X - toggleColWidth - valueColWidth - gtx.Dp(table.VScrollbarStyle.Width())
	rowHeight := gtx.Sp(24)
	const (
		toggleCol = iota
		nameCol
		latestCol
		numCols
	)
	rows := len(v.data.Graphs)
	gtx.Constraints.Max.Y = min(gtx.Constraints.Max.Y, rowHeight*(rows+1))
	last := v.data.Len() - 1
	return table.Layout(gtx, rows, numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}
			var size int
			switch index {
			case toggleCol:
				size = toggleColWidth
			case nameCol:
				size = nameColWidth
			case latestCol:
				size = valueColWidth
			}
			return min(size, constraint)
		},
		func(gtx C, index int) D {
			var l material.LabelStyle
			switch index {
			case toggleCol:
				l = material.Body1(th, "")
			case nameCol:
				l = material.Body1(th, "Series")
			case latestCol:
				l = material.Body1(th, "Latest")
				l.Alignment = text.End
			}
			l.Color = th.ContrastFg
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Max}.Op())
					return D{Size: gtx.Constraints.Min}
				}, l.Layout,
			)
		},
		func(gtx C, row, col int) (dims D) {
			defer func() {
				dims.Size = gtx.Constraints.Constrain(dims.Size)
			}()
			g := v.data.Graphs[row]
			enabled := v.enabled[row].Value
			disabledAlpha := uint8(100)
			return layout.UniformInset(2).Layout(gtx, func(gtx C) D {
				switch col {
				case toggleCol:
					return v.enabled[row].Layout(gtx, func(gtx C) D {
						return layout.Center.Layout(gtx, func(gtx C) D {
							icon := checkedIcon
							if !enabled {
								icon = uncheckedIcon
							}
							gtx.Constraints.Min = image.Point{}
							gtx.Constraints.Max.X = gtx.Sp(20)
							return icon.Layout(gtx, g.Color)
						})
					})
				case nameCol:
					l := material.Body2(th, g.Name)
					if !enabled {
						l.Color.A = disabledAlpha
					}
					return l.Layout(gtx)
				case latestCol:
					l := material.Body2(th, bounds.ValueToLabel(g.Values[last], v.cfg.Localization))
					if !enabled {
						l.Color.A = disabledAlpha
					}
					l.Alignment = text.End
					return l.Layout(gtx)
				default:
					return D{Size: gtx.Constraints.Max}
				}
			})
		})
}

func rec(gtx C, w layout.Widget) (D, op.CallOp) {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	return dims, call
}
