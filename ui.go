package main

import (
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"time"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"git.sr.ht/~whereswaldon/tickchart/backend"
	"git.sr.ht/~whereswaldon/tickchart/config"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var errorColor = color.NRGBA{R: 150, A: 255}

// pickedName labels a picked stream. It has no extension, so the format is
// told from the content.
const pickedName = "picked document"

// picked is the outcome of the native file picker. Path is empty when the
// platform hands out a stream instead of a file on disk.
type picked struct {
	path string
	file io.ReadCloser
	err  error
}

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws   backend.WindowState
	expl *explorer.Explorer
	cfg  *config.Config
	log  *zap.Logger
	loc  *time.Location

	th          *material.Theme
	loadStream  *stream.Stream[backend.Load]
	pickStream  *stream.Stream[picked]
	explorerBtn widget.Clickable
	picking     bool

	source string
	view   *ChartView
	errMsg string
}

// NewUI builds the window contents. A non-empty path is loaded and watched
// for changes.
func NewUI(ws backend.WindowState, expl *explorer.Explorer, cfg *config.Config, path string, log *zap.Logger) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	ui := &UI{
		ws:   ws,
		expl: expl,
		cfg:  cfg,
		log:  log,
		loc:  time.Local,
		th:   th,
	}
	if path != "" {
		ui.loadStream = stream.New(ws.Controller, ws.Bundle.Datasource.Watch(path))
	}
	return ui
}

// pickFile opens the native file picker the first time the stream is read.
func (ui *UI) pickFile(ctx context.Context) <-chan picked {
	out := make(chan picked, 1)
	go func() {
		defer close(out)
		f, err := ui.expl.ChooseFile(".json", ".csv")
		p := picked{file: f, err: err}
		if osFile, ok := f.(*os.File); ok {
			p.path = osFile.Name()
		}
		select {
		case out <- p:
		case <-ctx.Done():
			if f != nil {
				f.Close()
			}
		}
	}()
	return out
}

// Update the state of the UI from user input and backend streams.
func (ui *UI) Update(gtx C) {
	if !ui.picking && ui.explorerBtn.Clicked(gtx) {
		ui.picking = true
		ui.pickStream = stream.New(ui.ws.Controller, ui.pickFile)
	}
	if ui.pickStream != nil {
		if p, ok := ui.pickStream.ReadNew(gtx); ok {
			ui.picking = false
			ui.pickStream = nil
			switch {
			case errors.Is(p.err, explorer.ErrUserDecline):
			case p.err != nil:
				ui.errMsg = p.err.Error()
				ui.log.Warn("failed browsing for file", zap.Error(p.err))
			case p.path != "":
				p.file.Close()
				ui.loadStream = stream.New(ui.ws.Controller, ui.ws.Bundle.Datasource.Watch(p.path))
			default:
				ui.loadStream = stream.New(ui.ws.Controller, ui.ws.Bundle.Datasource.Open(pickedName, p.file))
			}
		}
	}
	if ui.loadStream == nil {
		return
	}
	load, ok := ui.loadStream.ReadNew(gtx)
	if !ok {
		return
	}
	if load.Err != nil {
		// Keep showing the last good chart of a watched file.
		ui.errMsg = load.Err.Error()
		return
	}
	ui.errMsg = ""
	var visible map[string]bool
	if ui.view != nil {
		if load.Source == ui.source {
			visible = ui.view.Visibility()
		}
		ui.view.Close()
	}
	ui.source = load.Source
	ui.view = NewChartView(ui.th, load.Chart, ui.cfg, visible, ui.loc, ui.log)
}

func (ui *UI) layoutToolbar(gtx C) D {
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			if ui.picking {
				gtx = gtx.Disabled()
			}
			return material.Button(ui.th, &ui.explorerBtn, "Open…").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: 8}.Layout),
		layout.Flexed(1, func(gtx C) D {
			if ui.errMsg != "" {
				l := material.Body2(ui.th, ui.errMsg)
				l.Color = errorColor
				l.MaxLines = 2
				return l.Layout(gtx)
			}
			l := material.Body2(ui.th, filepath.Base(ui.source))
			l.MaxLines = 1
			return l.Layout(gtx)
		}),
	)
}

func (ui *UI) layoutStartScreen(gtx C) D {
	msg := "No chart loaded."
	if ui.loadStream != nil {
		msg = "Loading…"
	}
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body1(ui.th, msg).Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			if ui.picking {
				gtx = gtx.Disabled()
			}
			return material.Button(ui.th, &ui.explorerBtn, "Open Chart Data").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			l := material.Body2(ui.th, ui.errMsg)
			l.Color = errorColor
			return l.Layout(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	if ui.view == nil {
		return ui.layoutStartScreen(gtx)
	}
	return layout.UniformInset(8).Layout(gtx, func(gtx C) D {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(ui.layoutToolbar),
			layout.Rigid(layout.Spacer{Height: 8}.Layout),
			layout.Flexed(1, func(gtx C) D {
				return ui.view.Layout(gtx, ui.th)
			}),
		)
	})
}
