package backend

import (
	"context"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
)

// WindowState is the per-window view of the shared backend.
type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Bundle holds the backend services shared by every window.
type Bundle struct {
	Datasource *Datasource
}

func NewBundle(opts Options) Bundle {
	return Bundle{
		Datasource: NewDatasource(opts),
	}
}
