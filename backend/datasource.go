package backend

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

// DefaultSettle is how long a file must stay quiet after a write before it
// is reloaded.
const DefaultSettle = 150 * time.Millisecond

// Load is one attempt at reading a chart.
type Load struct {
	// Source names the file or picked document.
	Source string
	Chart  *dataset.Chart
	Err    error
	// Generation counts the loads of Source, starting at 1.
	Generation int
}

type Options struct {
	// Index selects a chart when the input holds several.
	Index  int
	Logger *zap.Logger
	Settle time.Duration
}

type Datasource struct {
	index  int
	settle time.Duration
	log    *zap.Logger
}

func NewDatasource(opts Options) *Datasource {
	d := &Datasource{
		index:  opts.Index,
		settle: opts.Settle,
		log:    opts.Logger,
	}
	if d.settle <= 0 {
		d.settle = DefaultSettle
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	return d
}

// Watch returns a stream provider that loads path, then loads it again each
// time it is written. The stream ends when its context does.
func (d *Datasource) Watch(path string) func(ctx context.Context) <-chan Load {
	path = filepath.Clean(path)
	return func(ctx context.Context) <-chan Load {
		out := make(chan Load, 1)
		go func() {
			defer close(out)
			generation := 0
			emit := func() bool {
				generation++
				chart, err := d.loadFile(path)
				d.report(path, generation, err)
				select {
				case out <- Load{Source: path, Chart: chart, Err: err, Generation: generation}:
					return true
				case <-ctx.Done():
					return false
				}
			}
			watcher, err := d.watch(path)
			if err != nil {
				d.log.Warn("live reload disabled", zap.String("path", path), zap.Error(err))
				emit()
				return
			}
			defer watcher.Close()
			if !emit() {
				return
			}
			var settled <-chan time.Time
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-watcher.Events:
					if !ok {
						return
					}
					if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
						continue
					}
					settled = time.After(d.settle)
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					d.log.Warn("file watcher failed", zap.Error(err))
				case <-settled:
					settled = nil
					if !emit() {
						return
					}
				}
			}
		}()
		return out
	}
}

// Open returns a stream provider that reads r once, however often the
// stream restarts. The reader is closed after the read.
func (d *Datasource) Open(name string, r io.ReadCloser) func(ctx context.Context) <-chan Load {
	var (
		once  sync.Once
		chart *dataset.Chart
		err   error
	)
	read := func() {
		chart, err = Parse(name, r, d.index)
		err = errors.Wrapf(err, "loading %q", name)
		if cerr := r.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "closing %q", name)
		}
		d.report(name, 1, err)
	}
	return func(ctx context.Context) <-chan Load {
		out := make(chan Load, 1)
		go func() {
			defer close(out)
			once.Do(read)
			select {
			case out <- Load{Source: name, Chart: chart, Err: err, Generation: 1}:
			case <-ctx.Done():
			}
		}()
		return out
	}
}

// watch starts watching the directory of path. Editors often replace files
// instead of writing them, so events are filtered by name later.
func (d *Datasource) watch(path string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watching %q", filepath.Dir(path))
	}
	return watcher, nil
}

// loadFile reads a watched file, which may still be half written: a CSV
// row without its line break waits for the next reload.
func (d *Datasource) loadFile(path string) (*dataset.Chart, error) {
	return loadFile(path, d.index, false)
}

func (d *Datasource) report(source string, generation int, err error) {
	if err != nil {
		d.log.Error("chart data not loaded", zap.String("source", source), zap.Int("generation", generation), zap.Error(err))
		return
	}
	d.log.Info("chart data loaded", zap.String("source", source), zap.Int("generation", generation))
}
