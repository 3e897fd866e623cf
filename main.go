// Command tickchart shows time-series chart data with an animated, zoomable
// chart and renders the same chart to PNG.
package main

import (
	"context"
	"os"
	"strings"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"git.sr.ht/~whereswaldon/tickchart/backend"
	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/snapshot"
)

const envPrefix = "TICKCHART"

// envKeys can be set from the environment, as in TICKCHART_FX_EASING.
var envKeys = []string{
	"fx.duration",
	"fx.easing",
	"font.family",
	"font.size",
	"columns.min",
	"columns.max",
	"chart.tails",
	"preview.height",
}

// settings is shared by every subcommand.
type settings struct {
	v       *viper.Viper
	cfgPath string
	verbose bool
	log     *zap.Logger
	cfg     *config.Config
}

func (s *settings) load() error {
	log, err := newLogger(s.verbose)
	if err != nil {
		return err
	}
	s.log = log
	s.v.SetEnvPrefix(envPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	s.v.AutomaticEnv()
	for _, key := range envKeys {
		if err := s.v.BindEnv(key); err != nil {
			return errors.Wrapf(err, "binding %s", key)
		}
	}
	if s.cfgPath != "" {
		s.v.SetConfigFile(s.cfgPath)
		if err := s.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config %q", s.cfgPath)
		}
		s.log.Debug("configuration loaded", zap.String("path", s.v.ConfigFileUsed()))
	}
	s.cfg, err = config.Load(s.v)
	return err
}

// chartIndex selects a chart from a multi-chart input.
func (s *settings) chartIndex() int {
	return s.v.GetInt("input.chart")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	build := zap.NewProduction
	if verbose {
		build = zap.NewDevelopment
	}
	log, err := build()
	return log, errors.Wrap(err, "building logger")
}

func newRootCmd() *cobra.Command {
	s := &settings{v: viper.New()}
	view := newViewCmd(s)
	cmd := &cobra.Command{
		Use:           "tickchart [file]",
		Short:         "Explore time-series chart data",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return s.load()
		},
		RunE: view.RunE,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&s.cfgPath, "config", "", "configuration file (YAML, JSON or TOML)")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "log debug output")
	flags.Int("chart", 0, "index of the chart when the input holds several")
	_ = s.v.BindPFlag("input.chart", flags.Lookup("chart"))
	cmd.AddCommand(view, newSnapshotCmd(s))
	return cmd
}

func newViewCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "view [file]",
		Short: "Open the chart in a window, reloading the file when it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			bundle := backend.NewBundle(backend.Options{
				Index:  s.chartIndex(),
				Logger: s.log,
			})
			go func() {
				w := app.NewWindow(app.Title("tickchart"), app.Size(unit.Dp(720), unit.Dp(640)))
				if err := loop(w, bundle, s.cfg, path, s.log); err != nil {
					s.log.Error("window closed with error", zap.Error(err))
					os.Exit(1)
				}
				_ = s.log.Sync()
				os.Exit(0)
			}()
			app.Main()
			return nil
		},
	}
}

func newSnapshotCmd(s *settings) *cobra.Command {
	var (
		output        string
		width, height int
		start, end    int
		hover         int
		dpr           float64
		utc           bool
	)
	cmd := &cobra.Command{
		Use:   "snapshot file",
		Short: "Render the chart with every animation settled into a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := backend.LoadFile(args[0], s.chartIndex())
			if err != nil {
				return err
			}
			cfg := *s.cfg
			if cmd.Flags().Changed("start") {
				cfg.Columns.Start = start
			}
			if cmd.Flags().Changed("end") {
				cfg.Columns.End = end
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			loc := time.Local
			if utc {
				loc = time.UTC
			}
			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "creating snapshot")
			}
			defer f.Close()
			if err := snapshot.Render(data, &cfg, snapshot.Options{
				Width:    width,
				Height:   height,
				DPR:      dpr,
				Hover:    hover,
				Location: loc,
				Logger:   s.log,
			}, f); err != nil {
				return err
			}
			s.log.Info("snapshot written", zap.String("path", output))
			return errors.Wrap(f.Close(), "writing snapshot")
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "chart.png", "PNG file to write")
	flags.IntVar(&width, "width", 600, "chart width in CSS pixels")
	flags.IntVar(&height, "height", 400, "main chart height in CSS pixels")
	flags.IntVar(&start, "start", 0, "newest visible sample, counted back from the last one")
	flags.IntVar(&end, "end", 0, "oldest visible sample, counted back from the last one")
	flags.IntVar(&hover, "hover", snapshot.NoHover, "sample to show the tooltip for, counted back from the last one")
	flags.Float64Var(&dpr, "dpr", 1, "device pixel ratio")
	flags.BoolVar(&utc, "utc", false, "label dates in UTC instead of local time")
	return cmd
}

func loop(w *app.Window, bundle backend.Bundle, cfg *config.Config, path string, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws := backend.NewWindowState(ctx, bundle, w)
	expl := explorer.NewExplorer(w)
	ui := NewUI(ws, expl, cfg, path, log)
	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
			ws.Controller.Sweep()
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if log, lerr := newLogger(false); lerr == nil {
			log.Error("tickchart failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
