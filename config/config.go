// Package config describes every tunable of the chart widget.
package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	// Visible overrides the initial visibility of series by key.
	Visible      map[string]bool `mapstructure:"visible"`
	FX           FX              `mapstructure:"fx"`
	Localization Localization    `mapstructure:"localization"`
	Font         Font            `mapstructure:"font"`
	Columns      Columns         `mapstructure:"columns"`
	Chart        Chart           `mapstructure:"chart"`
	Preview      Preview         `mapstructure:"preview"`
	Tooltip      Tooltip         `mapstructure:"tooltip"`
}

type FX struct {
	Duration time.Duration `mapstructure:"duration"`
	Easing   string        `mapstructure:"easing"`
}

type Separator struct {
	Decimal  string `mapstructure:"decimal"`
	Thousand string `mapstructure:"thousand"`
}

type Localization struct {
	Days      []string  `mapstructure:"days"`
	Months    []string  `mapstructure:"months"`
	Separator Separator `mapstructure:"separator"`
	Suffixes  []string  `mapstructure:"suffixes"`
}

type Font struct {
	Family string `mapstructure:"family"`
	// Size is in CSS pixels.
	Size float64 `mapstructure:"size"`
	// HLetter is the cap height as a fraction of Size.
	HLetter float64 `mapstructure:"hLetter"`
	Weight  int     `mapstructure:"weight"`
	Color   Color   `mapstructure:"color"`
}

// Columns bounds the number of samples visible in the main chart. Zero End
// and Max mean "not set".
type Columns struct {
	Start    int     `mapstructure:"start"`
	End      int     `mapstructure:"end"`
	Min      int     `mapstructure:"min"`
	Max      int     `mapstructure:"max"`
	Adaptive float64 `mapstructure:"adaptive"`
}

type ChartColor struct {
	HLine      Color `mapstructure:"hLine"`
	VLine      Color `mapstructure:"vLine"`
	Background Color `mapstructure:"background"`
}

type Thickness struct {
	Graph float64 `mapstructure:"graph"`
	Grid  float64 `mapstructure:"grid"`
}

type Margin struct {
	Top    float64 `mapstructure:"top"`
	Bottom float64 `mapstructure:"bottom"`
	Left   float64 `mapstructure:"left"`
	Right  float64 `mapstructure:"right"`
}

type LabelVOffset struct {
	Left   float64 `mapstructure:"left"`
	Bottom float64 `mapstructure:"bottom"`
}

type Chart struct {
	Color        ChartColor   `mapstructure:"color"`
	Thickness    Thickness    `mapstructure:"thickness"`
	Margin       Margin       `mapstructure:"margin"`
	LabelVOffset LabelVOffset `mapstructure:"labelVOffset"`
	Tails        bool         `mapstructure:"tails"`
}

type Preview struct {
	Thickness float64 `mapstructure:"thickness"`
	Margin    float64 `mapstructure:"margin"`
	Height    float64 `mapstructure:"height"`
	Shade     Color   `mapstructure:"shade"`
	Handle    Color   `mapstructure:"handle"`
}

type Tooltip struct {
	CrossingRadius float64 `mapstructure:"crossingRadius"`
	Offset         float64 `mapstructure:"offset"`
}

func Default() *Config {
	return &Config{
		FX: FX{
			Duration: 350 * time.Millisecond,
			Easing:   "easeOutQuad",
		},
		Localization: Localization{
			Days:      []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
			Months:    []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
			Separator: Separator{Decimal: ".", Thousand: " "},
			Suffixes:  []string{"K", "M", "G", "T"},
		},
		Font: Font{
			Family:  "Arial",
			Size:    15,
			HLetter: 1 / 1.4,
			Weight:  400,
			Color:   mustColor("#697d8cb2"),
		},
		Columns: Columns{
			Min:      13,
			Adaptive: 606,
		},
		Chart: Chart{
			Color: ChartColor{
				HLine:      mustColor("#61788514"),
				VLine:      mustColor("#809baf40"),
				Background: mustColor("#ffffff"),
			},
			Thickness:    Thickness{Graph: 3, Grid: 1.5},
			Margin:       Margin{Top: 32, Bottom: 28, Left: 16, Right: 16},
			LabelVOffset: LabelVOffset{Left: 9, Bottom: 9},
			Tails:        true,
		},
		Preview: Preview{
			Thickness: 1.5,
			Margin:    5,
			Height:    48,
			Shade:     mustColor("#f5f9fbcc"),
			Handle:    mustColor("#c0d1e1"),
		},
		Tooltip: Tooltip{
			CrossingRadius: 6,
			Offset:         37,
		},
	}
}

// Load decodes the settings known to v on top of Default and validates the
// result.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)), replaceCollections); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// replaceCollections makes configured slices and maps replace the defaults
// instead of being merged element by element.
func replaceCollections(dc *mapstructure.DecoderConfig) {
	dc.ZeroFields = true
}

// LoadFile reads a configuration file. An empty path yields the defaults.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %q", path)
		}
	}
	return Load(v)
}

// ErrConfiguration is matched by every ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a setting or input the widget cannot render with.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (c *Config) Validate() error {
	invalid := func(field, reason string) error {
		return &ConfigurationError{Field: field, Reason: reason}
	}
	switch {
	case c.FX.Duration < 0:
		return invalid("fx.duration", "must not be negative")
	case len(c.Localization.Days) != 7:
		return invalid("localization.days", "need 7 names")
	case len(c.Localization.Months) != 12:
		return invalid("localization.months", "need 12 names")
	case len(c.Localization.Suffixes) < 4:
		return invalid("localization.suffixes", "need 4 magnitude suffixes")
	case c.Font.Size <= 0:
		return invalid("font.size", "must be positive")
	case c.Font.HLetter <= 0:
		return invalid("font.hLetter", "must be positive")
	case c.Columns.Min < 2:
		return invalid("columns.min", "must be at least 2")
	case c.Columns.Start < 0 || c.Columns.End < 0:
		return invalid("columns", "start and end must not be negative")
	case c.Columns.Adaptive < 0:
		return invalid("columns.adaptive", "must not be negative")
	case c.Chart.Thickness.Graph <= 0 || c.Chart.Thickness.Grid <= 0:
		return invalid("chart.thickness", "must be positive")
	case c.Preview.Height <= 2*c.Preview.Margin:
		return invalid("preview.height", "must exceed twice the preview margin")
	}
	return nil
}

// IsVisible reports the initial visibility of the series with the given key.
func (c *Config) IsVisible(key string) bool {
	v, ok := c.Visible[key]
	if !ok {
		// viper lower-cases map keys.
		v, ok = c.Visible[strings.ToLower(key)]
	}
	return !ok || v
}

// DevicePixelRatio caps the platform ratio at 2.
func DevicePixelRatio(platform float64) float64 {
	if platform <= 0 {
		return 1
	}
	return min(2, platform)
}

// Color decodes from "#rgb", "#rrggbb" or "#rrggbbaa".
type Color color.NRGBA

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA(c)
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = Color(parsed)
	return nil
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)), nil
}

func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(0xff)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, errors.Wrapf(err, "parsing alpha of %q", s)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "parsing color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func mustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return Color(c)
}
