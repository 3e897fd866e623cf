// Package bounds computes the vertical extent of the main chart and the
// values and text of its horizontal grid labels.
package bounds

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

// LabelCount is the number of grid labels, including the one at zero.
const LabelCount = 6

type Bounds struct {
	Min, Max float64
	// MaxValue is the largest visible sample before inflation.
	MaxValue float64
}

// Geometry is measured in device pixels.
type Geometry struct {
	// PlotHeight is the canvas height without the top and bottom margins.
	PlotHeight float64
	// Reserve is the room the top label needs above its grid line.
	Reserve float64
}

// Vertical returns the bounds of the visible graphs over r. It reports false
// when no graph is visible.
func Vertical(graphs []*dataset.Graph, mask dataset.Mask, r dataset.Range, g Geometry) (Bounds, bool) {
	maxValue, found := math.Inf(-1), false
	for i, graph := range graphs {
		if !mask[i] {
			continue
		}
		maxValue = max(maxValue, graph.Max(r))
		found = true
	}
	if !found {
		return Bounds{}, false
	}
	const minValue = 0
	maxLabel := MaxLabel(maxValue)
	atValue := (maxValue - minValue) / g.PlotHeight
	atLabel := (maxLabel - minValue) / (g.PlotHeight - g.Reserve)
	top := maxValue
	if atValue <= atLabel {
		top = maxLabel + g.Reserve*atLabel
	}
	if top <= minValue {
		top = minValue + 1
	}
	return Bounds{Min: minValue, Max: top, MaxValue: maxValue}, true
}

// Range returns the [min,max] of the visible graphs over r without label
// inflation.
func Range(graphs []*dataset.Graph, mask dataset.Mask, r dataset.Range) (Bounds, bool) {
	b := Bounds{Min: math.Inf(1), Max: math.Inf(-1)}
	found := false
	for i, graph := range graphs {
		if !mask[i] {
			continue
		}
		b.Min = min(b.Min, graph.Min(r))
		b.Max = max(b.Max, graph.Max(r))
		found = true
	}
	if !found {
		return Bounds{}, false
	}
	if b.Max <= b.Min {
		b.Max = b.Min + 1
	}
	b.MaxValue = b.Max
	return b, true
}

// MaxLabel rounds maxValue to the nearest multiple of 10^pow*(LabelCount-1)*2,
// where pow grows with each digit past the third.
func MaxLabel(maxValue float64) float64 {
	digits := len(strconv.Itoa(int(maxValue)))
	pow := max(0, digits-3)
	k := math.Pow(10, float64(pow)) * (LabelCount - 1) * 2
	return round(maxValue/k) * k
}

// Labels spreads LabelCount values evenly from 0 to maxLabel.
func Labels(maxLabel float64) []float64 {
	step := maxLabel / (LabelCount - 1)
	out := make([]float64, LabelCount)
	for i := range out {
		out[i] = step * float64(i)
	}
	return out
}

// ValueToLabel renders a compact label: integers below 1000, otherwise the
// value scaled to a power of 1000 with its suffix and, for a single leading
// digit, one decimal digit.
func ValueToLabel(value float64, l config.Localization) string {
	if value < 1000 {
		return strconv.Itoa(int(value))
	}
	length := len(strconv.Itoa(int(value)))
	pow := (int(math.Ceil(float64(length)/3)) - 1) * 3
	var text string
	if length-pow > 1 {
		v := round(value / math.Pow(10, float64(pow)))
		if v == 1000 {
			v = 1
			pow += 3
		}
		text = strconv.Itoa(int(v))
	} else {
		v := round(value/math.Pow(10, float64(pow-1))) / 10
		text = strconv.Itoa(int(v))
		if frac := int(round(math.Mod(v, 1) * 10)); frac != 0 {
			text += l.Separator.Decimal + strconv.Itoa(frac)
		}
	}
	if len(l.Suffixes) == 0 {
		return text
	}
	return text + l.Suffixes[min(pow/3-1, len(l.Suffixes)-1)]
}

// FormatValue writes the full value with thousands grouped.
func FormatValue(value float64, sep config.Separator) string {
	text := humanize.Commaf(value)
	whole, frac, hasFrac := strings.Cut(text, ".")
	whole = strings.ReplaceAll(whole, ",", sep.Thousand)
	if !hasFrac {
		return whole
	}
	return whole + sep.Decimal + frac
}

// round rounds half up.
func round(x float64) float64 {
	return math.Floor(x + .5)
}
