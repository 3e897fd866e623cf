package bounds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

func constantGraph(n int, v float64) *dataset.Graph {
	g := &dataset.Graph{Visible: true, Values: make([]float64, n)}
	for i := range g.Values {
		g.Values[i] = v
	}
	return g
}

var testGeometry = Geometry{PlotHeight: 340, Reserve: 15/1.4 + 9}

func TestVerticalConstant(t *testing.T) {
	graphs := []*dataset.Graph{constantGraph(100, 500)}
	b, ok := Vertical(graphs, dataset.Mask{true}, dataset.Range{First: 1, Last: 98}, testGeometry)
	require.True(t, ok)
	assert.Equal(t, 0.0, b.Min)
	assert.Equal(t, 500.0, b.MaxValue)
	assert.Greater(t, b.Max, 500.0)
	assert.Equal(t, 500.0, MaxLabel(b.MaxValue))
}

func TestVerticalMask(t *testing.T) {
	graphs := []*dataset.Graph{constantGraph(10, 500), constantGraph(10, 2000)}
	r := dataset.Range{First: 0, Last: 9}

	both, ok := Vertical(graphs, dataset.Mask{true, true}, r, testGeometry)
	require.True(t, ok)
	assert.Equal(t, 2000.0, both.MaxValue)

	first, ok := Vertical(graphs, dataset.Mask{true, false}, r, testGeometry)
	require.True(t, ok)
	assert.Equal(t, 500.0, first.MaxValue)

	_, ok = Vertical(graphs, dataset.Mask{false, false}, r, testGeometry)
	assert.False(t, ok)
}

func TestVerticalOnlyVisibleRange(t *testing.T) {
	g := &dataset.Graph{Values: []float64{9000, 10, 20, 30, 9000}}
	b, ok := Vertical([]*dataset.Graph{g}, dataset.Mask{true}, dataset.Range{First: 1, Last: 3}, testGeometry)
	require.True(t, ok)
	assert.Equal(t, 30.0, b.MaxValue)
	assert.GreaterOrEqual(t, b.Max, 30.0)
}

func TestVerticalZero(t *testing.T) {
	graphs := []*dataset.Graph{constantGraph(5, 0)}
	b, ok := Vertical(graphs, dataset.Mask{true}, dataset.Range{First: 0, Last: 4}, testGeometry)
	require.True(t, ok)
	assert.Greater(t, b.Max, b.Min)
}

func TestRange(t *testing.T) {
	graphs := []*dataset.Graph{
		{Values: []float64{3, 8, 5}},
		{Values: []float64{1, 2, 12}},
	}
	b, ok := Range(graphs, dataset.Mask{true, true}, dataset.Range{First: 0, Last: 2})
	require.True(t, ok)
	assert.Equal(t, 1.0, b.Min)
	assert.Equal(t, 12.0, b.Max)

	b, ok = Range(graphs, dataset.Mask{true, false}, dataset.Range{First: 0, Last: 2})
	require.True(t, ok)
	assert.Equal(t, 3.0, b.Min)
	assert.Equal(t, 8.0, b.Max)
}

func TestMaxLabel(t *testing.T) {
	type testcase struct {
		in, expected float64
	}
	for _, tc := range []testcase{
		{in: 500, expected: 500},
		{in: 504, expected: 500},
		{in: 506, expected: 510},
		{in: 42, expected: 40},
		{in: 12345, expected: 12000},
		{in: 187_000, expected: 190_000},
		{in: 3_456_789, expected: 3_500_000},
	} {
		assert.Equal(t, tc.expected, MaxLabel(tc.in), "max label of %v", tc.in)
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	for _, v := range []float64{1, 7, 55, 500, 504, 9999, 12345, 187_000, 3_456_789} {
		labels := Labels(MaxLabel(v))
		require.Len(t, labels, LabelCount)
		assert.Equal(t, "0", ValueToLabel(labels[0], config.Default().Localization))

		graphs := []*dataset.Graph{constantGraph(3, v)}
		b, ok := Vertical(graphs, dataset.Mask{true}, dataset.Range{First: 0, Last: 2}, testGeometry)
		require.True(t, ok)
		assert.GreaterOrEqual(t, b.Max, v, "rendered max must cover %v", v)
		assert.GreaterOrEqual(t, b.Max, labels[LabelCount-1], "top label must fit under the max for %v", v)
	}
}

func TestValueToLabel(t *testing.T) {
	l := config.Default().Localization
	type testcase struct {
		in       float64
		expected string
	}
	for _, tc := range []testcase{
		{in: 0, expected: "0"},
		{in: 999, expected: "999"},
		{in: 1000, expected: "1K"},
		{in: 1050, expected: "1.1K"},
		{in: 1500, expected: "1.5K"},
		{in: 12345, expected: "12K"},
		{in: 999_999, expected: "1M"},
		{in: 2_000_000, expected: "2M"},
		{in: 1_250_000_000, expected: "1.3G"},
		{in: 4_000_000_000_000, expected: "4T"},
	} {
		assert.Equal(t, tc.expected, ValueToLabel(tc.in, l), "label of %v", tc.in)
	}

	l.Separator.Decimal = ","
	assert.Equal(t, "1,5K", ValueToLabel(1500, l))
}

func TestFormatValue(t *testing.T) {
	sep := config.Default().Localization.Separator
	assert.Equal(t, "999", FormatValue(999, sep))
	assert.Equal(t, "1 234 567", FormatValue(1234567, sep))
	assert.Equal(t, "1 234.5", FormatValue(1234.5, sep))
	assert.Equal(t, "1.234,5", FormatValue(1234.5, config.Separator{Thousand: ".", Decimal: ","}))
}
