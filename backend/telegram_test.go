package backend

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~whereswaldon/tickchart/config"
)

const twoCharts = `[
  {
    "columns": [["x", 1, 2, 3], ["y0", 10, 20, 30], ["y1", 5, 4, 3]],
    "types": {"x": "x", "y0": "line", "y1": "line"},
    "names": {"y0": "Joined", "y1": "Left"},
    "colors": {"y0": "#3DC23F", "y1": "#F34C44"}
  },
  {
    "columns": [["x", 30, 20, 10], ["y0", 1, 2, 3]],
    "types": {"x": "x", "y0": "line"}
  }
]`

func TestParseJSON(t *testing.T) {
	c, err := ParseJSON(strings.NewReader(twoCharts), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, c.Axis)
	require.Len(t, c.Graphs, 2)
	assert.Equal(t, "y0", c.Graphs[0].Key)
	assert.Equal(t, "Joined", c.Graphs[0].Name)
	assert.Equal(t, color.NRGBA{R: 0x3d, G: 0xc2, B: 0x3f, A: 0xff}, c.Graphs[0].Color)
	assert.Equal(t, []float64{10, 20, 30}, c.Graphs[0].Values)
	assert.True(t, c.Graphs[1].Visible)
}

func TestParseJSONReversesDescendingAxis(t *testing.T) {
	c, err := ParseJSON(strings.NewReader(twoCharts), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, c.Axis)
	assert.Equal(t, []float64{3, 2, 1}, c.Graphs[0].Values)
	// Unnamed series fall back to their key and a palette color.
	assert.Equal(t, "y0", c.Graphs[0].Name)
	assert.Equal(t, paletteColor(0), c.Graphs[0].Color)
}

func TestParseJSONSingleObject(t *testing.T) {
	c, err := ParseJSON(strings.NewReader(`{"columns": [["x", 1, 2], ["a", 1, 1]], "types": {"x": "x", "a": "line"}}`), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestParseJSONErrors(t *testing.T) {
	type testcase struct {
		name  string
		input string
		index int
	}
	for _, tc := range []testcase{
		{name: "index out of range", input: twoCharts, index: 2},
		{name: "negative index", input: twoCharts, index: -1},
		{name: "no x column", input: `{"columns": [["a", 1, 2]], "types": {"a": "line"}}`},
		{name: "second x column", input: `{"columns": [["x", 1, 2], ["t", 1, 2]], "types": {"x": "x", "t": "x"}}`},
		{name: "unsupported type", input: `{"columns": [["x", 1, 2], ["a", 1, 2]], "types": {"x": "x", "a": "bar"}}`},
		{name: "empty column", input: `{"columns": [[], ["x", 1, 2]], "types": {"x": "x"}}`},
		{name: "numeric id", input: `{"columns": [[1, 2]], "types": {}}`},
		{name: "string sample", input: `{"columns": [["x", 1, 2], ["a", 1, "b"]], "types": {"x": "x", "a": "line"}}`},
		{name: "bad color", input: `{"columns": [["x", 1, 2], ["a", 1, 2]], "types": {"x": "x", "a": "line"}, "colors": {"a": "blue"}}`},
		{name: "ragged series", input: `{"columns": [["x", 1, 2, 3], ["a", 1, 2]], "types": {"x": "x", "a": "line"}}`},
		{name: "single sample", input: `{"columns": [["x", 1], ["a", 1]], "types": {"x": "x", "a": "line"}}`},
		{name: "repeated timestamp", input: `{"columns": [["x", 1, 1, 2], ["a", 1, 2, 3]], "types": {"x": "x", "a": "line"}}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON(strings.NewReader(tc.input), tc.index)
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrConfiguration)
		})
	}
}

func TestParseJSONSyntaxError(t *testing.T) {
	_, err := ParseJSON(strings.NewReader(`{"columns": `), 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrConfiguration)
}
