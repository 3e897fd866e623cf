package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

const (
	typeAxis = "x"
	typeLine = "line"
)

// telegramChart is the column-oriented chart format:
//
//	{
//	  "columns": [["x", 1542412800000, ...], ["y0", 37, ...]],
//	  "types":   {"x": "x", "y0": "line"},
//	  "names":   {"y0": "Joined"},
//	  "colors":  {"y0": "#3DC23F"}
//	}
type telegramChart struct {
	Columns [][]any           `json:"columns"`
	Types   map[string]string `json:"types"`
	Names   map[string]string `json:"names"`
	Colors  map[string]string `json:"colors"`
}

// ParseJSON decodes one chart. The input holds either a single chart object
// or an array of them, in which case index selects one.
func ParseJSON(r io.Reader, index int) (*dataset.Chart, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding chart data")
	}
	charts := []json.RawMessage{raw}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		charts = nil
		if err := json.Unmarshal(raw, &charts); err != nil {
			return nil, errors.Wrap(err, "decoding chart list")
		}
	}
	if index < 0 || index >= len(charts) {
		return nil, &config.ConfigurationError{
			Field:  "chart",
			Reason: fmt.Sprintf("index %d is outside the %d charts in the input", index, len(charts)),
		}
	}
	var tc telegramChart
	dec := json.NewDecoder(bytes.NewReader(charts[index]))
	dec.UseNumber()
	if err := dec.Decode(&tc); err != nil {
		return nil, errors.Wrapf(err, "decoding chart %d", index)
	}
	return tc.chart()
}

func (tc *telegramChart) chart() (*dataset.Chart, error) {
	var (
		axis    []int64
		hasAxis bool
		graphs  []*dataset.Graph
	)
	for i, col := range tc.Columns {
		if len(col) == 0 {
			return nil, &config.ConfigurationError{Field: fmt.Sprintf("columns[%d]", i), Reason: "empty column"}
		}
		id, ok := col[0].(string)
		if !ok {
			return nil, &config.ConfigurationError{Field: fmt.Sprintf("columns[%d]", i), Reason: "first entry must be the column id"}
		}
		switch kind := tc.Types[id]; kind {
		case typeAxis:
			if hasAxis {
				return nil, &config.ConfigurationError{Field: id, Reason: "second x column"}
			}
			values, err := numbers(id, col[1:])
			if err != nil {
				return nil, err
			}
			axis = make([]int64, len(values))
			for j, v := range values {
				axis[j] = int64(v)
			}
			hasAxis = true
		case typeLine, "":
			values, err := numbers(id, col[1:])
			if err != nil {
				return nil, err
			}
			g := &dataset.Graph{
				Key:     id,
				Name:    id,
				Values:  values,
				Visible: true,
				Color:   paletteColor(len(graphs)),
			}
			if name, ok := tc.Names[id]; ok {
				g.Name = name
			}
			if hex, ok := tc.Colors[id]; ok {
				c, err := config.ParseColor(hex)
				if err != nil {
					return nil, &config.ConfigurationError{Field: "colors." + id, Reason: err.Error()}
				}
				g.Color = c
			}
			graphs = append(graphs, g)
		default:
			return nil, &config.ConfigurationError{Field: "types." + id, Reason: fmt.Sprintf("unsupported chart type %q", kind)}
		}
	}
	if !hasAxis {
		return nil, &config.ConfigurationError{Field: typeAxis, Reason: "no column of type x"}
	}
	return normalize(&dataset.Chart{Axis: axis, Graphs: graphs})
}

func numbers(id string, raw []any) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, v := range raw {
		n, ok := v.(json.Number)
		if !ok {
			return nil, &config.ConfigurationError{Field: fmt.Sprintf("%s[%d]", id, i), Reason: fmt.Sprintf("%v is not a number", v)}
		}
		f, err := n.Float64()
		if err != nil {
			return nil, &config.ConfigurationError{Field: fmt.Sprintf("%s[%d]", id, i), Reason: err.Error()}
		}
		out[i] = f
	}
	return out, nil
}
