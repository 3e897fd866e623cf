package backend

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

// headingPattern splits "Joined (#3DC23F)" into a name and a color.
var headingPattern = regexp.MustCompile(`^(.*?)\s*\((#[0-9a-fA-F]{3,8})\)$`)

// ParseCSV reads a trace whose first column holds timestamps (unix
// milliseconds, RFC 3339 or YYYY-MM-DD) and whose other columns are series.
// A heading may name the series color as "name (#rrggbb)". Empty cells repeat
// the previous sample of their series.
//
// Unless complete is set, an unterminated last line is treated as still being
// written and ignored.
func ParseCSV(r io.Reader, complete bool) (*dataset.Chart, error) {
	lines := NewLineReader(r)
	if complete {
		lines = newFlushingLineReader(r)
	}
	csvReader := csv.NewReader(lines)
	csvReader.TrimLeadingSpace = true
	headings, err := csvReader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV headings")
	}
	if len(headings) < 2 {
		return nil, &config.ConfigurationError{Field: "headings", Reason: "need a timestamp column and at least one series"}
	}
	c := &dataset.Chart{}
	for i, heading := range headings[1:] {
		heading = strings.TrimSpace(heading)
		g := &dataset.Graph{Key: heading, Name: heading, Visible: true, Color: paletteColor(i)}
		if m := headingPattern.FindStringSubmatch(heading); m != nil {
			col, err := config.ParseColor(m[2])
			if err != nil {
				return nil, &config.ConfigurationError{Field: heading, Reason: err.Error()}
			}
			g.Key, g.Name, g.Color = m[1], m[1], col
		}
		c.Graphs = append(c.Graphs, g)
	}
	for line := 2; ; line++ {
		rec, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "reading CSV record")
		}
		ts, err := parseTimestamp(rec[0])
		if err != nil {
			return nil, &config.ConfigurationError{Field: fmt.Sprintf("line %d", line), Reason: err.Error()}
		}
		c.Axis = append(c.Axis, ts)
		for i, g := range c.Graphs {
			cell := strings.TrimSpace(rec[i+1])
			if cell == "" {
				prev := 0.0
				if n := len(g.Values); n > 0 {
					prev = g.Values[n-1]
				}
				g.Values = append(g.Values, prev)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &config.ConfigurationError{Field: fmt.Sprintf("line %d, %s", line, g.Name), Reason: err.Error()}
			}
			g.Values = append(g.Values, v)
		}
	}
	return normalize(c)
}

func parseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, errors.Errorf("unrecognized timestamp %q", s)
}
