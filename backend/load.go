// Package backend loads chart data from JSON and CSV files and delivers it to
// the UI as a stream that follows changes on disk.
package backend

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"git.sr.ht/~whereswaldon/tickchart/config"
	"git.sr.ht/~whereswaldon/tickchart/dataset"
)

// Parse decodes r according to the extension of name. Without a .csv or
// .json extension, input starting with '{' or '[' is read as JSON and
// anything else as CSV.
func Parse(name string, r io.Reader, index int) (*dataset.Chart, error) {
	return parse(name, r, index, true)
}

func parse(name string, r io.Reader, index int, complete bool) (*dataset.Chart, error) {
	switch ext := filepath.Ext(name); {
	case strings.EqualFold(ext, ".csv"):
		return ParseCSV(r, complete)
	case strings.EqualFold(ext, ".json"):
		return ParseJSON(r, index)
	}
	br := bufio.NewReader(r)
	if looksLikeJSON(br) {
		return ParseJSON(br, index)
	}
	return ParseCSV(br, complete)
}

// looksLikeJSON peeks at the first byte that is not white space.
func looksLikeJSON(br *bufio.Reader) bool {
	for n := 1; ; n++ {
		buf, err := br.Peek(n)
		if len(buf) < n {
			return false
		}
		switch buf[n-1] {
		case ' ', '\t', '\r', '\n':
			if err != nil {
				return false
			}
			continue
		case '{', '[':
			return true
		}
		return false
	}
}

// LoadFile reads a complete chart file.
func LoadFile(path string, index int) (*dataset.Chart, error) {
	return loadFile(path, index, true)
}

func loadFile(path string, index int, complete bool) (*dataset.Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer f.Close()
	c, err := parse(path, f, index, complete)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", path)
	}
	return c, nil
}

// normalize checks that every series matches the axis and puts the samples
// in oldest-first order.
func normalize(c *dataset.Chart) (*dataset.Chart, error) {
	n := len(c.Axis)
	if n < 2 {
		return nil, &config.ConfigurationError{Field: "x", Reason: "need at least 2 samples"}
	}
	if len(c.Graphs) == 0 {
		return nil, &config.ConfigurationError{Field: "columns", Reason: "no series to plot"}
	}
	for _, g := range c.Graphs {
		if len(g.Values) != n {
			return nil, &config.ConfigurationError{Field: g.Key, Reason: "length differs from the x axis"}
		}
	}
	if c.Axis[0] > c.Axis[n-1] {
		slices.Reverse(c.Axis)
		for _, g := range c.Graphs {
			slices.Reverse(g.Values)
		}
	}
	for i := 1; i < n; i++ {
		if c.Axis[i] <= c.Axis[i-1] {
			return nil, &config.ConfigurationError{Field: "x", Reason: "timestamps must be strictly monotonic"}
		}
	}
	return c, nil
}
