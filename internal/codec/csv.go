package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blcsview/internal/frame"
	"blcsview/internal/loaded"
)

var errEmptyCSV = errors.New("csv has no header row")

// decodeCSV reads a header row and infers each column's type: time, then
// int, then float, falling back to string.
func decodeCSV(data []byte) (loaded.LoadedFrame, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return loaded.LoadedFrame{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return loaded.LoadedFrame{}, errEmptyCSV
	}
	header, rows := records[0], records[1:]
	cols := make([]frame.Column, len(header))
	for j, name := range header {
		cells := make([]string, len(rows))
		for i, row := range rows {
			cells[i] = row[j]
		}
		cols[j] = inferColumn(strings.TrimSpace(name), cells)
	}
	f, err := frame.New(cols...)
	if err != nil {
		return loaded.LoadedFrame{}, err
	}
	return loaded.LoadedFrame{Frame: f}, nil
}

func inferColumn(name string, cells []string) frame.Column {
	if len(cells) == 0 {
		return frame.Floats(name)
	}
	if times, ok := parseAll(cells, parseTime); ok {
		return frame.Times(name, times...)
	}
	if ints, ok := parseAll(cells, func(s string) (int64, error) { return strconv.ParseInt(strings.TrimSpace(s), 10, 64) }); ok {
		return frame.Ints(name, ints...)
	}
	if uints, ok := parseAll(cells, func(s string) (uint64, error) { return strconv.ParseUint(strings.TrimSpace(s), 10, 64) }); ok {
		return frame.Uints(name, uints...)
	}
	if floats, ok := parseAll(cells, func(s string) (float64, error) { return strconv.ParseFloat(strings.TrimSpace(s), 64) }); ok {
		return frame.Floats(name, floats...)
	}
	return frame.Strings(name, cells...)
}

func parseAll[T any](cells []string, parse func(string) (T, error)) ([]T, bool) {
	out := make([]T, len(cells))
	for i, c := range cells {
		v, err := parse(c)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func encodeCSV(f *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(f.Names()); err != nil {
		return nil, err
	}
	row := make([]string, f.Width())
	for i := 0; i < f.Height(); i++ {
		for j := range row {
			c := f.Column(j)
			if ts, ok := c.Time(i); ok {
				row[j] = ts.Format(time.RFC3339Nano)
				continue
			}
			row[j] = c.Format(i, -1)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
