// Package table loads the wide CSV exports produced by the audio analyzer.
//
// An export starts with a fixed number of header rows, followed by one row
// per spectrum point. Each channel contributes a frequency column and an
// amplitude column. Some exports store channels as row pairs instead; the
// rows layout exposes those rows through the same column accessors.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	multitone "github.com/tphakala/go-multitone-check"
)

// ErrNoData indicates the export holds no rows after the header.
var ErrNoData = errors.New("table has no data rows")

// Options controls how an export is read.
type Options struct {
	// HeaderRows is the number of leading records to skip.
	HeaderRows int

	// Layout selects column pairs (default) or row pairs.
	Layout multitone.Layout

	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// Table is a loaded export. It implements multitone.Table.
type Table struct {
	records [][]string
	layout  multitone.Layout
	width   int
}

// Open reads the export at path.
func Open(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load reads an export from r.
func Load(r io.Reader, opts Options) (*Table, error) {
	if opts.HeaderRows < 0 {
		return nil, fmt.Errorf("header rows must not be negative, got %d", opts.HeaderRows)
	}
	layout := opts.Layout
	if layout == "" {
		layout = multitone.LayoutColumns
	}
	if layout != multitone.LayoutColumns && layout != multitone.LayoutRows {
		return nil, fmt.Errorf("unknown layout %q", layout)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	var records [][]string
	width := 0
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", line+1, err)
		}
		if line < opts.HeaderRows {
			continue
		}
		records = append(records, rec)
		width = max(width, len(rec))
	}

	if len(records) == 0 {
		return nil, ErrNoData
	}

	return &Table{records: records, layout: layout, width: width}, nil
}

// Layout returns the layout the table was loaded with.
func (t *Table) Layout() multitone.Layout {
	return t.layout
}

// NumRecords returns the number of data records.
func (t *Table) NumRecords() int {
	return len(t.records)
}

// NumColumns returns the number of series vectors. For the rows layout this
// is the number of data records.
func (t *Table) NumColumns() int {
	if t.layout == multitone.LayoutRows {
		return len(t.records)
	}
	return t.width
}

// Column returns series vector i. Short records yield blank cells. For the
// rows layout, record i is returned as is; label cells do not parse and are
// dropped with the rest of their pair.
func (t *Table) Column(i int) []string {
	if i < 0 || i >= t.NumColumns() {
		return nil
	}
	if t.layout == multitone.LayoutRows {
		return t.records[i]
	}

	out := make([]string, len(t.records))
	for r, rec := range t.records {
		if i < len(rec) {
			out[r] = rec[i]
		}
	}
	return out
}

// ChannelCount returns how many complete channel pairs the table holds.
func (t *Table) ChannelCount() int {
	return t.NumColumns() / 2
}
