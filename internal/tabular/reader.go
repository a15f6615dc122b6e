package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Option configures Read.
type Option func(*options)

type options struct {
	delimiter  rune
	maxRows    int
	maxColumns int
}

// WithDelimiter sets the field delimiter explicitly. Without it, Read
// sniffs the first line and falls back to comma.
func WithDelimiter(d rune) Option {
	return func(o *options) {
		o.delimiter = d
	}
}

// WithLimits bounds the accepted table size. Zero means unlimited.
func WithLimits(maxRows, maxColumns int) Option {
	return func(o *options) {
		o.maxRows = maxRows
		o.maxColumns = maxColumns
	}
}

var extDelimiters = map[string]rune{
	".csv": ',',
	".tsv": '\t',
}

// DetectDelimiter returns the delimiter implied by a file name extension.
func DetectDelimiter(filename string) (rune, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if d, ok := extDelimiters[ext]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unsupported file type %q: expected a .csv or .tsv file", filename)
}

// Read parses UTF-8 delimited text into a Table. The first row is the
// mandatory header; a leading byte-order mark is stripped. Empty input,
// blank or duplicate headers, inconsistent field counts, and exceeded size
// limits are errors.
func Read(r io.Reader, opts ...Option) (*Table, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	stripBOM(br)

	if o.delimiter == 0 {
		o.delimiter = sniffDelimiter(br)
	}

	cr := csv.NewReader(br)
	cr.Comma = o.delimiter

	headers, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("input is empty: a header row is mandatory")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	if err := checkHeaders(headers, o.maxColumns); err != nil {
		return nil, err
	}

	t := &Table{
		Headers: headers,
		index:   make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		t.index[h] = i
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading data rows: %w", err)
		}
		if o.maxRows > 0 && len(t.Rows) >= o.maxRows {
			return nil, fmt.Errorf("table exceeds the configured row limit of %d", o.maxRows)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func checkHeaders(headers []string, maxColumns int) error {
	if maxColumns > 0 && len(headers) > maxColumns {
		return fmt.Errorf("table has %d columns, exceeding the configured limit of %d", len(headers), maxColumns)
	}

	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("header row has an empty column name at position %d", i+1)
		}
		if seen[h] {
			return fmt.Errorf("header row has a duplicate column name %q", h)
		}
		seen[h] = true
	}
	return nil
}

// stripBOM discards a leading UTF-8 byte-order mark if present.
func stripBOM(br *bufio.Reader) {
	bom, err := br.Peek(3)
	if err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
}

// sniffDelimiter inspects the first line: a tab anywhere in it selects TSV,
// otherwise CSV.
func sniffDelimiter(br *bufio.Reader) rune {
	const window = 4096

	peek, _ := br.Peek(window)
	line := peek
	if i := strings.IndexByte(string(peek), '\n'); i >= 0 {
		line = peek[:i]
	}
	if strings.ContainsRune(string(line), '\t') {
		return '\t'
	}
	return ','
}
