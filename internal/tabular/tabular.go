// Package tabular reads delimited digest files (CSV or TSV) into an
// in-memory table. Ingestion is structural only: it enforces a well-formed
// UTF-8 table with a header row and consistent field counts, and leaves all
// cell values verbatim for validation.
package tabular

// Table is a parsed delimited table: the header row plus data rows. Row
// indexes are 0-based over the data rows, excluding the header.
type Table struct {
	Headers []string
	Rows    [][]string

	index map[string]int
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the column position of a header.
func (t *Table) Index(header string) (int, bool) {
	i, ok := t.index[header]
	return i, ok
}

// Has reports whether the table contains the header.
func (t *Table) Has(header string) bool {
	_, ok := t.index[header]
	return ok
}

// Value returns the cell at (row, header), or an empty string when the
// header is absent.
func (t *Table) Value(row int, header string) string {
	i, ok := t.index[header]
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}
