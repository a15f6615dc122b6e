package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRead_CSV tests comma-separated input
func TestRead_CSV(t *testing.T) {
	in := "participant_id,session,pipeline_complete\nsub-01,1,SUCCESS\nsub-02,1,FAIL\n"

	tbl, err := Read(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"participant_id", "session", "pipeline_complete"}, tbl.Headers)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "sub-01", tbl.Value(0, "participant_id"))
	assert.Equal(t, "FAIL", tbl.Value(1, "pipeline_complete"))
	assert.Equal(t, "", tbl.Value(0, "nonexistent"))

	i, ok := tbl.Index("session")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.True(t, tbl.Has("session"))
	assert.False(t, tbl.Has("age"))
}

// TestRead_TSV tests tab-separated input via sniffing and explicit delimiter
func TestRead_TSV(t *testing.T) {
	in := "participant_id\tsession\nsub-01\t1\n"

	sniffed, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"participant_id", "session"}, sniffed.Headers)

	explicit, err := Read(strings.NewReader(in), WithDelimiter('\t'))
	require.NoError(t, err)
	assert.Equal(t, sniffed.Headers, explicit.Headers)
	assert.Equal(t, "sub-01", explicit.Value(0, "participant_id"))
}

// TestRead_BOM tests byte-order mark stripping
func TestRead_BOM(t *testing.T) {
	in := "\xEF\xBB\xBFparticipant_id,session\nsub-01,1\n"

	tbl, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "participant_id", tbl.Headers[0])
}

// TestRead_PreservesCells tests that cell values are not normalized
func TestRead_PreservesCells(t *testing.T) {
	in := "participant_id,session\n sub-01 ,01\n"

	tbl, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, " sub-01 ", tbl.Value(0, "participant_id"))
	assert.Equal(t, "01", tbl.Value(0, "session"), "sessions stay strings")
}

// TestRead_Errors tests structural rejection
func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []Option
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "header row is mandatory",
		},
		{
			name: "ragged row",
			in:   "a,b\n1,2,3\n",
			want: "wrong number of fields",
		},
		{
			name: "duplicate header",
			in:   "a,b,a\n1,2,3\n",
			want: `duplicate column name "a"`,
		},
		{
			name: "blank header",
			in:   "a,,c\n1,2,3\n",
			want: "empty column name at position 2",
		},
		{
			name: "row limit",
			in:   "a,b\n1,2\n3,4\n",
			opts: []Option{WithLimits(1, 0)},
			want: "row limit",
		},
		{
			name: "column limit",
			in:   "a,b,c\n1,2,3\n",
			opts: []Option{WithLimits(0, 2)},
			want: "exceeding the configured limit",
		},
		{
			name: "bare quote",
			in:   "a,b\n\"broken,2\n",
			want: "reading data rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// TestDetectDelimiter tests extension-based delimiter selection
func TestDetectDelimiter(t *testing.T) {
	d, err := DetectDelimiter("bagel.csv")
	require.NoError(t, err)
	assert.Equal(t, ',', d)

	d, err = DetectDelimiter("/data/BAGEL.TSV")
	require.NoError(t, err)
	assert.Equal(t, '\t', d)

	_, err = DetectDelimiter("bagel.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a .csv or .tsv file")
}
