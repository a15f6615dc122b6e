package bagel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestViolation_Error tests violation message rendering
func TestViolation_Error(t *testing.T) {
	tests := []struct {
		name      string
		violation Violation
		want      string
	}{
		{
			name: "row scoped with column",
			violation: Violation{
				Kind:    KindOutOfRangeValue,
				Rows:    []int{2, 5},
				Column:  "pipeline_complete",
				Message: `value "DONE" is not in the declared range`,
			},
			want: `[OutOfRangeValue] pipeline_complete: value "DONE" is not in the declared range (rows [2 5])`,
		},
		{
			name: "table scoped",
			violation: Violation{
				Kind:    KindMissingRequiredColumn,
				Column:  "participant_id",
				Message: "required column is missing",
			},
			want: "[MissingRequiredColumn] participant_id: required column is missing",
		},
		{
			name: "no column",
			violation: Violation{
				Kind:    KindDuplicateRecordKey,
				Rows:    []int{3},
				Message: "duplicate of row 1",
			},
			want: "[DuplicateRecordKey] duplicate of row 1 (rows [3])",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.violation.Error())
		})
	}
}

// TestViolation_TableScoped tests scope detection
func TestViolation_TableScoped(t *testing.T) {
	assert.True(t, Violation{Kind: KindMissingRequiredColumn}.TableScoped())
	assert.False(t, Violation{Kind: KindTypeMismatch, Rows: []int{0}}.TableScoped())
}

// TestList_Error tests multi-line rendering of violation lists
func TestList_Error(t *testing.T) {
	l := List{
		{Kind: KindMissingRequiredColumn, Column: "session", Message: "required column is missing"},
		{Kind: KindTypeMismatch, Rows: []int{1}, Column: "has_mri_data", Message: `expected "true" or "false"`},
	}

	msg := l.Error()
	assert.Contains(t, msg, "[MissingRequiredColumn]")
	assert.Contains(t, msg, "[TypeMismatch]")
	assert.Len(t, strings.Split(msg, "\n"), 2)

	assert.Equal(t, "no violations", List{}.Error())
}

// TestList_ByKind tests filtering and membership helpers
func TestList_ByKind(t *testing.T) {
	l := List{
		{Kind: KindTypeMismatch, Rows: []int{0}},
		{Kind: KindOutOfRangeValue, Rows: []int{4}},
		{Kind: KindTypeMismatch, Rows: []int{2}},
	}

	mismatches := l.ByKind(KindTypeMismatch)
	require.Len(t, mismatches, 2)
	assert.Equal(t, []int{0}, mismatches[0].Rows)
	assert.Equal(t, []int{2}, mismatches[1].Rows)

	assert.True(t, l.Has(KindOutOfRangeValue))
	assert.False(t, l.Has(KindDuplicateRecordKey))
}

// TestList_RowSet tests deduplicated sorted row extraction
func TestList_RowSet(t *testing.T) {
	l := List{
		{Kind: KindTypeMismatch, Rows: []int{4, 1}},
		{Kind: KindOutOfRangeValue, Rows: []int{1, 0}},
		{Kind: KindMissingRequiredColumn},
	}

	assert.Equal(t, []int{0, 1, 4}, l.RowSet())
}
