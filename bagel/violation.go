package bagel

import (
	"fmt"
	"sort"
	"strings"
)

// ViolationKind classifies a validation finding.
type ViolationKind string

const (
	// KindMissingRequiredColumn reports a required non-prefixed column that
	// is absent from the table header.
	KindMissingRequiredColumn ViolationKind = "MissingRequiredColumn"

	// KindTypeMismatch reports a cell whose value does not conform to the
	// column's declared dtype.
	KindTypeMismatch ViolationKind = "TypeMismatch"

	// KindOutOfRangeValue reports a cell outside the column's declared range.
	KindOutOfRangeValue ViolationKind = "OutOfRangeValue"

	// KindInconsistentPipelineMetadata reports a row where pipeline_name and
	// pipeline_version disagree about pipeline availability.
	KindInconsistentPipelineMetadata ViolationKind = "InconsistentPipelineMetadata"

	// KindOrphanedPhaseOrStage reports a phase or stage column that
	// references a pipeline not present in the table.
	KindOrphanedPhaseOrStage ViolationKind = "OrphanedPhaseOrStage"

	// KindPhaseWithoutStage reports a row with a phase status but no stage
	// status for the same pipeline.
	KindPhaseWithoutStage ViolationKind = "PhaseWithoutStage"

	// KindDuplicateRecordKey reports a row whose record key collides with an
	// earlier row.
	KindDuplicateRecordKey ViolationKind = "DuplicateRecordKey"

	// KindUnrecognizedColumn reports a header matched by no schema column.
	// It is only emitted when the unrecognized-column policy is set to
	// reject; by default extra columns are tolerated.
	KindUnrecognizedColumn ViolationKind = "UnrecognizedColumn"
)

// String returns the string representation of ViolationKind.
func (k ViolationKind) String() string {
	return string(k)
}

// IsValid checks if the ViolationKind is a valid value.
func (k ViolationKind) IsValid() bool {
	switch k {
	case KindMissingRequiredColumn, KindTypeMismatch, KindOutOfRangeValue,
		KindInconsistentPipelineMetadata, KindOrphanedPhaseOrStage,
		KindPhaseWithoutStage, KindDuplicateRecordKey, KindUnrecognizedColumn:
		return true
	default:
		return false
	}
}

// Violation is a single validation finding. Violations are data, not fatal
// errors: a validation pass accumulates every violation in the table so that
// producers can fix all of them in one round.
type Violation struct {
	Kind ViolationKind `json:"kind"`

	// Rows holds the 0-based data row indexes the finding applies to. It is
	// empty for table-scoped findings such as a missing required column.
	Rows []int `json:"rows,omitempty"`

	// Column is the offending column header, when one is identifiable.
	Column string `json:"column,omitempty"`

	Message string `json:"message"`
}

// TableScoped reports whether the violation applies to the table as a whole
// rather than to specific rows.
func (v Violation) TableScoped() bool {
	return len(v.Rows) == 0
}

// Error implements the error interface.
// Format: "[Kind] column: message (rows ...)" with the column and row parts
// omitted when not applicable.
func (v Violation) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", v.Kind)
	if v.Column != "" {
		fmt.Fprintf(&b, " %s:", v.Column)
	}
	b.WriteString(" ")
	b.WriteString(v.Message)
	if len(v.Rows) > 0 {
		fmt.Fprintf(&b, " (rows %v)", v.Rows)
	}
	return b.String()
}

// List is an ordered collection of violations. The order follows the check
// order of the validation pass, then input row order within each check.
type List []Violation

// Error implements the error interface, rendering one violation per line.
func (l List) Error() string {
	if len(l) == 0 {
		return "no violations"
	}
	msgs := make([]string, len(l))
	for i, v := range l {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// Has reports whether the list contains at least one violation of the kind.
func (l List) Has(kind ViolationKind) bool {
	for _, v := range l {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// ByKind returns the violations of the given kind, preserving order.
func (l List) ByKind(kind ViolationKind) List {
	var out List
	for _, v := range l {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// RowSet returns the sorted set of row indexes named by any violation in the
// list.
func (l List) RowSet() []int {
	seen := make(map[int]bool)
	for _, v := range l {
		for _, r := range v.Rows {
			seen[r] = true
		}
	}
	rows := make([]int, 0, len(seen))
	for r := range seen {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}
