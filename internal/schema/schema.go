// Package schema implements the declarative schema model for digest files:
// parsing schema definitions, registering flavors, and classifying table
// headers against a flavor's columns.
package schema

import (
	"strings"

	"github.com/neurobagel/digest/bagel"
)

// DType is the declared value type of a column.
type DType string

const (
	DTypeStr  DType = "str"
	DTypeBool DType = "bool"
)

// String returns the string representation of DType.
func (d DType) String() string {
	return string(d)
}

// IsValid checks if the DType is a valid value.
func (d DType) IsValid() bool {
	switch d {
	case DTypeStr, DTypeBool:
		return true
	default:
		return false
	}
}

// ColumnSpec describes one column of a schema flavor. For prefixed columns
// the Label is the family prefix and data headers take the form
// Label + "__" + suffix with a tracker-chosen, non-empty suffix.
type ColumnSpec struct {
	Label       string
	Category    string
	Description string
	DType       DType
	Required    bool

	// Range lists the allowed literals of a categorical column. Only str
	// columns may declare a range; bool columns are inherently true/false.
	Range []string

	// MissingValue is the optional sentinel marking an intentionally absent
	// value. nil when the column declares no sentinel.
	MissingValue *string

	Prefixed bool
}

// Categorical reports whether the column declares a value range.
func (c *ColumnSpec) Categorical() bool {
	return len(c.Range) > 0
}

// Missing reports whether v equals the column's missing-value sentinel.
func (c *ColumnSpec) Missing(v string) bool {
	return c.MissingValue != nil && *c.MissingValue == v
}

// Accepts reports whether v is an allowed value for a categorical column:
// a member of the declared range or the missing-value sentinel. It returns
// true for non-categorical columns.
func (c *ColumnSpec) Accepts(v string) bool {
	if !c.Categorical() {
		return true
	}
	for _, r := range c.Range {
		if v == r {
			return true
		}
	}
	return c.Missing(v)
}

// Match is the result of classifying a table header against a schema.
// Suffix is empty for exact matches.
type Match struct {
	Spec   *ColumnSpec
	Suffix string
}

// Prefixed reports whether the match hit a prefixed column family.
func (m Match) Prefixed() bool {
	return m.Spec != nil && m.Spec.Prefixed
}

// PhaseRef decomposes the suffix of a phase or stage column into the
// pipeline it references and the phase/stage name, e.g. the header
// PHASE__fmriprep__preproc yields ("fmriprep", "preproc"). ok is false when
// the suffix does not contain both parts.
func (m Match) PhaseRef() (pipeline, name string, ok bool) {
	return bagel.SplitPhaseRef(m.Suffix)
}

// KeySpec describes how record keys are assembled for a flavor: the ordered
// candidate key columns and the column summarized per group by aggregation.
type KeySpec struct {
	// Columns is ordered as (participant, session, group name, group
	// version). Trailing optional columns may be absent from a given table.
	Columns []string

	// Overview is the status or score column grouped per pipeline or
	// assessment. Empty when the flavor has no such column.
	Overview string
}

// Schema is one parsed, immutable schema flavor. A Schema is safe for
// concurrent readers once built.
type Schema struct {
	id       string
	columns  []*ColumnSpec
	exact    map[string]*ColumnSpec
	prefixed []*ColumnSpec // sorted by label length, longest first
	keys     KeySpec
}

// ID returns the flavor identifier the schema was registered under.
func (s *Schema) ID() string {
	return s.id
}

// Columns returns every column spec in stable order (by category, then
// label). The returned slice must not be modified.
func (s *Schema) Columns() []*ColumnSpec {
	return s.columns
}

// Required returns the required non-prefixed columns in stable order.
func (s *Schema) Required() []*ColumnSpec {
	var out []*ColumnSpec
	for _, c := range s.columns {
		if c.Required && !c.Prefixed {
			out = append(out, c)
		}
	}
	return out
}

// Exact looks up a non-prefixed column by its label.
func (s *Schema) Exact(label string) (*ColumnSpec, bool) {
	c, ok := s.exact[label]
	return c, ok
}

// Keys returns the flavor's record key layout.
func (s *Schema) Keys() KeySpec {
	return s.keys
}

// Classify resolves a table header to a column spec. Exact labels win;
// otherwise the longest prefixed family whose label + "__" leads the header
// with a non-empty remainder wins. ok is false for unrecognized headers.
func (s *Schema) Classify(header string) (Match, bool) {
	if spec, ok := s.exact[header]; ok {
		return Match{Spec: spec}, true
	}
	for _, spec := range s.prefixed {
		sep := spec.Label + "__"
		if len(header) > len(sep) && strings.HasPrefix(header, sep) {
			return Match{Spec: spec, Suffix: header[len(sep):]}, true
		}
	}
	return Match{}, false
}

// deriveKeys inspects the declared columns and picks the key layout: digest
// files keyed by pipeline, by assessment, or by participant-session alone.
func deriveKeys(s *Schema) KeySpec {
	if _, ok := s.exact[bagel.ColPipelineName]; ok {
		ks := KeySpec{Columns: []string{
			bagel.ColParticipantID, bagel.ColSession,
			bagel.ColPipelineName, bagel.ColPipelineVersion,
		}}
		if _, ok := s.exact[bagel.ColPipelineComplete]; ok {
			ks.Overview = bagel.ColPipelineComplete
		}
		return ks
	}
	if _, ok := s.exact[bagel.ColAssessmentName]; ok {
		ks := KeySpec{Columns: []string{
			bagel.ColParticipantID, bagel.ColSession,
			bagel.ColAssessmentName, bagel.ColAssessmentVersion,
		}}
		if _, ok := s.exact[bagel.ColAssessmentScore]; ok {
			ks.Overview = bagel.ColAssessmentScore
		}
		return ks
	}
	return KeySpec{Columns: []string{bagel.ColParticipantID, bagel.ColSession}}
}
