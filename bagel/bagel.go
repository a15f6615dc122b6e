// Package bagel defines the shared vocabulary for digest (bagel) files:
// schema flavors, processing status values, record and violation types, and
// the summaries produced by aggregation. Types in this package are
// self-contained so that both the validation machinery and downstream
// consumers (dashboards, exporters) can depend on them without pulling in
// the rest of the module.
package bagel

import "strings"

// Flavor identifies a schema flavor a digest file is validated against.
type Flavor string

const (
	// FlavorImaging is the flavor for imaging pipeline status files.
	FlavorImaging Flavor = "imaging"

	// FlavorPhenotypic is the flavor for phenotypic assessment files.
	FlavorPhenotypic Flavor = "phenotypic"
)

// String returns the string representation of Flavor.
func (f Flavor) String() string {
	return string(f)
}

// IsBuiltin reports whether the flavor is one of the flavors shipped with
// the module. Additional flavors may be registered from a schema directory.
func (f Flavor) IsBuiltin() bool {
	switch f {
	case FlavorImaging, FlavorPhenotypic:
		return true
	default:
		return false
	}
}

// Canonical column names shared by the builtin schema flavors.
const (
	ColParticipantID     = "participant_id"
	ColBIDSParticipantID = "bids_participant_id"
	ColSession           = "session"
	ColHasMRIData        = "has_mri_data"
	ColPipelineName      = "pipeline_name"
	ColPipelineVersion   = "pipeline_version"
	ColPipelineStarttime = "pipeline_starttime"
	ColPipelineComplete  = "pipeline_complete"
	ColAssessmentName    = "assessment_name"
	ColAssessmentVersion = "assessment_version"
	ColAssessmentScore   = "assessment_score"
)

// Labels of the prefixed column families. A prefixed column appears in data
// as label + "__" + suffix, where the suffix is chosen by the tracker that
// produced the file (e.g. HAS_DATATYPE__anat, PHASE__fmriprep__preproc).
const (
	PrefixPhase       = "PHASE"
	PrefixStage       = "STAGE"
	PrefixHasDatatype = "HAS_DATATYPE"
	PrefixHasImage    = "HAS_IMAGE"
)

// knownPrefixes is ordered longest-first so that SplitPrefixed resolves
// overlapping candidates deterministically.
var knownPrefixes = []string{PrefixHasDatatype, PrefixHasImage, PrefixPhase, PrefixStage}

// SplitPrefixed splits a column header into one of the known prefixed-family
// labels and its suffix. It returns ok=false when the header does not belong
// to a known family or has an empty suffix.
func SplitPrefixed(header string) (prefix, suffix string, ok bool) {
	for _, p := range knownPrefixes {
		sep := p + "__"
		if len(header) > len(sep) && header[:len(sep)] == sep {
			return p, header[len(sep):], true
		}
	}
	return "", "", false
}

// SplitPhaseRef decomposes the suffix of a phase or stage column into the
// pipeline it references and the phase or stage name, e.g. the suffix of
// PHASE__fmriprep__preproc yields ("fmriprep", "preproc"). ok is false when
// either part is missing.
func SplitPhaseRef(suffix string) (pipeline, name string, ok bool) {
	i := strings.Index(suffix, "__")
	if i <= 0 || i+2 >= len(suffix) {
		return "", "", false
	}
	return suffix[:i], suffix[i+2:], true
}
