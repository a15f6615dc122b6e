package bagel

// Summary represents the aggregated view of one validated digest file.
// All numbers are plain counts; grouping is by pipeline or assessment
// identity, by session, and by phase/stage name.
type Summary struct {
	Flavor  Flavor         `json:"flavor"`
	Dataset DatasetSummary `json:"dataset"`

	// Pipelines holds per-pipeline status buckets, sorted by name then
	// version. Empty for files without pipeline columns.
	Pipelines []PipelineSummary `json:"pipelines,omitempty"`

	// Assessments holds per-assessment counts, sorted by name then version.
	// Empty for files without assessment columns.
	Assessments []AssessmentSummary `json:"assessments,omitempty"`
}

// DatasetSummary aggregates dataset-wide counts across all records.
type DatasetSummary struct {
	// Participants is the number of unique participant_id values.
	Participants int `json:"participants"`

	// Records is the number of unique (participant_id, session) pairs.
	Records int `json:"records"`

	// Sessions is the number of unique session values.
	Sessions int `json:"sessions"`

	// WithMRIData is the number of unique participants having
	// has_mri_data == true on at least one record.
	WithMRIData int `json:"with_mri_data"`

	// DatatypeAvailability counts unique participants with a true
	// HAS_DATATYPE__ value, keyed by datatype suffix (e.g. "anat").
	DatatypeAvailability map[string]int `json:"datatype_availability,omitempty"`

	// ImageAvailability counts unique participants with a true HAS_IMAGE__
	// value, keyed by image suffix (e.g. "T1w").
	ImageAvailability map[string]int `json:"image_availability,omitempty"`
}

// PipelineSummary aggregates status buckets for one pipeline name+version.
type PipelineSummary struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	// Records is the number of records attributed to the pipeline.
	Records int `json:"records"`

	// StatusCounts buckets records by their pipeline_complete value.
	StatusCounts map[StatusValue]int `json:"status_counts"`

	// BySession buckets records by session, then by status.
	BySession map[string]map[StatusValue]int `json:"by_session,omitempty"`

	// PhaseCounts buckets non-empty phase statuses by phase name.
	PhaseCounts map[string]map[StatusValue]int `json:"phase_counts,omitempty"`

	// StageCounts buckets non-empty stage statuses by stage name.
	StageCounts map[string]map[StatusValue]int `json:"stage_counts,omitempty"`
}

// Label returns the pipeline's display label, e.g. "fmriprep-20.2.7".
func (p PipelineSummary) Label() string {
	return RecordKey{Name: p.Name, Version: p.Version}.Label()
}

// AssessmentSummary aggregates counts for one assessment name+version.
type AssessmentSummary struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`

	// Records is the number of records attributed to the assessment.
	Records int `json:"records"`

	// Completed is the number of records with a non-empty assessment_score.
	Completed int `json:"completed"`
}

// Label returns the assessment's display label.
func (a AssessmentSummary) Label() string {
	return RecordKey{Name: a.Name, Version: a.Version}.Label()
}

// Result is the outcome of validating one digest file: the clean records,
// every violation found, and the aggregated summary of the clean records.
type Result struct {
	// RunID correlates the result with log lines of the validation run.
	RunID ID `json:"run_id"`

	Flavor Flavor `json:"flavor"`

	// Records holds the rows that passed every check, in input order. Rows
	// named by any violation are excluded, as are all rows when a
	// table-scoped violation is present.
	Records []Record `json:"records"`

	Violations List `json:"violations,omitempty"`

	Summary *Summary `json:"summary,omitempty"`
}

// Clean reports whether validation produced no violations.
func (r *Result) Clean() bool {
	return len(r.Violations) == 0
}
