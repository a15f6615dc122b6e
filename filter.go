package digest

import (
	"github.com/neurobagel/digest/bagel"
)

// FilterOperator selects how multiple session selections combine.
type FilterOperator string

const (
	// FilterAnd keeps participants that have every selected session, with
	// the status selection matching in each of them.
	FilterAnd FilterOperator = "AND"

	// FilterOr keeps records of any selected session whose status
	// selection matches.
	FilterOr FilterOperator = "OR"
)

// String returns the string representation of FilterOperator.
func (op FilterOperator) String() string {
	return string(op)
}

// IsValid reports whether the operator is one of the defined values.
func (op FilterOperator) IsValid() bool {
	return op == FilterAnd || op == FilterOr
}

// Filter selects validated records by session and pipeline status.
// Zero-valued fields leave their dimension unconstrained.
type Filter struct {
	// Sessions is the set of session values to keep. Empty keeps every
	// session.
	Sessions []string

	// Operator combines multiple selected sessions. It has an effect only
	// when at least one session is selected.
	// Default: FilterAnd
	Operator FilterOperator

	// Statuses maps a pipeline label, as returned by
	// bagel.PipelineSummary.Label, to the pipeline_complete values to
	// keep for that pipeline. A label mapped to an empty selection is
	// ignored.
	Statuses map[string][]bagel.StatusValue
}

// FilterRecords returns the records matching the filter, preserving input
// order. An empty filter returns the input unchanged.
//
// The status selection applies at the participant-session level: a
// participant-session matches only when every constrained pipeline has a
// record there with an allowed status, and all of its records survive or
// fall together, mirroring one row of the pivoted overview table.
func FilterRecords(records []bagel.Record, f Filter) []bagel.Record {
	if len(f.Sessions) == 0 && len(f.Statuses) == 0 {
		return records
	}

	type group struct {
		participant string
		session     string
	}

	// Overview status of each pipeline cell, one cell per group and label.
	cells := make(map[group]map[string]bagel.StatusValue)
	for _, rec := range records {
		g := group{rec.ParticipantID(), rec.Session()}
		if cells[g] == nil {
			cells[g] = make(map[string]bagel.StatusValue)
		}
		cells[g][rec.Key.Label()] = rec.Status(bagel.ColPipelineComplete)
	}

	groupMatches := func(g group) bool {
		for label, allowed := range f.Statuses {
			if len(allowed) == 0 {
				continue
			}
			status, ok := cells[g][label]
			if !ok || !containsStatus(allowed, status) {
				return false
			}
		}
		return true
	}

	selected := make(map[string]bool, len(f.Sessions))
	for _, s := range f.Sessions {
		selected[s] = true
	}

	keep := func(rec bagel.Record) bool {
		g := group{rec.ParticipantID(), rec.Session()}
		return selected[g.session] && groupMatches(g)
	}

	switch {
	case len(f.Sessions) == 0:
		keep = func(rec bagel.Record) bool {
			return groupMatches(group{rec.ParticipantID(), rec.Session()})
		}

	case f.Operator != FilterOr:
		// AND operates at the participant level: collect the sessions in
		// which each participant matches the status selection, then
		// require every selected session among them.
		matched := make(map[string]map[string]bool)
		for g := range cells {
			if !groupMatches(g) {
				continue
			}
			if matched[g.participant] == nil {
				matched[g.participant] = make(map[string]bool)
			}
			matched[g.participant][g.session] = true
		}

		qualified := make(map[string]bool, len(matched))
		for participant, sessions := range matched {
			ok := true
			for _, s := range f.Sessions {
				if !sessions[s] {
					ok = false
					break
				}
			}
			qualified[participant] = ok
		}

		keep = func(rec bagel.Record) bool {
			return qualified[rec.ParticipantID()] && selected[rec.Session()]
		}
	}

	kept := make([]bagel.Record, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			kept = append(kept, rec)
		}
	}
	return kept
}

func containsStatus(allowed []bagel.StatusValue, status bagel.StatusValue) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
