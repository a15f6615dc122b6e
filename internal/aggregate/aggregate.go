// Package aggregate reduces validated digest records into the summaries a
// dashboard layer renders: dataset-wide counts plus per-pipeline and
// per-assessment status buckets. Aggregation is a pure reduction over the
// records it is given; grouping is unordered and the output is sorted.
package aggregate

import (
	"sort"

	"github.com/neurobagel/digest/bagel"
)

// Summarize aggregates validated records into a summary. The flavor is
// taken from the records; a summary of zero records carries the zero
// flavor.
func Summarize(records []bagel.Record) bagel.Summary {
	var sum bagel.Summary
	if len(records) > 0 {
		sum.Flavor = records[0].Flavor
	}
	sum.Dataset = summarizeDataset(records)
	sum.Pipelines = summarizePipelines(records)
	sum.Assessments = summarizeAssessments(records)
	return sum
}

// summarizeDataset counts unique participants, sessions and records, and
// availability of MRI data per datatype and image suffix.
func summarizeDataset(records []bagel.Record) bagel.DatasetSummary {
	participants := make(map[string]bool)
	sessions := make(map[string]bool)
	pairs := make(map[bagel.RecordKey]bool)
	withMRI := make(map[string]bool)
	datatype := make(map[string]map[string]bool)
	image := make(map[string]map[string]bool)

	for _, rec := range records {
		pid := rec.ParticipantID()
		ses := rec.Session()
		participants[pid] = true
		sessions[ses] = true
		pairs[bagel.RecordKey{ParticipantID: pid, Session: ses}] = true

		if v, ok := rec.Bool(bagel.ColHasMRIData); ok && v {
			withMRI[pid] = true
		}

		for header, value := range rec.Values {
			if value != "true" {
				continue
			}
			prefix, suffix, ok := bagel.SplitPrefixed(header)
			if !ok {
				continue
			}
			switch prefix {
			case bagel.PrefixHasDatatype:
				addParticipant(datatype, suffix, pid)
			case bagel.PrefixHasImage:
				addParticipant(image, suffix, pid)
			}
		}
	}

	return bagel.DatasetSummary{
		Participants:         len(participants),
		Records:              len(pairs),
		Sessions:             len(sessions),
		WithMRIData:          len(withMRI),
		DatatypeAvailability: countParticipants(datatype),
		ImageAvailability:    countParticipants(image),
	}
}

// groupKey identifies one pipeline or assessment bucket.
type groupKey struct {
	name    string
	version string
}

// summarizePipelines buckets records by pipeline name and version, counting
// overview statuses overall, per session, and per phase/stage name.
func summarizePipelines(records []bagel.Record) []bagel.PipelineSummary {
	buckets := make(map[groupKey]*bagel.PipelineSummary)

	for _, rec := range records {
		name, ok := rec.Values[bagel.ColPipelineName]
		if !ok {
			continue
		}
		key := groupKey{name: name, version: rec.Value(bagel.ColPipelineVersion)}
		b := buckets[key]
		if b == nil {
			b = &bagel.PipelineSummary{
				Name:         key.name,
				Version:      key.version,
				StatusCounts: make(map[bagel.StatusValue]int),
			}
			buckets[key] = b
		}
		b.Records++

		if s, ok := rec.Values[bagel.ColPipelineComplete]; ok {
			status := bagel.StatusValue(s)
			b.StatusCounts[status]++
			b.BySession = tally(b.BySession, rec.Session(), status)
		}

		// Phase and stage statuses count toward the record's own pipeline;
		// columns referencing other pipelines are left empty on this row.
		for header, value := range rec.Values {
			if value == "" {
				continue
			}
			prefix, suffix, ok := bagel.SplitPrefixed(header)
			if !ok || (prefix != bagel.PrefixPhase && prefix != bagel.PrefixStage) {
				continue
			}
			pipeline, part, ok := bagel.SplitPhaseRef(suffix)
			if !ok || pipeline != name {
				continue
			}
			if prefix == bagel.PrefixPhase {
				b.PhaseCounts = tally(b.PhaseCounts, part, bagel.StatusValue(value))
			} else {
				b.StageCounts = tally(b.StageCounts, part, bagel.StatusValue(value))
			}
		}
	}

	if len(buckets) == 0 {
		return nil
	}
	out := make([]bagel.PipelineSummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// summarizeAssessments buckets records by assessment name and version,
// counting records with a non-empty score as completed.
func summarizeAssessments(records []bagel.Record) []bagel.AssessmentSummary {
	buckets := make(map[groupKey]*bagel.AssessmentSummary)

	for _, rec := range records {
		name, ok := rec.Values[bagel.ColAssessmentName]
		if !ok {
			continue
		}
		key := groupKey{name: name, version: rec.Value(bagel.ColAssessmentVersion)}
		b := buckets[key]
		if b == nil {
			b = &bagel.AssessmentSummary{Name: key.name, Version: key.version}
			buckets[key] = b
		}
		b.Records++
		if rec.Value(bagel.ColAssessmentScore) != "" {
			b.Completed++
		}
	}

	if len(buckets) == 0 {
		return nil
	}
	out := make([]bagel.AssessmentSummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version < out[j].Version
	})
	return out
}

func addParticipant(m map[string]map[string]bool, key, pid string) {
	if m[key] == nil {
		m[key] = make(map[string]bool)
	}
	m[key][pid] = true
}

func countParticipants(m map[string]map[string]bool) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, pids := range m {
		out[k] = len(pids)
	}
	return out
}

// tally increments a two-level status counter, allocating levels on first
// use.
func tally(m map[string]map[bagel.StatusValue]int, key string, status bagel.StatusValue) map[string]map[bagel.StatusValue]int {
	if m == nil {
		m = make(map[string]map[bagel.StatusValue]int)
	}
	if m[key] == nil {
		m[key] = make(map[bagel.StatusValue]int)
	}
	m[key][status]++
	return m
}
