package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurobagel/digest/bagel"
)

func pipelineRecord(row int, pid, ses, name, version, status string) bagel.Record {
	return bagel.Record{
		Row:    row,
		Flavor: bagel.FlavorImaging,
		Key:    bagel.RecordKey{ParticipantID: pid, Session: ses, Name: name, Version: version},
		Values: map[string]string{
			bagel.ColParticipantID:    pid,
			bagel.ColSession:          ses,
			bagel.ColPipelineName:     name,
			bagel.ColPipelineVersion:  version,
			bagel.ColPipelineComplete: status,
		},
	}
}

func assessmentRecord(row int, pid, ses, name, score string) bagel.Record {
	return bagel.Record{
		Row:    row,
		Flavor: bagel.FlavorPhenotypic,
		Key:    bagel.RecordKey{ParticipantID: pid, Session: ses, Name: name},
		Values: map[string]string{
			bagel.ColParticipantID:   pid,
			bagel.ColSession:         ses,
			bagel.ColAssessmentName:  name,
			bagel.ColAssessmentScore: score,
		},
	}
}

// TestSummarize_Pipelines tests per-pipeline status bucketing
func TestSummarize_Pipelines(t *testing.T) {
	records := []bagel.Record{
		pipelineRecord(0, "sub-01", "1", "fmriprep", "20.2.7", "SUCCESS"),
		pipelineRecord(1, "sub-01", "2", "fmriprep", "20.2.7", "FAIL"),
		pipelineRecord(2, "sub-02", "1", "fmriprep", "20.2.7", "SUCCESS"),
		pipelineRecord(3, "sub-02", "1", "freesurfer", "7.3.2", "SUCCESS"),
		pipelineRecord(4, "sub-03", "1", "fmriprep", "23.1.3", "UNAVAILABLE"),
	}

	sum := Summarize(records)
	assert.Equal(t, bagel.FlavorImaging, sum.Flavor)
	require.Len(t, sum.Pipelines, 3)

	// Sorted by name, then version.
	assert.Equal(t, "fmriprep-20.2.7", sum.Pipelines[0].Label())
	assert.Equal(t, "fmriprep-23.1.3", sum.Pipelines[1].Label())
	assert.Equal(t, "freesurfer-7.3.2", sum.Pipelines[2].Label())

	fm := sum.Pipelines[0]
	assert.Equal(t, 3, fm.Records)
	assert.Equal(t, 2, fm.StatusCounts[bagel.StatusSuccess])
	assert.Equal(t, 1, fm.StatusCounts[bagel.StatusFail])
	assert.Equal(t, 2, fm.BySession["1"][bagel.StatusSuccess])
	assert.Equal(t, 1, fm.BySession["2"][bagel.StatusFail])

	assert.Equal(t, 1, sum.Pipelines[1].StatusCounts[bagel.StatusUnavailable])
	assert.Empty(t, sum.Assessments)
}

// TestSummarize_Dataset tests dataset-wide unique counting
func TestSummarize_Dataset(t *testing.T) {
	records := []bagel.Record{
		pipelineRecord(0, "sub-01", "1", "fmriprep", "20.2.7", "SUCCESS"),
		pipelineRecord(1, "sub-01", "2", "fmriprep", "20.2.7", "SUCCESS"),
		pipelineRecord(2, "sub-02", "1", "fmriprep", "20.2.7", "SUCCESS"),
		// A second pipeline for an existing participant session must not
		// inflate the dataset counts.
		pipelineRecord(3, "sub-02", "1", "freesurfer", "7.3.2", "SUCCESS"),
	}
	records[0].Values[bagel.ColHasMRIData] = "true"
	records[1].Values[bagel.ColHasMRIData] = "true"
	records[2].Values[bagel.ColHasMRIData] = "false"
	records[0].Values["HAS_DATATYPE__anat"] = "true"
	records[2].Values["HAS_DATATYPE__anat"] = "true"
	records[2].Values["HAS_DATATYPE__func"] = "false"
	records[0].Values["HAS_IMAGE__T1w"] = "true"

	sum := Summarize(records)
	ds := sum.Dataset
	assert.Equal(t, 2, ds.Participants)
	assert.Equal(t, 3, ds.Records, "unique participant-session pairs")
	assert.Equal(t, 2, ds.Sessions)
	assert.Equal(t, 1, ds.WithMRIData, "sub-01 only, counted once across sessions")
	assert.Equal(t, map[string]int{"anat": 2}, ds.DatatypeAvailability)
	assert.Equal(t, map[string]int{"T1w": 1}, ds.ImageAvailability)
}

// TestSummarize_PhaseStageCounts tests phase/stage tallies stay with the
// record's own pipeline
func TestSummarize_PhaseStageCounts(t *testing.T) {
	records := []bagel.Record{
		pipelineRecord(0, "sub-01", "1", "fmriprep", "20.2.7", "SUCCESS"),
		pipelineRecord(1, "sub-02", "1", "fmriprep", "20.2.7", "INCOMPLETE"),
		pipelineRecord(2, "sub-01", "1", "freesurfer", "7.3.2", "SUCCESS"),
	}
	records[0].Values["PHASE__fmriprep__preproc"] = "SUCCESS"
	records[0].Values["STAGE__fmriprep__t1w"] = "SUCCESS"
	records[1].Values["PHASE__fmriprep__preproc"] = "FAIL"
	// Empty on the freesurfer row: the column does not apply there.
	records[2].Values["PHASE__fmriprep__preproc"] = ""
	// A stray status under another pipeline's column is not attributed.
	records[2].Values["STAGE__fmriprep__t1w"] = "SUCCESS"

	sum := Summarize(records)
	require.Len(t, sum.Pipelines, 2)

	fm := sum.Pipelines[0]
	require.Equal(t, "fmriprep", fm.Name)
	assert.Equal(t, 1, fm.PhaseCounts["preproc"][bagel.StatusSuccess])
	assert.Equal(t, 1, fm.PhaseCounts["preproc"][bagel.StatusFail])
	assert.Equal(t, 1, fm.StageCounts["t1w"][bagel.StatusSuccess])

	fs := sum.Pipelines[1]
	require.Equal(t, "freesurfer", fs.Name)
	assert.Empty(t, fs.PhaseCounts)
	assert.Empty(t, fs.StageCounts)
}

// TestSummarize_Assessments tests per-assessment completion counting
func TestSummarize_Assessments(t *testing.T) {
	records := []bagel.Record{
		assessmentRecord(0, "sub-01", "1", "moca", "21.0"),
		assessmentRecord(1, "sub-02", "1", "moca", ""),
		assessmentRecord(2, "sub-01", "1", "updrs", "17"),
	}

	sum := Summarize(records)
	assert.Equal(t, bagel.FlavorPhenotypic, sum.Flavor)
	assert.Empty(t, sum.Pipelines)
	require.Len(t, sum.Assessments, 2)

	moca := sum.Assessments[0]
	assert.Equal(t, "moca", moca.Name)
	assert.Equal(t, "moca", moca.Label())
	assert.Equal(t, 2, moca.Records)
	assert.Equal(t, 1, moca.Completed, "empty scores are not completed")

	assert.Equal(t, "updrs", sum.Assessments[1].Name)
	assert.Equal(t, 1, sum.Assessments[1].Completed)
}

// TestSummarize_Empty tests the zero-record reduction
func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, bagel.Flavor(""), sum.Flavor)
	assert.Zero(t, sum.Dataset.Participants)
	assert.Zero(t, sum.Dataset.Records)
	assert.Empty(t, sum.Pipelines)
	assert.Empty(t, sum.Assessments)
}
