package bagel

import (
	"encoding/json"
	"fmt"
)

// StatusValue represents the processing status of a pipeline, phase, or
// stage for one participant session. Status values are case-sensitive wire
// literals; no synonyms are accepted.
type StatusValue string

const (
	StatusSuccess    StatusValue = "SUCCESS"
	StatusFail       StatusValue = "FAIL"
	StatusIncomplete StatusValue = "INCOMPLETE"

	// StatusUnavailable doubles as the sentinel for intentionally absent
	// metadata values such as pipeline_starttime.
	StatusUnavailable StatusValue = "UNAVAILABLE"

	// StatusNotApplicable is the empty status. It is only legal in phase and
	// stage columns, where it marks a phase that does not apply to the row's
	// pipeline.
	StatusNotApplicable StatusValue = ""
)

// String returns the string representation of StatusValue.
func (s StatusValue) String() string {
	return string(s)
}

// IsValid checks if the StatusValue is a valid value. The empty status is
// valid; whether it is legal in a given column is decided by that column's
// declared range.
func (s StatusValue) IsValid() bool {
	switch s {
	case StatusSuccess, StatusFail, StatusIncomplete, StatusUnavailable, StatusNotApplicable:
		return true
	default:
		return false
	}
}

// ShortDescription returns a human-readable description of the status for
// dashboard legends. It returns an empty string for the empty status.
func (s StatusValue) ShortDescription() string {
	switch s {
	case StatusSuccess:
		return "All stages of pipeline finished successfully (all expected output files present)."
	case StatusFail:
		return "At least one stage of the pipeline failed."
	case StatusIncomplete:
		return "At least one stage of the pipeline has not yet finished running."
	case StatusUnavailable:
		return "Pipeline has not yet been run (output directory not available)."
	default:
		return ""
	}
}

// StatusValues returns the four terminal status values in display order.
// The empty status is excluded because it never appears in legends.
func StatusValues() []StatusValue {
	return []StatusValue{StatusSuccess, StatusFail, StatusIncomplete, StatusUnavailable}
}

// MarshalJSON implements json.Marshaler
func (s StatusValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler
func (s *StatusValue) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status := StatusValue(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid status value: %s", str)
	}

	*s = status
	return nil
}
