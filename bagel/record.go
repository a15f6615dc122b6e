package bagel

import "fmt"

// RecordKey uniquely identifies a record within a digest file. For imaging
// files the name/version pair identifies a pipeline; for phenotypic files it
// identifies an assessment (the version is empty when the file carries no
// assessment_version column).
type RecordKey struct {
	ParticipantID string `json:"participant_id"`
	Session       string `json:"session"`
	Name          string `json:"name"`
	Version       string `json:"version,omitempty"`
}

// Label returns the display label for the key's pipeline or assessment,
// e.g. "fmriprep-20.2.7". The version is omitted when empty.
func (k RecordKey) Label() string {
	if k.Version == "" {
		return k.Name
	}
	return k.Name + "-" + k.Version
}

// String returns a human-readable rendering of the key for messages.
func (k RecordKey) String() string {
	return fmt.Sprintf("(participant_id=%s, session=%s, %s)", k.ParticipantID, k.Session, k.Label())
}

// Record is one validated row of a digest file. Values preserve the source
// cells verbatim, keyed by column header, including headers the schema does
// not recognize.
type Record struct {
	// Row is the 0-based data row index in the source table.
	Row int `json:"row"`

	Flavor Flavor    `json:"flavor"`
	Key    RecordKey `json:"key"`

	Values map[string]string `json:"values"`
}

// Value returns the cell value for the given column header, or an empty
// string when the column is absent.
func (r Record) Value(column string) string {
	return r.Values[column]
}

// Status returns the cell value for the given column as a StatusValue.
func (r Record) Status(column string) StatusValue {
	return StatusValue(r.Values[column])
}

// Bool parses the cell value for the given column as a boolean. Boolean
// cells hold exactly "true" or "false"; ok is false for anything else,
// including absent columns.
func (r Record) Bool(column string) (value, ok bool) {
	switch r.Values[column] {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// ParticipantID returns the record's participant identifier.
func (r Record) ParticipantID() string {
	return r.Key.ParticipantID
}

// Session returns the record's session identifier.
func (r Record) Session() string {
	return r.Key.Session
}
