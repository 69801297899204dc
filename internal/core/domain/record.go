package domain

import "time"

type RecordType string

const (
	RecordTypeAlert    RecordType = "alert"
	RecordTypeDocument RecordType = "document"
)

// Record is one ingestible unit of corpus text. The ID is derived
// deterministically from source identity (alert ID, relative file path),
// so re-ingesting the same source is a no-op.
type Record struct {
	ID           string     `json:"id"`
	Type         RecordType `json:"type"`
	Text         string     `json:"text"`
	Filename     string     `json:"filename,omitempty"`
	Location     string     `json:"location,omitempty"`
	DisasterType string     `json:"disaster_type,omitempty"`
	Link         string     `json:"link,omitempty"`
	LastModified time.Time  `json:"last_modified"`
}

// Metadata returns the record fields persisted alongside the text in the
// document store payload. Full text is never part of the metadata.
func (r Record) Metadata() map[string]string {
	m := map[string]string{
		"type": string(r.Type),
	}
	if r.Filename != "" {
		m["filename"] = r.Filename
	}
	if r.Location != "" {
		m["location"] = r.Location
	}
	if r.DisasterType != "" {
		m["disaster_type"] = r.DisasterType
	}
	if r.Link != "" {
		m["link"] = r.Link
	}
	if !r.LastModified.IsZero() {
		m["last_modified"] = r.LastModified.UTC().Format(time.RFC3339)
	}
	return m
}

type RecordFailure struct {
	RecordID string `json:"record_id"`
	Error    string `json:"error"`
}

// IngestReport accumulates the outcome of one corpus load. Per-record
// failures never abort the batch; they are collected here instead.
type IngestReport struct {
	Ingested int             `json:"ingested"`
	Skipped  int             `json:"skipped"`
	Failures []RecordFailure `json:"failures,omitempty"`
}

func (r *IngestReport) AddFailure(recordID string, err error) {
	r.Failures = append(r.Failures, RecordFailure{RecordID: recordID, Error: err.Error()})
}

func (r *IngestReport) Merge(other IngestReport) {
	r.Ingested += other.Ingested
	r.Skipped += other.Skipped
	r.Failures = append(r.Failures, other.Failures...)
}
