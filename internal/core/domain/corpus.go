package domain

import "time"

type CorpusState string

const (
	CorpusNotLoaded CorpusState = "not_loaded"
	CorpusLoading   CorpusState = "loading"
	CorpusLoaded    CorpusState = "loaded"
	CorpusFailed    CorpusState = "failed"
)

// CorpusSnapshot is a point-in-time view of corpus readiness. Handlers read
// snapshots; they never mutate readiness state directly.
type CorpusSnapshot struct {
	State       CorpusState `json:"state"`
	Error       string      `json:"error,omitempty"`
	LoadedAt    time.Time   `json:"loaded_at,omitzero"`
	RecordCount int         `json:"record_count"`
}

func (s CorpusSnapshot) Loaded() bool {
	return s.State == CorpusLoaded
}

func (s CorpusSnapshot) Loading() bool {
	return s.State == CorpusLoading
}

// RecordSample is the bounded per-record metadata exposed by the corpus
// status endpoint. It intentionally carries no document text.
type RecordSample struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Filename     string    `json:"filename,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

type CorpusStatus struct {
	TotalDocuments  int            `json:"total_documents"`
	DocumentTypes   map[string]int `json:"document_types"`
	SampleDocuments []RecordSample `json:"sample_documents"`
}
