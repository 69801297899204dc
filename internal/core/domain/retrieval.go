package domain

// RetrievedDocument is one similarity-search hit, most relevant first.
type RetrievedDocument struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
}

type Answer struct {
	Text string `json:"text"`
	// ContextCount is how many retrieved excerpts backed the answer.
	ContextCount int `json:"-"`
}
