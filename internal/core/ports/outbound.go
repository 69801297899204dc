package ports

import (
	"context"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

// DocumentStore is the external similarity index. Upsert must treat a
// duplicate record ID as a silent skip, not an error.
type DocumentStore interface {
	Upsert(ctx context.Context, record domain.Record) (inserted bool, err error)
	Query(ctx context.Context, text string, limit int) ([]domain.RetrievedDocument, error)
}

// LanguageModel turns one composed prompt into one completion. Each call is
// a stateless single-turn exchange.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AlertSource fetches the active alerts feed for the configured area.
type AlertSource interface {
	ActiveAlerts(ctx context.Context) ([]domain.Alert, error)
}

// RecordRepository persists ingested record metadata for the status surface.
type RecordRepository interface {
	Insert(ctx context.Context, record domain.Record) (inserted bool, err error)
	CountByType(ctx context.Context) (map[string]int, error)
	SampleRecent(ctx context.Context, limit int) ([]domain.RecordSample, error)
}

// TextExtractor extracts plain text from a local document file. Supports
// reports whether the file's format has a registered extractor variant.
type TextExtractor interface {
	Supports(path string) bool
	Extract(ctx context.Context, path string) (string, error)
}

// Chunker splits long document text into excerpt-sized pieces.
type Chunker interface {
	Split(text string) []string
}

// MessageQueue carries corpus refresh notifications from the collector to
// the running API.
type MessageQueue interface {
	PublishCorpusRefresh(ctx context.Context, reason string) error
	SubscribeCorpusRefresh(ctx context.Context, handler func(context.Context, string) error) error
}
