package ports

import (
	"context"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
)

// ChatService is the inbound contract for grounded question answering.
type ChatService interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}

// CorpusLoader runs one best-effort corpus ingestion pass.
type CorpusLoader interface {
	LoadCorpus(ctx context.Context) (*domain.IngestReport, error)
}

// CorpusManager owns corpus readiness state. TriggerLoad and Refresh are
// fire-and-forget; Snapshot never blocks on a load in progress.
type CorpusManager interface {
	TriggerLoad(ctx context.Context)
	Refresh(ctx context.Context)
	Snapshot() domain.CorpusSnapshot
}

// CorpusStatusReader serves the bounded metadata view of the corpus.
type CorpusStatusReader interface {
	Status(ctx context.Context) (*domain.CorpusStatus, error)
}
