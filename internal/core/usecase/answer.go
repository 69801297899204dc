package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
	"github.com/tdis/disaster-chatbot/internal/core/ports"
)

const (
	defaultTopK              = 3
	defaultRetrievalTimeout  = 10 * time.Second
	defaultCompletionTimeout = 30 * time.Second
)

type AnswerUseCase struct {
	store  ports.DocumentStore
	model  ports.LanguageModel
	corpus ports.CorpusManager

	topK              int
	retrievalTimeout  time.Duration
	completionTimeout time.Duration
}

func NewAnswerUseCase(
	store ports.DocumentStore,
	model ports.LanguageModel,
	corpus ports.CorpusManager,
	topK int,
) *AnswerUseCase {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &AnswerUseCase{
		store:             store,
		model:             model,
		corpus:            corpus,
		topK:              topK,
		retrievalTimeout:  defaultRetrievalTimeout,
		completionTimeout: defaultCompletionTimeout,
	}
}

// Answer runs the retrieval-augmented pipeline for one question. When the
// corpus is not loaded, or retrieval yields nothing, the prompt degrades to
// the static description alone; that is not an error.
func (uc *AnswerUseCase) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("question is empty"))
	}

	contexts, err := uc.retrieveContext(ctx, question)
	if err != nil {
		return nil, err
	}

	prompt := buildAnswerPrompt(question, contexts)

	completionCtx, cancel := context.WithTimeout(ctx, uc.completionTimeout)
	defer cancel()

	text, err := uc.model.Complete(completionCtx, prompt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpstream, "generate completion", err)
	}
	return &domain.Answer{
		Text:         strings.TrimSpace(text),
		ContextCount: len(contexts),
	}, nil
}

func (uc *AnswerUseCase) retrieveContext(ctx context.Context, question string) ([]string, error) {
	if !uc.corpus.Snapshot().Loaded() {
		return nil, nil
	}

	retrievalCtx, cancel := context.WithTimeout(ctx, uc.retrievalTimeout)
	defer cancel()

	docs, err := uc.store.Query(retrievalCtx, question, uc.topK)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUpstream, "query document store", err)
	}

	contexts := make([]string, 0, len(docs))
	for _, doc := range docs {
		contexts = append(contexts, doc.Text)
	}
	return contexts, nil
}
