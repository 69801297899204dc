package usecase

import (
	"context"
	"fmt"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
	"github.com/tdis/disaster-chatbot/internal/core/ports"
)

const statusSampleLimit = 5

type CorpusStatusUseCase struct {
	repo ports.RecordRepository
}

func NewCorpusStatusUseCase(repo ports.RecordRepository) *CorpusStatusUseCase {
	return &CorpusStatusUseCase{repo: repo}
}

// Status returns record counts grouped by type plus a bounded metadata
// sample. Document text never crosses this surface.
func (uc *CorpusStatusUseCase) Status(ctx context.Context) (*domain.CorpusStatus, error) {
	counts, err := uc.repo.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records by type: %w", err)
	}

	samples, err := uc.repo.SampleRecent(ctx, statusSampleLimit)
	if err != nil {
		return nil, fmt.Errorf("sample recent records: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	if samples == nil {
		samples = []domain.RecordSample{}
	}
	if counts == nil {
		counts = map[string]int{}
	}

	return &domain.CorpusStatus{
		TotalDocuments:  total,
		DocumentTypes:   counts,
		SampleDocuments: samples,
	}, nil
}
