package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
	"github.com/tdis/disaster-chatbot/internal/core/ports"
)

// IngestUseCase loads the corpus from zero or more sources: the remote
// alerts feed and a local documents directory. A failing record is logged
// and accumulated, never aborting the batch; the pass only fails when every
// configured source fails outright.
type IngestUseCase struct {
	alerts    ports.AlertSource
	store     ports.DocumentStore
	repo      ports.RecordRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
	docsDir   string
	logger    *slog.Logger
}

func NewIngestUseCase(
	alerts ports.AlertSource,
	store ports.DocumentStore,
	repo ports.RecordRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	docsDir string,
	logger *slog.Logger,
) *IngestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		alerts:    alerts,
		store:     store,
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		docsDir:   docsDir,
		logger:    logger,
	}
}

func (uc *IngestUseCase) LoadCorpus(ctx context.Context) (*domain.IngestReport, error) {
	report := &domain.IngestReport{}

	var attempted, failed int
	var sourceErrs []error

	if uc.alerts != nil {
		attempted++
		if err := uc.loadAlerts(ctx, report); err != nil {
			failed++
			sourceErrs = append(sourceErrs, fmt.Errorf("alerts feed: %w", err))
			uc.logger.Error("ingest_source_failed", "source", "alerts", "error", err)
		}
	}

	if uc.docsDir != "" {
		attempted++
		if err := uc.loadLocalDocuments(ctx, report); err != nil {
			failed++
			sourceErrs = append(sourceErrs, fmt.Errorf("documents dir: %w", err))
			uc.logger.Error("ingest_source_failed", "source", "documents", "error", err)
		}
	}

	if attempted > 0 && failed == attempted {
		return report, domain.WrapError(domain.ErrUpstream, "load corpus", errors.Join(sourceErrs...))
	}
	return report, nil
}

func (uc *IngestUseCase) loadAlerts(ctx context.Context, report *domain.IngestReport) error {
	alerts, err := uc.alerts.ActiveAlerts(ctx)
	if err != nil {
		return err
	}
	for _, alert := range alerts {
		uc.ingestRecord(ctx, alertRecord(alert), report)
	}
	return nil
}

func (uc *IngestUseCase) loadLocalDocuments(ctx context.Context, report *domain.IngestReport) error {
	return filepath.WalkDir(uc.docsDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !uc.extractor.Supports(path) {
			return nil
		}

		records, extractErr := uc.documentRecords(ctx, path, entry)
		if extractErr != nil {
			report.AddFailure(path, extractErr)
			uc.logger.Warn("ingest_record_failed", "record", path, "error", extractErr)
			return nil
		}
		for _, record := range records {
			uc.ingestRecord(ctx, record, report)
		}
		return nil
	})
}

// documentRecords turns one file into one or more excerpt records. Excerpt
// IDs are derived from the relative path (plus excerpt index when split), so
// re-walking the directory dedupes naturally.
func (uc *IngestUseCase) documentRecords(ctx context.Context, path string, entry fs.DirEntry) ([]domain.Record, error) {
	text, err := uc.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty extracted text")
	}

	rel, err := filepath.Rel(uc.docsDir, path)
	if err != nil {
		rel = path
	}
	baseID := "doc:" + filepath.ToSlash(rel)

	modified := time.Now().UTC()
	if info, infoErr := entry.Info(); infoErr == nil {
		modified = info.ModTime().UTC()
	}

	excerpts := []string{text}
	if uc.chunker != nil {
		if split := uc.chunker.Split(text); len(split) > 0 {
			excerpts = split
		}
	}

	records := make([]domain.Record, 0, len(excerpts))
	for i, excerpt := range excerpts {
		id := baseID
		if len(excerpts) > 1 {
			id = fmt.Sprintf("%s#%d", baseID, i)
		}
		records = append(records, domain.Record{
			ID:           id,
			Type:         domain.RecordTypeDocument,
			Text:         excerpt,
			Filename:     entry.Name(),
			LastModified: modified,
		})
	}
	return records, nil
}

func (uc *IngestUseCase) ingestRecord(ctx context.Context, record domain.Record, report *domain.IngestReport) {
	inserted, err := uc.store.Upsert(ctx, record)
	if err != nil {
		report.AddFailure(record.ID, err)
		uc.logger.Warn("ingest_record_failed", "record", record.ID, "error", err)
		return
	}
	if !inserted {
		report.Skipped++
		return
	}

	if uc.repo != nil {
		if _, err := uc.repo.Insert(ctx, record); err != nil {
			// Metadata bookkeeping is best-effort; the record is searchable.
			uc.logger.Warn("record_metadata_insert_failed", "record", record.ID, "error", err)
		}
	}
	report.Ingested++
}

func alertRecord(alert domain.Alert) domain.Record {
	text := strings.TrimSpace(alert.Headline + " " + alert.Description)

	modified := time.Now().UTC()
	if alert.Sent != "" {
		if sent, err := time.Parse(time.RFC3339, alert.Sent); err == nil {
			modified = sent.UTC()
		}
	}

	location := alert.AreaDesc
	if location == "" {
		location = "Unknown"
	}
	disasterType := alert.Event
	if disasterType == "" {
		disasterType = "General"
	}

	return domain.Record{
		ID:           alert.ID,
		Type:         domain.RecordTypeAlert,
		Text:         text,
		Location:     location,
		DisasterType: disasterType,
		Link:         alert.Link,
		LastModified: modified,
	}
}
