package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tdis/disaster-chatbot/internal/core/domain"
	"github.com/tdis/disaster-chatbot/internal/core/ports"
)

// LoadMetrics observes corpus load lifecycle for instrumentation.
type LoadMetrics interface {
	StartLoad()
	FinishLoad(report *domain.IngestReport, duration time.Duration, err error)
}

// CorpusManager owns the readiness state machine. Readiness only moves
// not_loaded -> loading -> {loaded|failed}; a load runs at most once at a
// time, enforced by a check-and-set under the mutex rather than a bare
// check-then-set in the handlers.
type CorpusManager struct {
	loader  ports.CorpusLoader
	logger  *slog.Logger
	metrics LoadMetrics

	mu          sync.Mutex
	state       domain.CorpusState
	errMsg      string
	loadedAt    time.Time
	recordCount int
	inFlight    bool
}

func NewCorpusManager(loader ports.CorpusLoader, logger *slog.Logger, metrics LoadMetrics) *CorpusManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &CorpusManager{
		loader:  loader,
		logger:  logger,
		metrics: metrics,
		state:   domain.CorpusNotLoaded,
	}
}

// TriggerLoad starts one background load when the corpus is not loaded or a
// previous load failed. It returns immediately.
func (m *CorpusManager) TriggerLoad(ctx context.Context) {
	m.start(ctx, false)
}

// Refresh re-runs ingestion. When the corpus is already loaded the state
// stays loaded for the duration; deterministic record IDs make the pass
// additive.
func (m *CorpusManager) Refresh(ctx context.Context) {
	m.start(ctx, true)
}

func (m *CorpusManager) start(ctx context.Context, allowWhenLoaded bool) {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return
	}
	if m.state == domain.CorpusLoaded && !allowWhenLoaded {
		m.mu.Unlock()
		return
	}
	if m.state != domain.CorpusLoaded {
		m.state = domain.CorpusLoading
		m.errMsg = ""
	}
	m.inFlight = true
	m.mu.Unlock()

	// The load outlives the triggering request.
	go m.run(context.WithoutCancel(ctx))
}

func (m *CorpusManager) run(ctx context.Context) {
	start := time.Now()
	if m.metrics != nil {
		m.metrics.StartLoad()
	}

	report, err := m.loader.LoadCorpus(ctx)

	if m.metrics != nil {
		m.metrics.FinishLoad(report, time.Since(start), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if err != nil {
		if m.state != domain.CorpusLoaded {
			m.state = domain.CorpusFailed
		}
		m.errMsg = err.Error()
		m.logger.Error("corpus_load_failed", "error", err)
		return
	}

	m.state = domain.CorpusLoaded
	m.errMsg = ""
	m.loadedAt = time.Now().UTC()
	if report != nil {
		m.recordCount += report.Ingested
		m.logger.Info("corpus_loaded",
			"ingested", report.Ingested,
			"skipped", report.Skipped,
			"failures", len(report.Failures),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	}
}

func (m *CorpusManager) Snapshot() domain.CorpusSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.CorpusSnapshot{
		State:       m.state,
		Error:       m.errMsg,
		LoadedAt:    m.loadedAt,
		RecordCount: m.recordCount,
	}
}
