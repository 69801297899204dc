package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tdis/disaster-chatbot/internal/config"
	"github.com/tdis/disaster-chatbot/internal/core/ports"
	"github.com/tdis/disaster-chatbot/internal/core/usecase"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/chunking"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/extractor"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/extractor/excel"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/extractor/pdf"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/extractor/plaintext"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/llm/openai"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/queue/nats"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/repository/postgres"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/resilience"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/vector/chroma"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/weather/nws"
	"github.com/tdis/disaster-chatbot/internal/observability/logging"
	"github.com/tdis/disaster-chatbot/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue         ports.MessageQueue
	ChatUC        ports.ChatService
	CorpusManager ports.CorpusManager
	StatusUC      ports.CorpusStatusReader
	HTTPMetrics   *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewRecordRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	var queue ports.MessageQueue
	var queueClose func()
	if cfg.NATSURL != "" {
		natsQueue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init message queue: %w", err)
		}
		queue = natsQueue
		queueClose = natsQueue.Close
	}

	llm := openai.New(cfg.OpenAIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, executor)
	vectorDB := chroma.New(cfg.ChromaURL, cfg.ChromaCollection)
	alerts := nws.New(cfg.WeatherAPIURL, nws.Options{})

	extractors := extractor.NewRegistry(
		plaintext.NewExtractor(),
		pdf.NewExtractor(),
		excel.NewExtractor(),
	)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	ingestMetrics := metrics.NewIngestMetrics(httpMetrics.Registry(), "api")

	ingestUC := usecase.NewIngestUseCase(alerts, vectorDB, repo, extractors, chunker, cfg.DocumentsDir, logger)
	corpusManager := usecase.NewCorpusManager(ingestUC, logger, ingestMetrics)
	chatUC := usecase.NewAnswerUseCase(vectorDB, llm, corpusManager, cfg.RAGTopK)
	statusUC := usecase.NewCorpusStatusUseCase(repo)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:         queue,
		ChatUC:        chatUC,
		CorpusManager: corpusManager,
		StatusUC:      statusUC,
		HTTPMetrics:   httpMetrics,

		closeFn: func() {
			if queueClose != nil {
				queueClose()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
