package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tdis/disaster-chatbot/internal/collector"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/queue/nats"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/resilience"
	"github.com/tdis/disaster-chatbot/internal/infrastructure/weather/nws"
	"github.com/tdis/disaster-chatbot/internal/observability/logging"
)

func main() {
	cfg := collector.DefaultConfig()

	configFile := flag.String("config", "", "YAML config file overriding flag defaults")
	countyFile := flag.String("county-file", "", "path to the county centroid CSV file")
	sample := flag.Bool("sample", false, "use the bundled 3-county sample instead of a file")
	maxWorkers := flag.Int("max-workers", cfg.MaxWorkers, "concurrent county lookups")
	outputDir := flag.String("output-dir", cfg.OutputDir, "directory for output artifacts")
	includeAlerts := flag.Bool("include-alerts", false, "cross-reference active NWS alerts")
	notify := flag.Bool("notify", false, "publish a corpus refresh notification after a successful run")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	if *configFile != "" {
		if err := collector.LoadConfigFile(*configFile, &cfg); err != nil {
			log.Fatalf("config error: %v", err)
		}
	}
	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "county-file":
			cfg.CountyFile = *countyFile
		case "sample":
			cfg.Sample = *sample
		case "max-workers":
			cfg.MaxWorkers = *maxWorkers
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "include-alerts":
			cfg.IncludeAlerts = *includeAlerts
		case "notify":
			cfg.Notify = *notify
		}
	})

	logger := logging.NewJSONLogger("collector", *logLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("collector error: %v", err)
	}
}

func run(ctx context.Context, cfg collector.Config, logger *slog.Logger) error {
	countyFile := cfg.CountyFile
	if cfg.Sample {
		path, err := collector.WriteSampleCountyFile(cfg.OutputDir)
		if err != nil {
			return err
		}
		logger.Info("created sample county file", "path", path)
		countyFile = path
	}
	if countyFile == "" {
		return fmt.Errorf("no county file: pass -county-file or -sample")
	}

	counties, err := collector.LoadCounties(countyFile)
	if err != nil {
		return err
	}
	logger.Info("loaded counties", "count", len(counties), "file", countyFile)

	client := nws.New(cfg.BaseURL, nws.Options{RequestsPerSecond: cfg.RequestsPerSec})
	sweep := collector.New(client, client, cfg.MaxWorkers, cfg.IncludeAlerts, logger)

	start := time.Now()
	results := sweep.Run(ctx, counties)
	logger.Info("county sweep complete",
		"succeeded", len(results),
		"failed", len(counties)-len(results),
		"duration", time.Since(start).String())

	if err := collector.WriteOutputs(cfg.OutputDir, results, time.Now()); err != nil {
		return err
	}
	logger.Info("outputs written", "output_dir", cfg.OutputDir)

	if cfg.Notify {
		queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
		})
		if err != nil {
			return fmt.Errorf("init message queue: %w", err)
		}
		defer queue.Close()

		reason := fmt.Sprintf("weather sweep: %d counties", len(results))
		if err := queue.PublishCorpusRefresh(ctx, reason); err != nil {
			return fmt.Errorf("publish corpus refresh: %w", err)
		}
		logger.Info("published corpus refresh", "subject", cfg.NATSSubject)
	}
	return nil
}
