package app

import (
	"context"
	"log/slog"
	"net/http"

	"FeedDigest/internal/clock"
	"FeedDigest/internal/config"
	"FeedDigest/internal/infrastructure/extract"
	"FeedDigest/internal/infrastructure/feed"
	"FeedDigest/internal/infrastructure/report"
	"FeedDigest/internal/infrastructure/storage"
	"FeedDigest/internal/infrastructure/translate"
	"FeedDigest/internal/logging"
	"FeedDigest/internal/ports"
	"FeedDigest/internal/usecase"
)

// Application wires configuration to adapters and the pipeline use case.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout()}
	wall := clock.NewWall(cfg.Location())

	var translator ports.Translator
	if cfg.Translator.Mode == "openai" {
		translator = translate.NewOpenAI(cfg.Translator.OpenAI, cfg.HTTP.Timeout(),
			baseLogger.With("component", "translator"))
	} else {
		translator = translate.NewPassthrough()
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:      feed.NewFetcher(httpClient, cfg.HTTP.UserAgent),
		Parser:       feed.NewParser(baseLogger.With("component", "parser")),
		Extractor:    extract.NewExtractor(httpClient, cfg.HTTP.UserAgent),
		Dedup:        store,
		Articles:     store,
		FeedState:    store,
		Translator:   translator,
		Reports:      report.NewWriter(cfg.Output.Dir, wall),
		Clock:        wall,
		Logger:       baseLogger.With("component", "pipeline"),
		SleepBetween: cfg.HTTP.SleepBetween(),
	})

	return &Application{cfg: cfg, logger: baseLogger, store: store, pipeline: pipeline}, nil
}

// Run performs a single pipeline execution over the configured feeds;
// repeated runs are driven by an external scheduler.
func (a *Application) Run(ctx context.Context) error {
	defer a.store.Close()

	written := a.pipeline.Run(ctx, a.cfg.Feeds)
	a.logger.Info("run complete", "feeds", len(a.cfg.Feeds), "reports", len(written))
	return nil
}
