package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"CampusFeed/internal/config"
	"CampusFeed/internal/infrastructure/httpapi"
	"CampusFeed/internal/infrastructure/llm"
	"CampusFeed/internal/infrastructure/ml"
	"CampusFeed/internal/infrastructure/parser"
	"CampusFeed/internal/infrastructure/scheduler"
	"CampusFeed/internal/infrastructure/storage"
	"CampusFeed/internal/infrastructure/telegram"
	"CampusFeed/internal/infrastructure/web"
	"CampusFeed/internal/logging"
	"CampusFeed/internal/metrics"
	"CampusFeed/internal/ports"
	"CampusFeed/internal/source"
	"CampusFeed/internal/usecase"
)

const stopTimeout = 15 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	metrics   *metrics.Collector
	closers   []func() error
	pipeline  *usecase.Pipeline
	refresher *usecase.Refresher
	scheduler *usecase.Scheduler
	handler   http.Handler
}

type repositories struct {
	content ports.ContentRepository
	users   ports.UserRepository
}

// New builds every component from cfg. Close releases what New opened.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{cfg: cfg, logger: baseLogger, metrics: metrics.New()}

	repos, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	completer, err := a.newCompleter(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	vocabulary := usecase.NewVocabulary(cfg.Enrichment.Vocabulary, cfg.Enrichment.FallbackTag)
	enricher := usecase.NewEnricher(usecase.EnricherDeps{
		Completer: completer,
		Pacer:     usecase.NewPacer(cfg.Enrichment.Delay),
		Config: usecase.EnricherConfig{
			Vocabulary:        vocabulary,
			Summarize:         cfg.Enrichment.Summarize,
			SummaryLanguage:   cfg.Enrichment.SummaryLanguage,
			SummarySentences:  cfg.Enrichment.SummarySentences,
			SummaryInputLimit: cfg.Enrichment.SummaryInputLimit,
			MinBodyForSummary: cfg.Enrichment.MinBodyForSummary,
		},
		Logger:  baseLogger.With("component", "enricher"),
		Metrics: a.metrics,
	})

	registry := source.NewRegistry()
	registry.Register(parser.NewCSVReader())
	registry.Register(parser.NewTSVReader())
	records := parser.NewFileSource(registry, cfg.Ingestion.Imports, cfg.Ingestion.Columns, baseLogger.With("component", "source"))

	normalizer := source.NewNormalizer(source.Policy{
		ActivitySampleRate: cfg.Ingestion.ActivitySampleRate,
		DefaultSource:      cfg.Ingestion.DefaultSource,
		PlaceholderTitles:  cfg.Ingestion.PlaceholderTitles,
		FallbackImages:     cfg.Ingestion.FallbackImages,
		Location:           cfg.Ingestion.Location(),
	}, nil)

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID); tg.Configured() {
		notifier = tg
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     records,
		Normalizer: normalizer,
		Repository: repos.content,
		Guard: usecase.NewGuard(repos.content, usecase.GuardConfig{
			Threshold:        cfg.Ingestion.GuardThreshold,
			MinActivityRatio: cfg.Ingestion.MinActivityRatio,
		}, baseLogger.With("component", "guard"), a.metrics),
		Enricher: enricher,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "pipeline"),
		Metrics:  a.metrics,
	})

	a.refresher = usecase.NewRefresher(
		repos.content,
		web.NewPageFetcher(cfg.Inference.Timeout, baseLogger.With("component", "fetcher")),
		enricher,
		usecase.NewPacer(cfg.Enrichment.Delay),
		cfg.Enrichment.MinBodyForSummary,
		baseLogger.With("component", "refresher"),
	)

	a.scheduler = usecase.NewScheduler(scheduler.NewBackgroundRunner(), a.pipeline, baseLogger.With("component", "scheduler"))

	ranker := usecase.NewRanker(completer, usecase.RankerConfig{
		Timeout:    cfg.Ranking.Timeout,
		PrefixSize: cfg.Ranking.PrefixSize,
	}, baseLogger.With("component", "ranker"), a.metrics)

	a.handler = httpapi.NewRouter(httpapi.Deps{
		Feed: usecase.NewFeedComposer(repos.content, repos.users, ranker, cfg.Feed.DefaultLimit, baseLogger.With("component", "feed")),
		Accounts: usecase.NewAccounts(usecase.AccountsDeps{
			Users:     repos.users,
			Content:   repos.content,
			Completer: completer,
			Config: usecase.AccountsConfig{
				MaxInterestLength:   cfg.Accounts.MaxInterestLength,
				MaxSuggestions:      cfg.Accounts.MaxSuggestions,
				FallbackSuggestions: cfg.Accounts.FallbackSuggestions,
			},
			Logger: baseLogger.With("component", "accounts"),
		}),
		Catalog: usecase.NewCatalog(repos.content, vocabulary, nil),
		Metrics: a.metrics,
		Logger:  baseLogger.With("component", "http"),
	})

	return a, nil
}

func (a *Application) openStorage(ctx context.Context) (repositories, error) {
	if a.cfg.Database.Driver == config.DriverMemory {
		a.logger.Warn("using in-memory storage, data is lost on exit")
		store := storage.NewMemoryStore()
		return repositories{content: store, users: store}, nil
	}

	db, err := sql.Open("postgres", a.cfg.Database.DSN)
	if err != nil {
		return repositories{}, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(a.cfg.Database.MaxOpenConns)
	a.closers = append(a.closers, db.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = a.Close()
		return repositories{}, fmt.Errorf("ping database: %w", err)
	}

	if a.cfg.Database.AutoMigrate {
		if err := storage.Migrate(a.cfg.Database.DSN, a.logger); err != nil {
			_ = a.Close()
			return repositories{}, err
		}
	}

	return repositories{
		content: storage.NewPostgresRepository(db),
		users:   storage.NewPostgresUsers(db),
	}, nil
}

// newCompleter selects the inference provider. A provider without credentials
// yields nil, and every inference-backed step falls back.
func (a *Application) newCompleter(ctx context.Context) (ports.Completer, error) {
	timeout := a.cfg.Inference.Timeout

	switch a.cfg.Inference.Provider {
	case config.ProviderChatGPT:
		if a.cfg.ChatGPT.APIKey == "" {
			a.logger.Warn("chatgpt api key missing, inference disabled")
			return nil, nil
		}
		return llm.NewChatGPTClient(a.cfg.ChatGPT, timeout), nil
	case config.ProviderML:
		if a.cfg.ML.InferenceURL == "" {
			a.logger.Warn("ml inference url missing, inference disabled")
			return nil, nil
		}
		return ml.NewClient(a.cfg.ML, timeout), nil
	default:
		if a.cfg.Gemini.APIKey == "" {
			a.logger.Warn("gemini api key missing, inference disabled")
			return nil, nil
		}
		client, err := llm.NewGeminiClient(ctx, a.cfg.Gemini, timeout)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	}
}

// Handler exposes the HTTP router, mostly for tests.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Serve runs the HTTP server until ctx ends. With ingestion.runOnStart the
// pipeline runs once in the background.
func (a *Application) Serve(ctx context.Context) error {
	if a.cfg.Ingestion.RunOnStart {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start ingestion: %w", err)
		}
	}

	serveErr := httpapi.NewServer(a.cfg.Server, a.handler, a.logger.With("component", "server")).Run(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	stopErr := a.scheduler.Stop(stopCtx)

	return errors.Join(serveErr, stopErr)
}

// Ingest runs the pipeline once in the foreground.
func (a *Application) Ingest(ctx context.Context) (usecase.Report, error) {
	return a.pipeline.Run(ctx)
}

// Refresh runs the image and summary refresh pass once.
func (a *Application) Refresh(ctx context.Context) (usecase.RefreshReport, error) {
	return a.refresher.Run(ctx)
}

// Close releases database handles and provider clients.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Migrate applies schema migrations without building the rest of the application.
func Migrate(cfg config.Config, logger *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need the %s driver, configured %s", config.DriverPostgres, cfg.Database.Driver)
	}
	return storage.Migrate(cfg.Database.DSN, logger)
}
