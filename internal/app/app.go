package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsletterDigest/internal/config"
	"NewsletterDigest/internal/domain"
	"NewsletterDigest/internal/infrastructure/llm"
	"NewsletterDigest/internal/infrastructure/mail"
	"NewsletterDigest/internal/infrastructure/scheduler"
	"NewsletterDigest/internal/infrastructure/scraper"
	"NewsletterDigest/internal/infrastructure/store"
	"NewsletterDigest/internal/infrastructure/translator"
	"NewsletterDigest/internal/logging"
	"NewsletterDigest/internal/scrape"
	"NewsletterDigest/internal/server"
	"NewsletterDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	scheduler *usecase.Scheduler
	server    *server.Server
	logger    *slog.Logger
}

// New builds a runnable application instance. Missing credentials or
// incomplete mail settings fail here, before any run starts.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("startup: %w", domain.ErrMissingAPIKey)
	}

	sender, err := mail.NewSMTPSender(cfg.Email)
	if err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}

	completion := llm.NewClient(cfg.OpenAI)

	registry := scrape.NewRegistry()
	registry.Register(scraper.NewCSSStrategy(
		scraper.NewSelector(nil, completion),
		scraper.NewFetcher(nil),
	))

	subscribers := store.NewClient(cfg.Store)

	newsletter := usecase.NewNewsletter(usecase.NewsletterDeps{
		Store:      subscribers,
		Scraper:    scraper.NewMultiScraper(registry, baseLogger.With("component", "scraper")),
		Translator: translator.New(completion, baseLogger.With("component", "translator")),
		Dispatcher: mail.NewDispatcher(sender, cfg.Email, baseLogger.With("component", "dispatcher")),
		Sources:    toNewsSources(cfg.Sources),
		Logger:     baseLogger.With("component", "newsletter"),
	})

	runs := usecase.NewScheduler(
		scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
		newsletter,
		cfg.Scheduler.RunTimeout,
		cfg.Scheduler.RunOnStart,
		baseLogger.With("component", "scheduler"),
	)

	api := server.New(subscribers, newsletter, baseLogger.With("component", "server"))

	return &Application{
		cfg:       cfg,
		scheduler: runs,
		server:    api,
		logger:    baseLogger,
	}, nil
}

// Run starts the scheduler and the HTTP API, then blocks until the context
// is cancelled and both have shut down.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Start(a.cfg.Server.Port)
	}()

	select {
	case err := <-serverErr:
		_ = a.scheduler.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}
	return a.scheduler.Stop(shutdownCtx)
}

func toNewsSources(cfg []config.SourceConfig) []domain.NewsSource {
	sources := make([]domain.NewsSource, 0, len(cfg))
	for _, src := range cfg {
		sources = append(sources, domain.NewsSource{
			Type:            src.Type,
			URL:             src.URL,
			TitleSelector:   src.TitleSelector,
			LinkSelector:    src.LinkSelector,
			ContentSelector: src.ContentSelector,
			Country:         src.Country,
		})
	}
	return sources
}
