package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"NewsletterDigest/internal/domain"
	"NewsletterDigest/internal/ports"
)

// NewsletterDeps wires all driven adapters into the orchestration pipeline.
type NewsletterDeps struct {
	Store      ports.SubscriberStore
	Scraper    ports.ArticleScraper
	Translator ports.Translator
	Dispatcher ports.Dispatcher
	Sources    []domain.NewsSource
	Logger     *slog.Logger
}

// Newsletter drives one digest run: group subscribers, match each group to a
// source, scrape, translate, and dispatch — with every group isolated from
// its siblings.
type Newsletter struct {
	store      ports.SubscriberStore
	scraper    ports.ArticleScraper
	translator ports.Translator
	dispatcher ports.Dispatcher
	sources    []domain.NewsSource
	logger     *slog.Logger
}

// NewNewsletter constructs the orchestration component.
func NewNewsletter(deps NewsletterDeps) *Newsletter {
	return &Newsletter{
		store:      deps.Store,
		scraper:    deps.Scraper,
		translator: deps.Translator,
		dispatcher: deps.Dispatcher,
		sources:    deps.Sources,
		logger:     deps.Logger,
	}
}

// Run executes one newsletter run. Only the initial subscriber-snapshot
// fetch can fail the run as a whole; everything after is contained at the
// group boundary. Run returns once every group has settled.
func (n *Newsletter) Run(ctx context.Context) error {
	groups, err := n.store.GroupedByCountryAndLanguage(ctx)
	if err != nil {
		return fmt.Errorf("fetch subscriber groups: %w", err)
	}

	n.logger.Info("starting newsletter run", "subscribers", groups.Total())

	var wg sync.WaitGroup
	for country, byLanguage := range groups {
		for language, subscribers := range byLanguage {
			if len(subscribers) == 0 {
				continue
			}

			wg.Add(1)
			go func(country, language string, subscribers []domain.Subscriber) {
				defer wg.Done()
				n.processGroup(ctx, country, language, subscribers)
			}(country, language, subscribers)
		}
	}
	wg.Wait()

	n.logger.Info("newsletter run finished")
	return nil
}

// processGroup is the group isolation boundary: nothing below it, panics
// included, may escape and disturb sibling groups.
func (n *Newsletter) processGroup(ctx context.Context, country, language string, subscribers []domain.Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("group pipeline panicked", "country", country, "language", language, "panic", r)
		}
	}()

	source, ok := n.sourceFor(country)
	if !ok {
		n.logger.Warn("no source for group, skipping", "country", country, "language", language)
		return
	}

	articles := n.scraper.ScrapeAll(ctx, []domain.NewsSource{source}, language)
	if len(articles) == 0 {
		n.logger.Warn("no articles scraped, skipping group", "country", country, "language", language)
		return
	}

	translated := n.translator.TranslateAll(ctx, articles, language)
	if len(translated) == 0 {
		n.logger.Warn("no articles survived translation, skipping group", "country", country, "language", language)
		return
	}

	recipients := make([]string, 0, len(subscribers))
	for _, sub := range subscribers {
		recipients = append(recipients, sub.Email)
	}

	if err := n.dispatcher.SendEmails(ctx, recipients, translated); err != nil {
		n.logger.Error("dispatch failed for group", "country", country, "language", language, "error", err)
		return
	}

	n.logger.Info("group dispatched", "country", country, "language", language,
		"recipients", len(recipients), "articles", len(translated))
}

func (n *Newsletter) sourceFor(country string) (domain.NewsSource, bool) {
	for _, source := range n.sources {
		if strings.EqualFold(source.Country, country) {
			return source, true
		}
	}
	return domain.NewsSource{}, false
}
