package scraper

import (
	"context"
	"log/slog"
	"sync"

	"NewsletterDigest/internal/domain"
	"NewsletterDigest/internal/ports"
	"NewsletterDigest/internal/scrape"
)

const defaultStrategy = "css"

// MultiScraper runs the configured strategy for every source concurrently
// and collects the articles that survive. A failing source is logged and
// skipped; it never aborts scraping of its siblings.
type MultiScraper struct {
	registry *scrape.Registry
	logger   *slog.Logger
}

var _ ports.ArticleScraper = (*MultiScraper)(nil)

// NewMultiScraper wires the strategy registry.
func NewMultiScraper(registry *scrape.Registry, logger *slog.Logger) *MultiScraper {
	return &MultiScraper{registry: registry, logger: logger}
}

// ScrapeAll fans out over all sources and returns the successful articles in
// no particular order.
func (m *MultiScraper) ScrapeAll(ctx context.Context, sources []domain.NewsSource, language string) []domain.Article {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		articles []domain.Article
	)

	for _, source := range sources {
		wg.Add(1)
		go func(src domain.NewsSource) {
			defer wg.Done()

			article, ok := m.scrapeSource(ctx, src, language)
			if !ok {
				return
			}

			mu.Lock()
			articles = append(articles, article)
			mu.Unlock()
		}(source)
	}

	wg.Wait()
	return articles
}

// scrapeSource is the per-source isolation boundary: any error or panic
// below it is converted into an absent result.
func (m *MultiScraper) scrapeSource(ctx context.Context, source domain.NewsSource, language string) (article domain.Article, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("scrape panicked", "source", source.URL, "panic", r)
			article, ok = domain.Article{}, false
		}
	}()

	sourceType := source.Type
	if sourceType == "" {
		sourceType = defaultStrategy
	}

	strategy, err := m.registry.Resolve(sourceType)
	if err != nil {
		m.logger.Error("no strategy for source", "source", source.URL, "type", sourceType, "error", err)
		return domain.Article{}, false
	}

	article, err = strategy.Scrape(ctx, source, language)
	if err != nil {
		m.logger.Warn("source yielded no article", "source", source.URL, "language", language, "error", err)
		return domain.Article{}, false
	}

	return article, true
}
