package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsletterDigest/internal/domain"
)

type fakeStore struct {
	groups domain.SubscriberGroups
	err    error
}

func (f *fakeStore) GroupedByCountryAndLanguage(context.Context) (domain.SubscriberGroups, error) {
	return f.groups, f.err
}

func (f *fakeStore) List(context.Context) ([]domain.Subscriber, error)      { return nil, nil }
func (f *fakeStore) Get(context.Context, string) (domain.Subscriber, error) { return domain.Subscriber{}, nil }
func (f *fakeStore) Add(context.Context, domain.Subscriber) error           { return nil }
func (f *fakeStore) Update(context.Context, domain.Subscriber) error        { return nil }
func (f *fakeStore) Delete(context.Context, string) error                   { return nil }

type fakeScraper struct {
	mu    sync.Mutex
	calls []domain.NewsSource
	fn    func(source domain.NewsSource, language string) []domain.Article
}

func (f *fakeScraper) ScrapeAll(_ context.Context, sources []domain.NewsSource, language string) []domain.Article {
	f.mu.Lock()
	f.calls = append(f.calls, sources...)
	f.mu.Unlock()

	var articles []domain.Article
	for _, source := range sources {
		articles = append(articles, f.fn(source, language)...)
	}
	return articles
}

type passthroughTranslator struct{}

func (passthroughTranslator) TranslateAll(_ context.Context, articles []domain.Article, language string) []domain.Article {
	translated := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		article.Title = language + ": " + article.Title
		translated = append(translated, article)
	}
	return translated
}

type recordingDispatcher struct {
	mu    sync.Mutex
	sends map[string][]string // joined recipients per call, keyed by first article title
	err   error
}

func (r *recordingDispatcher) SendEmails(_ context.Context, recipients []string, articles []domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sends == nil {
		r.sends = map[string][]string{}
	}
	r.sends[articles[0].Title] = recipients
	return r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paSource() domain.NewsSource {
	return domain.NewsSource{URL: "https://news.pa.example", Country: "PA"}
}

func subscribers(country, language string, emails ...string) []domain.Subscriber {
	subs := make([]domain.Subscriber, 0, len(emails))
	for _, email := range emails {
		subs = append(subs, domain.Subscriber{Email: email, Language: language, CountryOfResidence: country})
	}
	return subs
}

func TestRunDispatchesPerGroup(t *testing.T) {
	t.Parallel()

	groups := domain.SubscriberGroups{
		"PA": {
			"es": subscribers("PA", "es", "ana@example.com", "carla@example.com"),
			"en": subscribers("PA", "en", "bob@example.com"),
		},
	}

	scraper := &fakeScraper{fn: func(source domain.NewsSource, _ string) []domain.Article {
		return []domain.Article{{Title: "story", Content: "body", Link: source.URL + "/a"}}
	}}
	dispatcher := &recordingDispatcher{}

	n := NewNewsletter(NewsletterDeps{
		Store:      &fakeStore{groups: groups},
		Scraper:    scraper,
		Translator: passthroughTranslator{},
		Dispatcher: dispatcher,
		Sources:    []domain.NewsSource{paSource()},
		Logger:     discardLogger(),
	})

	require.NoError(t, n.Run(context.Background()))

	require.Len(t, dispatcher.sends, 2, "one dispatch per (country, language) group")
	assert.ElementsMatch(t, []string{"ana@example.com", "carla@example.com"}, dispatcher.sends["es: story"])
	assert.ElementsMatch(t, []string{"bob@example.com"}, dispatcher.sends["en: story"])
}

func TestRunMatchesSourceCaseInsensitively(t *testing.T) {
	t.Parallel()

	groups := domain.SubscriberGroups{
		"pa": {"es": subscribers("pa", "es", "ana@example.com")},
	}

	scraper := &fakeScraper{fn: func(source domain.NewsSource, _ string) []domain.Article {
		return []domain.Article{{Title: "story", Content: "body", Link: "l"}}
	}}
	dispatcher := &recordingDispatcher{}

	n := NewNewsletter(NewsletterDeps{
		Store:      &fakeStore{groups: groups},
		Scraper:    scraper,
		Translator: passthroughTranslator{},
		Dispatcher: dispatcher,
		Sources:    []domain.NewsSource{paSource()},
		Logger:     discardLogger(),
	})

	require.NoError(t, n.Run(context.Background()))
	assert.Len(t, dispatcher.sends, 1)
}

func TestRunSkipsGroupWithoutSource(t *testing.T) {
	t.Parallel()

	groups := domain.SubscriberGroups{
		"CR": {"es": subscribers("CR", "es", "dan@example.com")},
	}

	scraper := &fakeScraper{fn: func(domain.NewsSource, string) []domain.Article { return nil }}
	dispatcher := &recordingDispatcher{}

	n := NewNewsletter(NewsletterDeps{
		Store:      &fakeStore{groups: groups},
		Scraper:    scraper,
		Translator: passthroughTranslator{},
		Dispatcher: dispatcher,
		Sources:    []domain.NewsSource{paSource()},
		Logger:     discardLogger(),
	})

	require.NoError(t, n.Run(context.Background()), "an unmatched group is a skip, not a run failure")
	assert.Empty(t, scraper.calls, "no scrape without a matching source")
	assert.Empty(t, dispatcher.sends)
}

func TestRunSkipsEmptyBuckets(t *testing.T) {
	t.Parallel()

	groups := domain.SubscriberGroups{
		"PA": {"es": nil},
	}

	scraper := &fakeScraper{fn: func(domain.NewsSource, string) []domain.Article {
		return []domain.Article{{Title: "t", Content: "c", Link: "l"}}
	}}
	dispatcher := &recordingDispatcher{}

	n := NewNewsletter(NewsletterDeps{
		Store:      &fakeStore{groups: groups},
		Scraper:    scraper,
		Translator: passthroughTranslator{},
		Dispatcher: dispatcher,
		Sources:    []domain.NewsSource{paSource()},
		Logger:     discardLogger(),
	})

	require.NoError(t, n.Run(context.Background()))
	assert.Empty(t, scraper.calls, "empty buckets never trigger a scrape")
}

func TestRunIsolatesGroupFailures(t *testing.T) {
	t.Parallel()

	groups := domain.SubscriberGroups{
		"PA": {"es": subscribers("PA", "es", "ana@example.com")},
		"CR": {"es": subscribers("CR", "es", "dan@example.com")},
	}

	scraper := &fakeScraper{fn: func(source domain.NewsSource, _ string) []domain.Article {
		if source.Country == "CR" {
			panic("scrape blew up")
		}
		return []domain.Article{{Title: "story", Content: "body", Link: "l"}}
	}}
	dispatcher := &recordingDispatcher{}

	n := NewNewsletter(NewsletterDeps{
		Store:      &fakeStore{groups: groups},
		Scraper:    scraper,
		Translator: passthroughTranslator{},
		Dispatcher: dispatcher,
		Sources: []domain.NewsSource{
			paSource(),
			{URL: "https://news.cr.example", Country: "CR"},
		},
		Logger: discardLogger(),
	})

	require.NoError(t, n.Run(context.Background()), "a failing group must not fail the run")
	require.Len(t, dispatcher.sends, 1, "the healthy group still receives mail")
	assert.ElementsMatch(t, []string{"ana@example.com"}, dispatcher.sends["es: story"])
}

func TestRunFailsWhenStoreUnreachable(t *testing.T) {
	t.Parallel()

	n := NewNewsletter(NewsletterDeps{
		Store:      &fakeStore{err: fmt.Errorf("store down")},
		Scraper:    &fakeScraper{fn: func(domain.NewsSource, string) []domain.Article { return nil }},
		Translator: passthroughTranslator{},
		Dispatcher: &recordingDispatcher{},
		Logger:     discardLogger(),
	})

	require.Error(t, n.Run(context.Background()))
}

func TestRunSkipsGroupWhenNothingScraped(t *testing.T) {
	t.Parallel()

	groups := domain.SubscriberGroups{
		"PA": {"es": subscribers("PA", "es", "ana@example.com")},
	}

	dispatcher := &recordingDispatcher{}
	n := NewNewsletter(NewsletterDeps{
		Store:      &fakeStore{groups: groups},
		Scraper:    &fakeScraper{fn: func(domain.NewsSource, string) []domain.Article { return nil }},
		Translator: passthroughTranslator{},
		Dispatcher: dispatcher,
		Sources:    []domain.NewsSource{paSource()},
		Logger:     discardLogger(),
	})

	require.NoError(t, n.Run(context.Background()))
	assert.Empty(t, dispatcher.sends)
}
