package ports

import (
	"context"
	"time"

	"NewsletterDigest/internal/domain"
)

// SubscriberStore reads and writes subscriber documents in the external
// document store and produces the per-run grouping snapshot.
type SubscriberStore interface {
	GroupedByCountryAndLanguage(ctx context.Context) (domain.SubscriberGroups, error)
	List(ctx context.Context) ([]domain.Subscriber, error)
	Get(ctx context.Context, email string) (domain.Subscriber, error)
	Add(ctx context.Context, sub domain.Subscriber) error
	Update(ctx context.Context, sub domain.Subscriber) error
	Delete(ctx context.Context, email string) error
}

// CompletionClient issues single-turn prompts to an LLM API and returns the
// raw text reply. No conversation state, no retries.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ArticleScraper turns configured news sources into scraped articles for a
// target language. Sources that fail or produce nothing are simply omitted.
type ArticleScraper interface {
	ScrapeAll(ctx context.Context, sources []domain.NewsSource, language string) []domain.Article
}

// Translator rewrites articles into a target language. Articles whose
// translation fails are dropped from the result.
type Translator interface {
	TranslateAll(ctx context.Context, articles []domain.Article, language string) []domain.Article
}

// Dispatcher fans a set of translated articles out to recipient addresses.
// Individual send failures are isolated per recipient.
type Dispatcher interface {
	SendEmails(ctx context.Context, recipients []string, articles []domain.Article) error
}

// MailSender delivers a single rendered message over the mail transport.
type MailSender interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// Scheduler controls when newsletter runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
