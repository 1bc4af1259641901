package translator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"NewsletterDigest/internal/domain"
	"NewsletterDigest/internal/ports"
)

const contentPromptTemplate = `Translate the following news article into %s and reformat it as clean HTML.
Wrap the key terms in <strong> tags so they stand out visually.
Do not include any links. Do not add commentary or preamble; output only the reformatted article.

---
%s
---`

const titlePromptTemplate = `Translate the following news headline into %s.
Reply with only the translated sentence, no quotes, no extra text.

%s`

// Translator rewrites scraped articles into a subscriber group's language
// with two independent completion calls per article.
type Translator struct {
	llm    ports.CompletionClient
	logger *slog.Logger
}

var _ ports.Translator = (*Translator)(nil)

// New wires a completion client.
func New(llm ports.CompletionClient, logger *slog.Logger) *Translator {
	return &Translator{llm: llm, logger: logger}
}

// Translate returns a new article with title and content replaced by their
// translations; the link is carried over unchanged.
func (t *Translator) Translate(ctx context.Context, article domain.Article, language string) (domain.Article, error) {
	content, err := t.llm.Complete(ctx, fmt.Sprintf(contentPromptTemplate, language, article.Content))
	if err != nil {
		return domain.Article{}, fmt.Errorf("translate content: %w", err)
	}

	title, err := t.llm.Complete(ctx, fmt.Sprintf(titlePromptTemplate, language, article.Title))
	if err != nil {
		return domain.Article{}, fmt.Errorf("translate title: %w", err)
	}

	return domain.Article{
		Title:   strings.TrimSpace(title),
		Content: stripFences(content),
		Link:    article.Link,
	}, nil
}

// TranslateAll translates every article concurrently. A failed translation
// drops only that article; losing one must not suppress the whole digest.
func (t *Translator) TranslateAll(ctx context.Context, articles []domain.Article, language string) []domain.Article {
	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		translated []domain.Article
	)

	for _, article := range articles {
		wg.Add(1)
		go func(article domain.Article) {
			defer wg.Done()

			result, err := t.Translate(ctx, article, language)
			if err != nil {
				t.logger.Error("translation failed, dropping article",
					"link", article.Link, "language", language, "error", err)
				return
			}

			mu.Lock()
			translated = append(translated, result)
			mu.Unlock()
		}(article)
	}

	wg.Wait()
	return translated
}

// stripFences removes literal markdown code-fence markers wherever they
// appear. A cleanup pass, not a structural parse.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```html", "")
	return strings.ReplaceAll(s, "```", "")
}
