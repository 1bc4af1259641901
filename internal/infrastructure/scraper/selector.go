package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsletterDigest/internal/domain"
	"NewsletterDigest/internal/ports"
)

// Selector picks the most interesting headline from a source's listing page.
// One page fetch, one completion call per invocation.
type Selector struct {
	client *http.Client
	llm    ports.CompletionClient
}

// NewSelector wires an HTTP client and a completion client.
func NewSelector(client *http.Client, llm ports.CompletionClient) *Selector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Selector{client: client, llm: llm}
}

// SelectMostInteresting fetches the listing page, extracts headline/link
// pairs via the source's selectors, and asks the model to pick one for a
// reader of the given language. Content is left empty; filling it is the
// fetcher's job.
func (s *Selector) SelectMostInteresting(ctx context.Context, source domain.NewsSource, language string) (domain.Article, error) {
	doc, err := fetchDocument(ctx, s.client, source.URL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("fetch listing %s: %w", source.URL, err)
	}

	titles, links := extractCandidates(doc, source)
	if len(titles) == 0 {
		return domain.Article{}, fmt.Errorf("no headlines matched %q on %s", source.TitleSelector, source.URL)
	}

	reply, err := s.llm.Complete(ctx, buildSelectionPrompt(titles, language))
	if err != nil {
		return domain.Article{}, fmt.Errorf("selection completion: %w", err)
	}

	index, err := parseSelection(reply, len(titles))
	if err != nil {
		return domain.Article{}, err
	}

	// The title and link lists are correlated by position but can diverge in
	// length when the selectors match different element sets.
	link := ""
	if index < len(links) {
		link = links[index]
	}

	return domain.Article{Title: titles[index], Link: link}, nil
}

func extractCandidates(doc *goquery.Document, source domain.NewsSource) ([]string, []string) {
	var titles []string
	doc.Find(source.TitleSelector).Each(func(_ int, sel *goquery.Selection) {
		titles = append(titles, strings.TrimSpace(sel.Text()))
	})

	var links []string
	doc.Find(source.LinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		links = append(links, href)
	})

	return titles, links
}

func buildSelectionPrompt(titles []string, language string) string {
	var b strings.Builder
	b.WriteString("Below is a numbered list of news headlines. Pick the single most relevant one ")
	b.WriteString(fmt.Sprintf("for an immigrant who speaks %s, looking for context-giving, exciting local news.\n", language))
	b.WriteString("Reply with only the index and title in the exact form index:title, nothing else.\n\n")
	for i, title := range titles {
		b.WriteString(fmt.Sprintf("%d: %s\n", i, title))
	}
	return b.String()
}

// parseSelection decodes the model's index:title reply. Anything that is not
// a valid in-range integer before the first colon is a selection failure.
func parseSelection(reply string, count int) (int, error) {
	head, _, found := strings.Cut(strings.TrimSpace(reply), ":")
	if !found {
		return 0, fmt.Errorf("%w: no colon in %q", domain.ErrBadSelection, reply)
	}

	index, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an index", domain.ErrBadSelection, head)
	}

	if index < 0 || index >= count {
		return 0, fmt.Errorf("%w: index %d out of range [0,%d)", domain.ErrBadSelection, index, count)
	}

	return index, nil
}
