package scraper

import (
	"context"
	"fmt"

	"NewsletterDigest/internal/domain"
)

// CSSStrategy scrapes selector-driven sources: headline selection on the
// listing page followed by a content fetch of the chosen article.
type CSSStrategy struct {
	selector *Selector
	fetcher  *Fetcher
}

// NewCSSStrategy composes the headline selector and the content fetcher.
func NewCSSStrategy(selector *Selector, fetcher *Fetcher) *CSSStrategy {
	return &CSSStrategy{selector: selector, fetcher: fetcher}
}

// Name identifies the strategy inside the registry.
func (c *CSSStrategy) Name() string {
	return "css"
}

// Scrape produces at most one article for the source. Every failure mode
// (fetch, selection, empty content) surfaces as an error for the caller to
// contain; none of them abort sibling sources.
func (c *CSSStrategy) Scrape(ctx context.Context, source domain.NewsSource, language string) (domain.Article, error) {
	article, err := c.selector.SelectMostInteresting(ctx, source, language)
	if err != nil {
		return domain.Article{}, err
	}

	if article.Link == "" {
		return domain.Article{}, fmt.Errorf("selected headline %q has no link", article.Title)
	}

	resolved, err := ResolveLink(source.URL, article.Link)
	if err != nil {
		return domain.Article{}, err
	}
	article.Link = resolved

	article.Content, err = c.fetcher.FetchContent(ctx, source, resolved)
	if err != nil {
		return domain.Article{}, err
	}

	if !article.Valid() {
		return domain.Article{}, fmt.Errorf("incomplete article from %s", source.URL)
	}

	return article, nil
}
