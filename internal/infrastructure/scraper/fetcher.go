package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsletterDigest/internal/domain"
)

// Fetcher pulls the full text of a selected article out of its page.
type Fetcher struct {
	client *http.Client
}

// NewFetcher wires an HTTP client; defaults to a 20s timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{client: client}
}

// FetchContent downloads the article page and extracts the text matching the
// source's content selector. An empty result is not an error; it signals
// "no content found" and the caller treats it as a failed scrape.
func (f *Fetcher) FetchContent(ctx context.Context, source domain.NewsSource, link string) (string, error) {
	doc, err := fetchDocument(ctx, f.client, link)
	if err != nil {
		return "", fmt.Errorf("fetch article %s: %w", link, err)
	}

	return strings.TrimSpace(doc.Find(source.ContentSelector).Text()), nil
}

// ResolveLink turns a relative article link into an absolute URL against the
// source's listing page. Absolute links pass through unchanged.
func ResolveLink(sourceURL, link string) (string, error) {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link, nil
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("invalid source url %s: %w", sourceURL, err)
	}

	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid article link %s: %w", link, err)
	}

	return base.ResolveReference(ref).String(), nil
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsletterDigest/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
