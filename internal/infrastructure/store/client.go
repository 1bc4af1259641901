package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsletterDigest/internal/config"
	"NewsletterDigest/internal/domain"
	"NewsletterDigest/internal/ports"
)

// Client talks to the external document store over its REST API. Subscriber
// documents live in a collection keyed by email; the wire format belongs to
// the store, this client only moves JSON in and out.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.SubscriberStore = (*Client)(nil)

// NewClient creates a reusable HTTP client for the store.
func NewClient(cfg config.StoreConfig) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// GroupedByCountryAndLanguage fetches all subscribers and builds the per-run
// grouping snapshot. Failure here is fatal to the whole run.
func (c *Client) GroupedByCountryAndLanguage(ctx context.Context) (domain.SubscriberGroups, error) {
	subscribers, err := c.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	return domain.GroupSubscribers(subscribers), nil
}

// List fetches every subscriber document.
func (c *Client) List(ctx context.Context) ([]domain.Subscriber, error) {
	var subscribers []domain.Subscriber
	if err := c.do(ctx, http.MethodGet, "/subscribers", nil, &subscribers); err != nil {
		return nil, err
	}
	return subscribers, nil
}

// Get fetches a single subscriber by email.
func (c *Client) Get(ctx context.Context, email string) (domain.Subscriber, error) {
	var sub domain.Subscriber
	if err := c.do(ctx, http.MethodGet, "/subscribers/"+url.PathEscape(email), nil, &sub); err != nil {
		return domain.Subscriber{}, err
	}
	return sub, nil
}

// Add creates a subscriber document.
func (c *Client) Add(ctx context.Context, sub domain.Subscriber) error {
	return c.do(ctx, http.MethodPost, "/subscribers", sub, nil)
}

// Update replaces a subscriber document, keyed by its email.
func (c *Client) Update(ctx context.Context, sub domain.Subscriber) error {
	return c.do(ctx, http.MethodPut, "/subscribers/"+url.PathEscape(sub.Email), sub, nil)
}

// Delete removes a subscriber document.
func (c *Client) Delete(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodDelete, "/subscribers/"+url.PathEscape(email), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, v any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("store returned %s for %s %s", resp.Status, method, path)
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
