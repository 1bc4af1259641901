package scrape

import (
	"context"
	"fmt"

	"NewsletterDigest/internal/domain"
)

// Strategy captures a single scraping implementation for a source type
// (CSS-selector pipeline today, feeds or APIs later). A strategy returns at
// most one article per source; an error means the source yielded nothing
// usable and is contained by the caller.
type Strategy interface {
	Name() string
	Scrape(ctx context.Context, source domain.NewsSource, language string) (domain.Article, error)
}

// Registry keeps a mapping from source types to their strategies.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by source type or an error if it is absent.
func (r *Registry) Resolve(sourceType string) (Strategy, error) {
	if strategy, ok := r.strategies[sourceType]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("strategy %s is not registered", sourceType)
}
