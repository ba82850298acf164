package evidence

import (
	"context"
	"fmt"

	"github.com/sourceinfo/sourceinfo/internal/store"
	"github.com/sourceinfo/sourceinfo/pkg/source"
)

// Engine runs scoring and matching against the catalogue repository. All
// derived results are computed from a read-only snapshot; nothing is ever
// written back, so concurrent requests need no coordination.
type Engine struct {
	store    store.Store
	defaults Constraints
}

// NewEngine creates an engine with the configured default match constraints.
func NewEngine(s store.Store, minCredibility float64, limit int) *Engine {
	if minCredibility <= 0 {
		minCredibility = 60
	}
	if limit <= 0 {
		limit = 10
	}
	return &Engine{
		store:    s,
		defaults: Constraints{MinCredibility: minCredibility, Limit: limit},
	}
}

// Defaults returns the configured default match constraints.
func (e *Engine) Defaults() Constraints { return e.defaults }

// Score resolves a domain and computes its weighted score in the given
// context. Returns store.ErrNotFound for uncatalogued domains and
// ErrInvalidContext for unrecognized context enums.
func (e *Engine) Score(ctx context.Context, domain string, sc Context) (*source.Source, *ScoreResult, error) {
	if err := sc.Validate(); err != nil {
		return nil, nil, err
	}
	src, err := e.store.GetByDomain(ctx, domain)
	if err != nil {
		return nil, nil, err
	}
	result := ScoreSource(*src, sc)
	return src, &result, nil
}

// Counternarratives resolves a domain and ranks credible opposite-lean
// alternatives from the full catalogue snapshot. Zero constraint fields take
// the engine defaults.
func (e *Engine) Counternarratives(ctx context.Context, domain string, c Constraints) (*MatchResult, error) {
	if c.MinCredibility <= 0 {
		c.MinCredibility = e.defaults.MinCredibility
	}
	if c.Limit <= 0 {
		c.Limit = e.defaults.Limit
	}
	for _, lean := range c.PreferredLeans {
		if lean < source.LeanLeft || lean > source.LeanRight {
			return nil, fmt.Errorf("%w: preferred lean %d out of range", ErrInvalidContext, lean)
		}
	}

	src, err := e.store.GetByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	pool, err := e.store.AllSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}

	result := FindCounternarratives(*src, pool, c)
	return &result, nil
}

// Stats aggregates catalogue distributions from the current snapshot.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	pool, err := e.store.AllSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	stats := Aggregate(pool)
	return &stats, nil
}
