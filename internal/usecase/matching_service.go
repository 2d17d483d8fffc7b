package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goosegrocer/backend/internal/domain"
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	FuzzyThreshold      float64
	AIFloor             float64
	AIDefaultConfidence float64
	MaxCandidates       int
}

// Matcher finds the best semantically-matching product per store for each
// canonical item using an ordered chain of passes: exact, fuzzy, and an
// AI-assisted pass for the ambiguous zone below the fuzzy threshold.
type Matcher struct {
	catalog    domain.CatalogRepository
	cache      domain.MatchCache
	strategies []matchStrategy
}

// NewMatcher creates a matcher. resolver and cache may be nil: without a
// resolver the AI pass is skipped, without a cache nothing is memoized.
func NewMatcher(catalog domain.CatalogRepository, resolver domain.MatchResolver, cache domain.MatchCache, config MatchConfig) *Matcher {
	threshold := config.FuzzyThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6
	}
	floor := config.AIFloor
	if floor < 0 || floor >= threshold {
		floor = 0.35
	}
	defaultConfidence := config.AIDefaultConfidence
	if defaultConfidence <= 0 || defaultConfidence >= 1 {
		defaultConfidence = 0.75
	}

	return &Matcher{
		catalog: catalog,
		cache:   cache,
		strategies: []matchStrategy{
			&exactStrategy{now: time.Now},
			&fuzzyStrategy{threshold: threshold},
			&aiStrategy{
				resolver:          resolver,
				floor:             floor,
				threshold:         threshold,
				defaultConfidence: defaultConfidence,
				maxCandidates:     config.MaxCandidates,
			},
		},
	}
}

// Match produces exactly one MatchResult per (item, store) pair, ordered by
// item then by store. Stores are matched in parallel; per-pair failures
// degrade to unmatched, and only catalog unavailability fails the call.
func (m *Matcher) Match(ctx context.Context, items []domain.CanonicalItem, stores []domain.Store) ([]domain.MatchResult, error) {
	if len(items) == 0 || len(stores) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	products, err := m.catalog.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	version := int64(0)
	if m.cache != nil {
		if v, err := m.catalog.Version(ctx); err == nil {
			version = v
		} else {
			zap.L().Warn("match: catalog version unavailable, skipping cache", zap.Error(err))
		}
	}

	now := time.Now()
	byStore := make(map[domain.Store][]domain.Product, len(stores))
	for _, p := range products {
		// Expired flyer deals are invisible to matching.
		if p.Source == domain.SourceFlyer && !p.ActiveDeal(now) {
			continue
		}
		byStore[p.Store] = append(byStore[p.Store], p)
	}

	// results[storeIdx][itemIdx]; flattened item-major below so output
	// order is deterministic regardless of goroutine scheduling.
	results := make([][]domain.MatchResult, len(stores))

	g, gctx := errgroup.WithContext(ctx)
	for i, store := range stores {
		g.Go(func() error {
			storeResults := make([]domain.MatchResult, len(items))
			for j, item := range items {
				storeResults[j] = m.matchOne(gctx, item, store, byStore[store], version)
			}
			results[i] = storeResults
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	flat := make([]domain.MatchResult, 0, len(items)*len(stores))
	for j := range items {
		for i := range stores {
			flat = append(flat, results[i][j])
		}
	}
	return flat, nil
}

// matchOne runs the strategy chain for a single (item, store) pair,
// consulting the snapshot-scoped cache first.
func (m *Matcher) matchOne(ctx context.Context, item domain.CanonicalItem, store domain.Store, products []domain.Product, version int64) domain.MatchResult {
	if m.cache != nil && version > 0 {
		if cached, ok := m.cache.Get(item.Name, store, version); ok {
			result := *cached
			// The cache is keyed by name only; quantity is request-local.
			result.Item = item
			result.Store = store
			return result
		}
	}

	result := domain.MatchResult{
		Item:   item,
		Store:  store,
		Method: domain.MethodUnmatched,
	}

	candidates := newCandidateSet(item.Name, products)
	for _, strategy := range m.strategies {
		if matched, ok := strategy.attemptMatch(ctx, item, candidates); ok {
			result = *matched
			result.Store = store
			break
		}
	}

	if m.cache != nil && version > 0 {
		m.cache.Set(item.Name, store, version, result)
	}
	return result
}
