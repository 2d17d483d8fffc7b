package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goosegrocer/backend/internal/domain"
)

// scoreEpsilon is the tolerance for treating two fuzzy scores as tied.
const scoreEpsilon = 1e-9

// fuzzyConfidenceCap keeps fuzzy confidence strictly below the exact-match
// confidence of 1.0.
const fuzzyConfidenceCap = 0.99

// scoredCandidate pairs a catalog product with its similarity score for
// one item.
type scoredCandidate struct {
	product domain.Product
	score   float64
}

// candidateSet holds one store's catalog slice for one item. Similarity
// scores are computed once and shared between the fuzzy and AI passes.
type candidateSet struct {
	itemName string
	products []domain.Product
	scored   []scoredCandidate
}

func newCandidateSet(itemName string, products []domain.Product) *candidateSet {
	return &candidateSet{itemName: itemName, products: products}
}

// ranked returns candidates scored against the item name, best first.
// Ordering among equal scores is by name then price so the ranking is
// deterministic.
func (c *candidateSet) ranked() []scoredCandidate {
	if c.scored != nil {
		return c.scored
	}
	scored := make([]scoredCandidate, 0, len(c.products))
	for _, p := range c.products {
		scored = append(scored, scoredCandidate{product: p, score: similarity(c.itemName, p.Name)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].product.Name != scored[j].product.Name {
			return scored[i].product.Name < scored[j].product.Name
		}
		return scored[i].product.Price < scored[j].product.Price
	})
	c.scored = scored
	return scored
}

// matchStrategy is one pass of the matcher. Passes run in order; the first
// to report ok wins.
type matchStrategy interface {
	attemptMatch(ctx context.Context, item domain.CanonicalItem, candidates *candidateSet) (*domain.MatchResult, bool)
}

// exactStrategy matches on case-insensitive name equality. Among several
// exact hits (a seed row plus an active flyer deal) the active deal wins,
// then the lowest price.
type exactStrategy struct {
	now func() time.Time
}

func (s *exactStrategy) attemptMatch(_ context.Context, item domain.CanonicalItem, candidates *candidateSet) (*domain.MatchResult, bool) {
	itemLower := strings.ToLower(strings.TrimSpace(item.Name))

	var hits []domain.Product
	for _, p := range candidates.products {
		if strings.ToLower(p.Name) == itemLower {
			hits = append(hits, p)
		}
	}
	if len(hits) == 0 {
		return nil, false
	}

	now := s.now()
	best := hits[0]
	for _, p := range hits[1:] {
		if betterExactHit(p, best, now) {
			best = p
		}
	}

	return &domain.MatchResult{
		Item:       item,
		Product:    &best,
		Confidence: 1.0,
		Method:     domain.MethodExact,
	}, true
}

func betterExactHit(a, b domain.Product, now time.Time) bool {
	aDeal, bDeal := a.ActiveDeal(now), b.ActiveDeal(now)
	if aDeal != bDeal {
		return aDeal
	}
	return a.Price < b.Price
}

// fuzzyStrategy accepts the best-scoring candidate at or above the
// configured threshold. Ties prefer a candidate in the item's inferred
// category, then the shortest product name (the least over-specific match).
type fuzzyStrategy struct {
	threshold float64
}

func (s *fuzzyStrategy) attemptMatch(_ context.Context, item domain.CanonicalItem, candidates *candidateSet) (*domain.MatchResult, bool) {
	ranked := candidates.ranked()
	if len(ranked) == 0 || ranked[0].score < s.threshold {
		return nil, false
	}

	best := ranked[0]
	itemCategory := inferCategory(item.Name)
	for _, c := range ranked[1:] {
		if best.score-c.score > scoreEpsilon {
			break
		}
		if betterTiedCandidate(c.product, best.product, itemCategory) {
			best = c
		}
	}

	confidence := best.score
	if confidence > fuzzyConfidenceCap {
		confidence = fuzzyConfidenceCap
	}

	product := best.product
	return &domain.MatchResult{
		Item:       item,
		Product:    &product,
		Confidence: confidence,
		Method:     domain.MethodFuzzy,
	}, true
}

func betterTiedCandidate(a, b domain.Product, itemCategory string) bool {
	if itemCategory != "" {
		aSame := strings.EqualFold(a.Category, itemCategory)
		bSame := strings.EqualFold(b.Category, itemCategory)
		if aSame != bSame {
			return aSame
		}
	}
	return len(a.Name) < len(b.Name)
}

// aiStrategy delegates ambiguous cases (best fuzzy score between the floor
// and the threshold) to the AI matching service. The service may only pick
// from the shortlist it is given; errors and timeouts degrade to no match
// for this pair rather than failing the request.
type aiStrategy struct {
	resolver          domain.MatchResolver
	floor             float64
	threshold         float64
	defaultConfidence float64
	maxCandidates     int
}

func (s *aiStrategy) attemptMatch(ctx context.Context, item domain.CanonicalItem, candidates *candidateSet) (*domain.MatchResult, bool) {
	if s.resolver == nil {
		return nil, false
	}

	ranked := candidates.ranked()
	if len(ranked) == 0 || ranked[0].score < s.floor || ranked[0].score >= s.threshold {
		return nil, false
	}

	limit := s.maxCandidates
	if limit <= 0 {
		limit = 5
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	shortlist := make([]domain.Product, 0, limit)
	for _, c := range ranked[:limit] {
		if c.score < s.floor {
			break
		}
		shortlist = append(shortlist, c.product)
	}

	product, confidence, err := s.resolver.ResolveMatch(ctx, item.Name, shortlist)
	if err != nil || product == nil {
		if err != nil {
			zap.L().Debug("match: ai resolution degraded to unmatched",
				zap.String("item", item.Name),
				zap.Error(err),
			)
		}
		return nil, false
	}

	if confidence <= 0 || confidence >= 1 {
		confidence = s.defaultConfidence
	}

	chosen := *product
	return &domain.MatchResult{
		Item:       item,
		Product:    &chosen,
		Confidence: confidence,
		Method:     domain.MethodAIAssisted,
	}, true
}
