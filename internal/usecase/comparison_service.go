package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goosegrocer/backend/internal/domain"
)

// ComparisonService is the facade the delivery layer calls: one synchronous
// normalize -> match -> aggregate pipeline per request.
type ComparisonService struct {
	normalizer *Normalizer
	matcher    *Matcher
	comparator *Comparator
}

// NewComparisonService wires the three pipeline stages together.
func NewComparisonService(normalizer *Normalizer, matcher *Matcher, comparator *Comparator) *ComparisonService {
	return &ComparisonService{
		normalizer: normalizer,
		matcher:    matcher,
		comparator: comparator,
	}
}

// Compare runs one full comparison. An empty stores slice means all known
// stores. The only hard failure is catalog unavailability; every per-item
// or per-store problem degrades inside the report.
func (s *ComparisonService) Compare(ctx context.Context, input string, mode domain.InputMode, servings int, stores []domain.Store) (*domain.ComparisonReport, error) {
	if len(stores) == 0 {
		stores = domain.AllStores()
	}
	for _, store := range stores {
		if !domain.ValidStore(store) {
			return nil, domain.ErrInvalidRequest
		}
	}

	start := time.Now()

	items, err := s.normalizer.Normalize(ctx, input, mode, servings)
	if err != nil {
		return nil, err
	}

	results, err := s.matcher.Match(ctx, items, stores)
	if err != nil {
		return nil, err
	}

	report := s.comparator.Aggregate(results, stores)

	zap.L().Info("comparison complete",
		zap.Int("items", len(items)),
		zap.Int("stores", len(stores)),
		zap.Bool("no_viable_store", report.NoViableStore),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &report, nil
}
