package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/goosegrocer/backend/internal/domain"
)

func TestExactStrategy(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	strategy := &exactStrategy{now: func() time.Time { return now }}
	item := domain.CanonicalItem{Name: "milk", Quantity: 1}

	t.Run("no hit for different names", func(t *testing.T) {
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "p1", Name: "Almond Milk", Price: 4.50},
		})
		if _, ok := strategy.attemptMatch(context.Background(), item, candidates); ok {
			t.Error("attemptMatch() = ok, want no match for non-equal name")
		}
	})

	t.Run("matches case insensitively", func(t *testing.T) {
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "p1", Name: "MILK", Price: 3.50},
		})
		result, ok := strategy.attemptMatch(context.Background(), item, candidates)
		if !ok {
			t.Fatal("attemptMatch() = no match, want match")
		}
		if result.Confidence != 1.0 {
			t.Errorf("Confidence = %v, want 1.0", result.Confidence)
		}
		if result.Method != domain.MethodExact {
			t.Errorf("Method = %v, want exact", result.Method)
		}
	})

	t.Run("active flyer deal beats the seed row", func(t *testing.T) {
		until := now.Add(48 * time.Hour)
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "seed", Name: "Milk", Price: 3.50, Source: domain.SourceSeed},
			{ID: "deal", Name: "Milk", Price: 2.99, Source: domain.SourceFlyer, ValidUntil: &until},
		})
		result, ok := strategy.attemptMatch(context.Background(), item, candidates)
		if !ok {
			t.Fatal("attemptMatch() = no match, want match")
		}
		if result.Product.ID != "deal" {
			t.Errorf("Product.ID = %s, want deal", result.Product.ID)
		}
	})

	t.Run("expired flyer deal gets no preference", func(t *testing.T) {
		until := now.Add(-time.Hour)
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "deal", Name: "Milk", Price: 3.50, Source: domain.SourceFlyer, ValidUntil: &until},
			{ID: "seed", Name: "Milk", Price: 2.99, Source: domain.SourceSeed},
		})
		result, _ := strategy.attemptMatch(context.Background(), item, candidates)
		if result.Product.ID != "seed" {
			t.Errorf("Product.ID = %s, want seed (expired deal ranks by price only)", result.Product.ID)
		}
	})

	t.Run("lowest price wins among equal hits", func(t *testing.T) {
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "p1", Name: "Milk", Price: 3.50, Source: domain.SourceSeed},
			{ID: "p2", Name: "Milk", Price: 3.20, Source: domain.SourceSeed},
		})
		result, _ := strategy.attemptMatch(context.Background(), item, candidates)
		if result.Product.ID != "p2" {
			t.Errorf("Product.ID = %s, want p2", result.Product.ID)
		}
	})
}

func TestFuzzyStrategy(t *testing.T) {
	strategy := &fuzzyStrategy{threshold: 0.6}

	t.Run("no match below threshold", func(t *testing.T) {
		item := domain.CanonicalItem{Name: "saffron", Quantity: 1}
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "p1", Name: "Paper Towels", Price: 5.99},
		})
		if _, ok := strategy.attemptMatch(context.Background(), item, candidates); ok {
			t.Error("attemptMatch() = ok, want no match below threshold")
		}
	})

	t.Run("confidence is capped below exact", func(t *testing.T) {
		item := domain.CanonicalItem{Name: "whole milk", Quantity: 1}
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "p1", Name: "Whole Milk", Price: 3.50},
		})
		result, ok := strategy.attemptMatch(context.Background(), item, candidates)
		if !ok {
			t.Fatal("attemptMatch() = no match, want match")
		}
		if result.Confidence != fuzzyConfidenceCap {
			t.Errorf("Confidence = %v, want %v", result.Confidence, fuzzyConfidenceCap)
		}
		if result.Method != domain.MethodFuzzy {
			t.Errorf("Method = %v, want fuzzy", result.Method)
		}
	})

	t.Run("tied scores prefer the inferred category", func(t *testing.T) {
		item := domain.CanonicalItem{Name: "chicken strips", Quantity: 1}
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "snack", Name: "Chicken Strips", Category: "Snacks", Price: 4.99},
			{ID: "meat", Name: "Chicken Strips", Category: "Meat", Price: 8.99},
		})
		result, ok := strategy.attemptMatch(context.Background(), item, candidates)
		if !ok {
			t.Fatal("attemptMatch() = no match, want match")
		}
		if result.Product.ID != "meat" {
			t.Errorf("Product.ID = %s, want meat (category tie-break)", result.Product.ID)
		}
	})

	t.Run("tied scores prefer the shorter product name", func(t *testing.T) {
		item := domain.CanonicalItem{Name: "olive tapenade", Quantity: 1}
		// Size noise is stripped before scoring, so both names score the
		// same and only the raw length differs.
		candidates := newCandidateSet(item.Name, []domain.Product{
			{ID: "long", Name: "Olive Tapenade 250g", Price: 6.99},
			{ID: "short", Name: "Olive Tapenade", Price: 4.99},
		})
		result, ok := strategy.attemptMatch(context.Background(), item, candidates)
		if !ok {
			t.Fatal("attemptMatch() = no match, want match")
		}
		if result.Product.ID != "short" {
			t.Errorf("Product.ID = %s, want short", result.Product.ID)
		}
	})
}

func TestAIStrategy(t *testing.T) {
	ctx := context.Background()
	item := domain.CanonicalItem{Name: "chicken dinner", Quantity: 1}
	products := []domain.Product{
		{ID: "p1", Name: "Boneless Skinless Chicken Breast", Category: "Meat", Price: 9.99},
	}

	t.Run("skipped without a resolver", func(t *testing.T) {
		strategy := &aiStrategy{resolver: nil, floor: 0.35, threshold: 0.6}
		if _, ok := strategy.attemptMatch(ctx, item, newCandidateSet(item.Name, products)); ok {
			t.Error("attemptMatch() = ok, want skip without resolver")
		}
	})

	t.Run("skipped below the floor", func(t *testing.T) {
		resolver := &fakeResolver{product: &products[0], confidence: 0.8}
		strategy := &aiStrategy{resolver: resolver, floor: 0.35, threshold: 0.6}
		far := domain.CanonicalItem{Name: "saffron", Quantity: 1}
		if _, ok := strategy.attemptMatch(ctx, far, newCandidateSet(far.Name, products)); ok {
			t.Error("attemptMatch() = ok, want skip below floor")
		}
		if resolver.calls != 0 {
			t.Errorf("resolver calls = %d, want 0", resolver.calls)
		}
	})

	t.Run("resolver choosing nothing is no match", func(t *testing.T) {
		resolver := &fakeResolver{product: nil}
		strategy := &aiStrategy{resolver: resolver, floor: 0.35, threshold: 0.6, defaultConfidence: 0.75}
		if _, ok := strategy.attemptMatch(ctx, item, newCandidateSet(item.Name, products)); ok {
			t.Error("attemptMatch() = ok, want no match when resolver declines")
		}
		if resolver.calls != 1 {
			t.Errorf("resolver calls = %d, want 1", resolver.calls)
		}
	})

	t.Run("shortlist respects max candidates", func(t *testing.T) {
		many := make([]domain.Product, 0, 8)
		for i := 0; i < 8; i++ {
			many = append(many, domain.Product{
				ID:    string(rune('a' + i)),
				Name:  "Chicken Product Variety Line",
				Price: float64(i) + 1,
			})
		}
		recorder := &shortlistRecorder{}
		strategy := &aiStrategy{resolver: recorder, floor: 0.35, threshold: 0.6, maxCandidates: 3}
		strategy.attemptMatch(ctx, item, newCandidateSet(item.Name, many))
		if recorder.seen > 3 {
			t.Errorf("shortlist size = %d, want <= 3", recorder.seen)
		}
	})
}

// shortlistRecorder records the candidate count it was offered.
type shortlistRecorder struct {
	seen int
}

func (r *shortlistRecorder) ResolveMatch(_ context.Context, _ string, candidates []domain.Product) (*domain.Product, float64, error) {
	r.seen = len(candidates)
	return nil, 0, nil
}
