package usecase

import (
	"math"

	"github.com/goosegrocer/backend/internal/domain"
)

// Comparator aggregates match results into a ranked store comparison.
type Comparator struct {
	unmatchedTolerance float64
}

// NewComparator creates a comparator. tolerance is the fraction of
// requested items a store may be missing while still counting as viable;
// out-of-range values fall back to the 20% default.
func NewComparator(tolerance float64) *Comparator {
	if tolerance < 0 || tolerance > 1 {
		tolerance = 0.2
	}
	return &Comparator{unmatchedTolerance: tolerance}
}

// Aggregate groups results by store, ranks viable stores by total cost, and
// computes savings against the most expensive and the average viable store.
// It is a pure function of its inputs: re-aggregating the same results
// yields an identical report, and no store outcome ever raises an error.
func (c *Comparator) Aggregate(results []domain.MatchResult, stores []domain.Store) domain.ComparisonReport {
	items := uniqueItems(results)

	totals := make([]domain.StoreTotal, 0, len(stores))
	for _, store := range stores {
		total := domain.StoreTotal{Store: store}
		for _, r := range results {
			if r.Store != store {
				continue
			}
			if r.Product == nil {
				total.UnmatchedItems = append(total.UnmatchedItems, r.Item.Name)
				continue
			}
			quantity := r.Item.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			total.Subtotal += r.Product.Price * quantity
			total.MatchedCount++
		}
		total.Subtotal = roundCents(total.Subtotal)
		totals = append(totals, total)
	}

	report := domain.ComparisonReport{
		Items:    items,
		PerStore: totals,
	}

	allowed := c.unmatchedTolerance * float64(len(items))
	var viable []domain.StoreTotal
	for _, t := range totals {
		if float64(len(t.UnmatchedItems)) <= allowed+scoreEpsilon {
			viable = append(viable, t)
		}
	}

	if len(viable) == 0 {
		report.NoViableStore = true
		return report
	}

	cheapest := viable[0]
	worst := viable[0].Subtotal
	sum := 0.0
	for _, t := range viable {
		if betterStoreTotal(t, cheapest) {
			cheapest = t
		}
		if t.Subtotal > worst {
			worst = t.Subtotal
		}
		sum += t.Subtotal
	}
	average := sum / float64(len(viable))

	store := cheapest.Store
	report.CheapestStore = &store
	report.SavingsVsWorst = roundCents(clampNonNegative(worst - cheapest.Subtotal))
	report.SavingsVsAverage = roundCents(clampNonNegative(average - cheapest.Subtotal))
	return report
}

// betterStoreTotal ranks store totals: lowest subtotal, then fewest
// unmatched items, then store name for determinism.
func betterStoreTotal(a, b domain.StoreTotal) bool {
	if a.Subtotal != b.Subtotal {
		return a.Subtotal < b.Subtotal
	}
	if len(a.UnmatchedItems) != len(b.UnmatchedItems) {
		return len(a.UnmatchedItems) < len(b.UnmatchedItems)
	}
	return a.Store < b.Store
}

// uniqueItems reconstructs the requested item list, in request order, from
// the flattened (item x store) result grid.
func uniqueItems(results []domain.MatchResult) []domain.CanonicalItem {
	seen := make(map[string]bool)
	var items []domain.CanonicalItem
	for _, r := range results {
		if seen[r.Item.Name] {
			continue
		}
		seen[r.Item.Name] = true
		items = append(items, r.Item)
	}
	return items
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
