package domain

import "context"

// CatalogRepository defines read/write access to the product catalog.
// The comparison core only reads; deal ingestion inserts flyer batches.
// Seed rows are never mutated or deleted.
type CatalogRepository interface {
	GetAllProducts(ctx context.Context) ([]Product, error)
	SearchProducts(ctx context.Context, query string, store *Store) ([]Product, error)
	// InsertDeals writes one flyer batch atomically and advances the
	// catalog version. Concurrent readers never observe a partial batch.
	InsertDeals(ctx context.Context, deals []Product) error
	// Version identifies the current catalog snapshot. It changes whenever
	// a deal batch is inserted.
	Version(ctx context.Context) (int64, error)
}

// MealExpander is the AI text service that turns a meal description into
// ingredients with approximate quantities for the given serving count.
type MealExpander interface {
	ExpandMeal(ctx context.Context, description string, servings int) ([]CanonicalItem, error)
}

// MatchResolver is the AI matching service for ambiguous cases. It must
// select one product from the provided candidates or report no match;
// implementations never invent products outside the candidate list.
type MatchResolver interface {
	ResolveMatch(ctx context.Context, itemName string, candidates []Product) (*Product, float64, error)
}

// FlyerExtractor is the AI vision service that turns a flyer image into
// structured deal records for one store.
type FlyerExtractor interface {
	ExtractDeals(ctx context.Context, image []byte, mediaType string, store Store) ([]Product, error)
}

// MatchCache memoizes match results for the lifetime of one catalog
// snapshot. Keys combine item name, store, and catalog version, so a stale
// snapshot never serves a newer request. Implementations must be safe for
// concurrent readers.
type MatchCache interface {
	Get(itemName string, store Store, version int64) (*MatchResult, bool)
	Set(itemName string, store Store, version int64, result MatchResult)
}
