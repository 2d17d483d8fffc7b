package domain

import "time"

// Store identifies one of the supported retail catalogs.
type Store string

const (
	StoreNoFrills   Store = "No Frills"
	StoreFoodBasics Store = "Food Basics"
	StoreWalmart    Store = "Walmart"
	StoreFreshCo    Store = "FreshCo"
	StoreLoblaws    Store = "Loblaws"
)

// AllStores returns every supported store in canonical order.
func AllStores() []Store {
	return []Store{StoreNoFrills, StoreFoodBasics, StoreWalmart, StoreFreshCo, StoreLoblaws}
}

// ValidStore reports whether s names a supported store.
func ValidStore(s Store) bool {
	for _, known := range AllStores() {
		if s == known {
			return true
		}
	}
	return false
}

// ProductSource distinguishes seed catalog rows from flyer deals.
type ProductSource string

const (
	SourceSeed  ProductSource = "seed"
	SourceFlyer ProductSource = "flyer"
)

// Product is one priced catalog row attributed to a single store.
// Seed rows are loaded once and never mutated; flyer rows are inserted
// by deal ingestion with a validity window.
type Product struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Store      Store         `json:"store"`
	Category   string        `json:"category,omitempty"`
	Brand      string        `json:"brand,omitempty"`
	Unit       string        `json:"unit,omitempty"`
	Price      float64       `json:"price"`
	Source     ProductSource `json:"source"`
	ValidUntil *time.Time    `json:"validUntil,omitempty"`
}

// ActiveDeal reports whether p is a flyer deal still inside its validity window.
func (p *Product) ActiveDeal(now time.Time) bool {
	if p.Source != SourceFlyer {
		return false
	}
	return p.ValidUntil == nil || now.Before(*p.ValidUntil)
}
