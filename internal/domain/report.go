package domain

// StoreTotal is the aggregated cost of one comparison request at one store.
type StoreTotal struct {
	Store          Store    `json:"store"`
	Subtotal       float64  `json:"subtotal"`
	MatchedCount   int      `json:"matchedCount"`
	UnmatchedItems []string `json:"unmatchedItems,omitempty"`
}

// ComparisonReport is the terminal output of one comparison request.
// CheapestStore is nil when no store is viable; the report is still
// fully populated in that case.
type ComparisonReport struct {
	Items            []CanonicalItem `json:"items"`
	PerStore         []StoreTotal    `json:"perStore"`
	CheapestStore    *Store          `json:"cheapestStore,omitempty"`
	NoViableStore    bool            `json:"noViableStore"`
	SavingsVsWorst   float64         `json:"savingsVsWorst"`
	SavingsVsAverage float64         `json:"savingsVsAverage"`
}
