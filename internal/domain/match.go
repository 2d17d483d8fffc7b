package domain

// MatchMethod records which pass of the matcher produced a result.
type MatchMethod string

const (
	MethodExact      MatchMethod = "exact"
	MethodFuzzy      MatchMethod = "fuzzy"
	MethodAIAssisted MatchMethod = "ai-assisted"
	MethodUnmatched  MatchMethod = "unmatched"
)

// MatchResult pairs one canonical item with the best product found in one
// store's catalog slice. Exactly one result exists per (item, store) pair;
// an unmatched result carries a nil Product and zero confidence.
type MatchResult struct {
	Item       CanonicalItem `json:"item"`
	Store      Store         `json:"store"`
	Product    *Product      `json:"product,omitempty"`
	Confidence float64       `json:"confidence"`
	Method     MatchMethod   `json:"method"`
}
