package domain

// CanonicalItem is a normalized grocery item derived from free-form user
// input, independent of any store's catalog naming. Quantity defaults to 1
// and is treated as an item count; Unit is informational only (no unit
// conversion is attempted).
type CanonicalItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

// InputMode selects how free-form input is normalized.
type InputMode string

const (
	// ModeList treats the input as a delimited grocery list.
	ModeList InputMode = "list"
	// ModeMeal expands a meal description into ingredients via the AI text service.
	ModeMeal InputMode = "meal"
)
