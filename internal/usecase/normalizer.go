package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goosegrocer/backend/internal/domain"
)

// itemDelimiters splits free-form list input on newlines and commas.
var itemDelimiters = regexp.MustCompile(`[\n,]+`)

// quantityPrefixRegex matches a leading quantity token like "2", "1.5" or
// "2x" at the start of a list entry.
var quantityPrefixRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*x?\s+`)

// knownUnits are unit tokens that may follow a leading quantity. Anything
// else after the number is part of the item name ("3 bananas").
var knownUnits = map[string]bool{
	"lb": true, "lbs": true, "pound": true, "pounds": true,
	"kg": true, "g": true, "gram": true, "grams": true,
	"oz": true, "ounce": true, "ounces": true,
	"l": true, "liter": true, "liters": true, "litre": true, "litres": true,
	"ml": true, "gallon": true, "gallons": true, "quart": true, "pint": true,
	"dozen": true, "pack": true, "packs": true, "bag": true, "bags": true,
	"box": true, "boxes": true, "can": true, "cans": true,
	"bottle": true, "bottles": true, "jar": true, "jars": true,
	"loaf": true, "loaves": true, "bunch": true, "bunches": true,
	"head": true, "heads": true, "carton": true, "cartons": true,
}

// Normalizer expands free-form requests into canonical grocery items.
// List mode is pure string work; meal mode delegates to the AI text service
// and degrades to the raw text on any failure.
type Normalizer struct {
	expander domain.MealExpander
}

// NewNormalizer creates a normalizer. The expander may be nil, in which
// case meal mode always falls back to list behavior.
func NewNormalizer(expander domain.MealExpander) *Normalizer {
	return &Normalizer{expander: expander}
}

// Normalize turns input into canonical items according to mode. It never
// fails for malformed AI responses; only empty input is an error.
func (n *Normalizer) Normalize(ctx context.Context, input string, mode domain.InputMode, servings int) ([]domain.CanonicalItem, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.ErrInvalidRequest
	}

	if mode == domain.ModeMeal {
		return n.normalizeMeal(ctx, input, servings), nil
	}
	return parseList(input), nil
}

// normalizeMeal expands a meal description via the AI service. Malformed
// responses, timeouts, and service errors all degrade to the raw text as a
// single item rather than failing the request.
func (n *Normalizer) normalizeMeal(ctx context.Context, input string, servings int) []domain.CanonicalItem {
	if n.expander == nil {
		return []domain.CanonicalItem{{Name: input, Quantity: 1}}
	}

	items, err := n.expander.ExpandMeal(ctx, input, servings)
	if err != nil {
		zap.L().Warn("normalize: meal expansion failed, falling back to raw text",
			zap.String("input", input),
			zap.Error(err),
		)
		return []domain.CanonicalItem{{Name: input, Quantity: 1}}
	}
	return items
}

// parseList splits delimited text into canonical items, extracting a
// leading quantity/unit token from each entry when present.
func parseList(input string) []domain.CanonicalItem {
	var items []domain.CanonicalItem
	for _, entry := range itemDelimiters.Split(input, -1) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		items = append(items, parseListEntry(entry))
	}
	return items
}

// parseListEntry extracts quantity and unit from one entry.
// "2 lbs chicken breast" -> {chicken breast, 2, lbs}; "3 bananas" ->
// {bananas, 3, ""}; "milk" -> {milk, 1, ""}.
func parseListEntry(entry string) domain.CanonicalItem {
	item := domain.CanonicalItem{Name: entry, Quantity: 1}

	loc := quantityPrefixRegex.FindStringSubmatch(entry)
	if loc == nil {
		return item
	}

	quantity, err := strconv.ParseFloat(loc[1], 64)
	if err != nil || quantity <= 0 {
		return item
	}

	rest := strings.TrimSpace(entry[len(loc[0]):])
	if rest == "" {
		// A bare number is not an item; keep the raw entry.
		return item
	}

	item.Quantity = quantity

	fields := strings.Fields(rest)
	if len(fields) > 1 && knownUnits[strings.ToLower(fields[0])] {
		item.Unit = strings.ToLower(fields[0])
		rest = strings.TrimSpace(strings.Join(fields[1:], " "))
	}

	item.Name = rest
	return item
}
