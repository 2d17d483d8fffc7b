package usecase

import (
	"regexp"
	"strings"
)

var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// sizePatternRegex matches size/quantity noise in product names
// ("675g", "4 L", "12 pack") that should not influence similarity.
var sizePatternRegex = regexp.MustCompile(
	`(?i)\b\d+\.?\d*\s*(?:fl\s*oz|oz|ml|liters?|litres?|l|gallons?|gal|lbs?|pounds?|kg|grams?|g|ct|count|pk|pack|ea|each|qt|quart|pt|pint)\b`,
)

// fuzzyWeightFactor discounts tokens matched by edit distance rather than
// exactly.
const fuzzyWeightFactor = 0.8

// scoringStopWords are tokens that carry no matching signal: units,
// packaging, and retail noise.
var scoringStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"in": true, "with": true, "for": true, "per": true,
	"oz": true, "fl": true, "lb": true, "lbs": true, "ml": true, "l": true,
	"kg": true, "g": true, "gallon": true, "litre": true, "liter": true,
	"pack": true, "packs": true, "count": true, "ct": true, "pk": true,
	"box": true, "bag": true, "bottle": true, "can": true, "jar": true,
	"carton": true, "tub": true, "pouch": true,
	"size": true, "value": true, "family": true, "each": true, "ea": true,
	"bonus": true, "new": true, "product": true,
}

// abbreviations expands common shorthand seen in hand-typed grocery lists
// and flyer text before token comparison.
var abbreviations = map[string]string{
	"chkn":  "chicken",
	"brst":  "breast",
	"bnls":  "boneless",
	"sknls": "skinless",
	"grnd":  "ground",
	"whl":   "whole",
	"org":   "organic",
	"frsh":  "fresh",
	"frzn":  "frozen",
	"chse":  "cheese",
	"mlk":   "milk",
	"brd":   "bread",
	"tmto":  "tomato",
	"pot":   "potato",
	"bna":   "banana",
	"veg":   "vegetable",
	"choc":  "chocolate",
	"strwb": "strawberry",
	"yog":   "yogurt",
	"yogrt": "yogurt",
	"marg":  "margarine",
	"mayo":  "mayonnaise",
}

// categoryKeywords infers a coarse grocery category from an item name.
// Used only as a fuzzy tie-breaker, so coverage does not need to be complete.
var categoryKeywords = map[string]string{
	"chicken": "Meat", "beef": "Meat", "pork": "Meat", "turkey": "Meat",
	"bacon": "Meat", "sausage": "Meat", "ham": "Meat", "steak": "Meat",
	"salmon": "Seafood", "tuna": "Seafood", "shrimp": "Seafood", "fish": "Seafood",
	"milk": "Dairy", "cheese": "Dairy", "yogurt": "Dairy", "butter": "Dairy",
	"cream": "Dairy", "egg": "Dairy", "eggs": "Dairy",
	"bread": "Bakery", "bagel": "Bakery", "tortilla": "Bakery", "bun": "Bakery",
	"rice": "Pantry", "pasta": "Pantry", "cereal": "Pantry", "flour": "Pantry",
	"oats": "Pantry", "noodles": "Pantry", "sauce": "Pantry", "soup": "Pantry",
	"apple": "Produce", "banana": "Produce", "orange": "Produce",
	"lettuce": "Produce", "tomato": "Produce", "potato": "Produce",
	"onion": "Produce", "carrot": "Produce", "broccoli": "Produce",
	"spinach": "Produce", "avocado": "Produce", "cucumber": "Produce",
	"pepper": "Produce", "grape": "Produce", "lemon": "Produce",
	"juice": "Beverages", "coffee": "Beverages", "tea": "Beverages",
	"soda": "Beverages", "water": "Beverages",
	"chips": "Snacks", "crackers": "Snacks", "cookies": "Snacks",
	"chocolate": "Snacks", "candy": "Snacks", "popcorn": "Snacks",
}

// similarity computes a token-overlap score in [0, 1] between an item name
// and a product name. Weighted toward item coverage: if every token the
// user typed appears in the product name, the match is strong even when the
// product name carries extra detail.
func similarity(itemName, productName string) float64 {
	itemTokens := tokenize(itemName)
	productTokens := tokenize(productName)

	if len(itemTokens) == 0 || len(productTokens) == 0 {
		return 0
	}

	itemMatched := weightedIntersection(itemTokens, productTokens)
	itemCoverage := itemMatched / float64(len(itemTokens))

	productMatched := weightedIntersection(productTokens, itemTokens)
	productCoverage := productMatched / float64(len(productTokens))

	union := float64(tokenUnion(itemTokens, productTokens))
	jaccard := itemMatched / union

	score := itemCoverage*0.60 + productCoverage*0.20 + jaccard*0.20

	// Exact substring containment is a strong signal for short queries.
	itemLower := strings.ToLower(strings.TrimSpace(itemName))
	productLower := strings.ToLower(productName)
	if len(itemLower) > 3 && strings.Contains(productLower, itemLower) {
		score += 0.1
	}

	if score > 1 {
		score = 1
	}
	return score
}

// tokenize splits a name into normalized lowercase tokens: punctuation and
// size noise stripped, stop words and bare numbers dropped, abbreviations
// expanded.
func tokenize(s string) []string {
	cleaned := sizePatternRegex.ReplaceAllString(strings.ToLower(s), " ")
	cleaned = punctuationRegex.ReplaceAllString(cleaned, " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 || scoringStopWords[word] || isNumeric(word) {
			continue
		}
		if expanded, ok := abbreviations[word]; ok {
			word = expanded
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// weightedIntersection counts tokens of a that appear in b. Exact token
// matches count 1.0, edit-distance matches count fuzzyWeightFactor.
func weightedIntersection(a, b []string) float64 {
	var total float64
	for _, ta := range a {
		best := 0.0
		for _, tb := range b {
			if ta == tb {
				best = 1.0
				break
			}
			if best < fuzzyWeightFactor && fuzzyTokenMatch(ta, tb) {
				best = fuzzyWeightFactor
			}
		}
		total += best
	}
	return total
}

func tokenUnion(a, b []string) int {
	set := make(map[string]bool, len(a)+len(b))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		set[t] = true
	}
	return len(set)
}

// fuzzyTokenMatch reports whether two tokens are within edit distance 1.
// Only applied to tokens of 4+ characters to avoid false positives.
func fuzzyTokenMatch(token1, token2 string) bool {
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}
	lenDiff := len(token1) - len(token2)
	if lenDiff < -1 || lenDiff > 1 {
		return false
	}
	return levenshteinDistance(token1, token2) <= 1
}

// levenshteinDistance calculates the edit distance between two strings
// using two rows instead of the full matrix.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	n := len(r2)

	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// inferCategory guesses an item's grocery category from its tokens.
// Returns "" when no keyword matches.
func inferCategory(itemName string) string {
	for _, token := range tokenize(itemName) {
		if cat, ok := categoryKeywords[token]; ok {
			return cat
		}
	}
	return ""
}
