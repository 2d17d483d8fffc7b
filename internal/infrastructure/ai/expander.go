package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/goosegrocer/backend/config"
	"github.com/goosegrocer/backend/internal/domain"
)

const expandSystemPrompt = `You convert meal descriptions into grocery shopping lists. Respond with a valid JSON array only, no markdown, no backticks, no explanation. Each element: {"name": "<generic ingredient name>", "quantity": <number>, "unit": "<unit or empty string>"}. Use common generic names and only include things you would actually need to buy.`

const expandUserPrompt = `Meal: %s
Servings: %d

Return the grocery list as a JSON array, with quantities scaled to the serving count.`

// Expander implements domain.MealExpander on top of the model client.
type Expander struct {
	client Client
	cfg    config.AnthropicConfig
}

// NewExpander creates a meal expander using the given client.
func NewExpander(client Client, cfg config.AnthropicConfig) *Expander {
	return &Expander{client: client, cfg: cfg}
}

// expansionEntry is the unvalidated wire shape of one expanded ingredient.
// It only becomes a domain.CanonicalItem after validation.
type expansionEntry struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`
}

// ExpandMeal expands a meal description into canonical items. Any malformed
// response surfaces as domain.ErrNormalization so the caller can fall back
// to treating the raw text as a single list entry.
func (e *Expander) ExpandMeal(ctx context.Context, description string, servings int) ([]domain.CanonicalItem, error) {
	if servings <= 0 {
		servings = 2
	}

	timeout := e.cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.client.CreateMessage(ctx, MessageRequest{
		Model:     e.cfg.Model,
		MaxTokens: 1024,
		System:    expandSystemPrompt,
		Prompt:    fmt.Sprintf(expandUserPrompt, description, servings),
	})
	if err != nil {
		return nil, eris.Wrap(err, "expand meal")
	}

	items, err := parseExpansion(resp.Text)
	if err != nil {
		zap.L().Warn("ai: meal expansion rejected",
			zap.String("meal", description),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Debug("ai: meal expanded",
		zap.String("meal", description),
		zap.Int("servings", servings),
		zap.Int("ingredients", len(items)),
	)
	return items, nil
}

// parseExpansion validates the raw model output against the expected
// structure. Every entry needs a non-empty name and a positive numeric
// quantity; anything else fails the whole expansion.
func parseExpansion(raw string) ([]domain.CanonicalItem, error) {
	var entries []expansionEntry
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &entries); err != nil {
		return nil, eris.Wrap(domain.ErrNormalization, err.Error())
	}
	if len(entries) == 0 {
		return nil, eris.Wrap(domain.ErrNormalization, "empty ingredient list")
	}

	items := make([]domain.CanonicalItem, 0, len(entries))
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, eris.Wrapf(domain.ErrNormalization, "entry %d has empty name", i)
		}
		if entry.Quantity == nil || *entry.Quantity <= 0 {
			return nil, eris.Wrapf(domain.ErrNormalization, "entry %d has invalid quantity", i)
		}
		items = append(items, domain.CanonicalItem{
			Name:     name,
			Quantity: *entry.Quantity,
			Unit:     strings.TrimSpace(entry.Unit),
		})
	}
	return items, nil
}
