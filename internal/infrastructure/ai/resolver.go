package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/goosegrocer/backend/config"
	"github.com/goosegrocer/backend/internal/domain"
)

const resolveSystemPrompt = `You match a grocery list item to the best product from a short candidate list. Respond with a valid JSON object only, no markdown, no backticks, no explanation: {"id": "<candidate id>", "confidence": <0.0-1.0>}. If none of the candidates is a reasonable match, respond {"id": null, "confidence": 0}. Never answer with an id that is not in the candidate list.`

// Resolver implements domain.MatchResolver on top of the model client.
type Resolver struct {
	client Client
	cfg    config.AnthropicConfig
}

// NewResolver creates an ambiguous-match resolver using the given client.
func NewResolver(client Client, cfg config.AnthropicConfig) *Resolver {
	return &Resolver{client: client, cfg: cfg}
}

// resolution is the unvalidated wire shape of the model's selection.
type resolution struct {
	ID         *string `json:"id"`
	Confidence float64 `json:"confidence"`
}

// ResolveMatch asks the model to pick one candidate for itemName. Only an
// id from the candidate list is accepted; anything else counts as no match.
// Deadline overruns surface as domain.ErrMatchTimeout.
func (r *Resolver) ResolveMatch(ctx context.Context, itemName string, candidates []domain.Product) (*domain.Product, float64, error) {
	if len(candidates) == 0 {
		return nil, 0, domain.ErrNoMatch
	}

	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Item: %s\n\nCandidates:\n", itemName)
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- id=%s name=%q price=$%.2f\n", c.ID, c.Name, c.Price)
	}

	resp, err := r.client.CreateMessage(ctx, MessageRequest{
		Model:     r.cfg.Model,
		MaxTokens: 128,
		System:    resolveSystemPrompt,
		Prompt:    sb.String(),
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, 0, eris.Wrap(domain.ErrMatchTimeout, itemName)
		}
		return nil, 0, eris.Wrap(err, "resolve match")
	}

	var sel resolution
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text)), &sel); err != nil {
		zap.L().Warn("ai: unparsable match resolution",
			zap.String("item", itemName),
			zap.Error(err),
		)
		return nil, 0, domain.ErrNoMatch
	}

	if sel.ID == nil || *sel.ID == "" {
		return nil, 0, domain.ErrNoMatch
	}

	for i := range candidates {
		if candidates[i].ID == *sel.ID {
			confidence := sel.Confidence
			if confidence <= 0 || confidence >= 1 {
				confidence = 0
			}
			return &candidates[i], confidence, nil
		}
	}

	// The model invented an id outside the candidate list.
	zap.L().Warn("ai: match resolution rejected, id not in candidate list",
		zap.String("item", itemName),
		zap.String("id", *sel.ID),
	)
	return nil, 0, domain.ErrNoMatch
}
