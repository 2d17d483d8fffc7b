package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/goosegrocer/backend/config"
	"github.com/goosegrocer/backend/internal/domain"
)

const flyerSystemPrompt = `You extract products and prices from grocery store flyer images. Respond with a valid JSON array only, no markdown, no backticks, no explanation. Each element: {"product_name": "<name>", "sale_price": <number>, "regular_price": <number or null>, "unit": "<each | per lb | per kg | package size>", "brand": "<brand or null>"}. Always use the sale price (the big number). If a price says /LB set unit to "per lb", /KG to "per kg"; assume "each" when unspecified. Include the package size in the product name if visible. Do not include promotional text, contest info, or non-product items.`

// dealValidity is how long an ingested flyer deal stays active. Flyers are
// weekly, so one week from ingestion approximates the sale window when the
// flyer itself does not state dates.
const dealValidity = 7 * 24 * time.Hour

// FlyerVision implements domain.FlyerExtractor on top of the model client.
type FlyerVision struct {
	client Client
	cfg    config.AnthropicConfig
	now    func() time.Time
}

// NewFlyerVision creates a flyer deal extractor using the given client.
func NewFlyerVision(client Client, cfg config.AnthropicConfig) *FlyerVision {
	return &FlyerVision{client: client, cfg: cfg, now: time.Now}
}

// flyerEntry is the unvalidated wire shape of one extracted deal.
type flyerEntry struct {
	ProductName  string   `json:"product_name"`
	SalePrice    *float64 `json:"sale_price"`
	RegularPrice *float64 `json:"regular_price"`
	Unit         string   `json:"unit"`
	Brand        string   `json:"brand"`
}

// ExtractDeals turns a flyer image into flyer-sourced product rows for the
// given store. Entries that fail validation are dropped individually; the
// call only errors when the whole response is unusable.
func (f *FlyerVision) ExtractDeals(ctx context.Context, image []byte, mediaType string, store domain.Store) ([]domain.Product, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	timeout := f.cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := f.client.CreateMessage(ctx, MessageRequest{
		Model:          f.cfg.Model,
		MaxTokens:      2048,
		System:         flyerSystemPrompt,
		Prompt:         fmt.Sprintf("This flyer is from %s (Canada). Extract every product you can see with its price.", store),
		Image:          image,
		ImageMediaType: mediaType,
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract flyer deals")
	}

	var entries []flyerEntry
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text)), &entries); err != nil {
		return nil, eris.Wrap(domain.ErrNormalization, err.Error())
	}

	validUntil := f.now().Add(dealValidity)
	deals := make([]domain.Product, 0, len(entries))
	dropped := 0
	for _, entry := range entries {
		name := strings.TrimSpace(entry.ProductName)
		if name == "" || entry.SalePrice == nil || *entry.SalePrice <= 0 {
			dropped++
			continue
		}
		expiry := validUntil
		deals = append(deals, domain.Product{
			ID:         uuid.New().String(),
			Name:       name,
			Store:      store,
			Brand:      strings.TrimSpace(entry.Brand),
			Unit:       strings.TrimSpace(entry.Unit),
			Price:      *entry.SalePrice,
			Source:     domain.SourceFlyer,
			ValidUntil: &expiry,
		})
	}

	zap.L().Info("ai: flyer parsed",
		zap.String("store", string(store)),
		zap.Int("deals", len(deals)),
		zap.Int("dropped", dropped),
	)
	return deals, nil
}
