package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/goosegrocer/backend/internal/domain"
)

// DealService ingests photographed store flyers: the vision service
// extracts structured deals, which land in the catalog as one atomic batch
// of time-bounded flyer rows.
type DealService struct {
	extractor domain.FlyerExtractor
	catalog   domain.CatalogRepository
}

// NewDealService creates a deal ingestion service.
func NewDealService(extractor domain.FlyerExtractor, catalog domain.CatalogRepository) *DealService {
	return &DealService{extractor: extractor, catalog: catalog}
}

// IngestFlyer extracts deals from a flyer image and writes them to the
// catalog. Returns the inserted rows. Seed rows are never touched.
func (s *DealService) IngestFlyer(ctx context.Context, image []byte, mediaType string, store domain.Store) ([]domain.Product, error) {
	if !domain.ValidStore(store) {
		return nil, domain.ErrInvalidRequest
	}
	if s.extractor == nil {
		return nil, domain.ErrAIUnavailable
	}

	deals, err := s.extractor.ExtractDeals(ctx, image, mediaType, store)
	if err != nil {
		return nil, err
	}
	if len(deals) == 0 {
		return nil, nil
	}

	if err := s.catalog.InsertDeals(ctx, deals); err != nil {
		return nil, err
	}

	zap.L().Info("flyer ingested",
		zap.String("store", string(store)),
		zap.Int("deals", len(deals)),
	)
	return deals, nil
}
