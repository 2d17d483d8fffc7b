package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/goosegrocer/backend/internal/domain"
)

// fakeExtractor is a scripted FlyerExtractor.
type fakeExtractor struct {
	deals []domain.Product
	err   error
	calls int
}

func (f *fakeExtractor) ExtractDeals(_ context.Context, image []byte, mediaType string, store domain.Store) ([]domain.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.deals, nil
}

func TestIngestFlyer(t *testing.T) {
	ctx := context.Background()
	image := []byte("not really a png")

	t.Run("rejects unknown store", func(t *testing.T) {
		svc := NewDealService(&fakeExtractor{}, &fakeCatalog{})
		_, err := svc.IngestFlyer(ctx, image, "image/png", "Corner Shop")
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("fails without a vision service", func(t *testing.T) {
		svc := NewDealService(nil, &fakeCatalog{})
		_, err := svc.IngestFlyer(ctx, image, "image/png", domain.StoreWalmart)
		if !errors.Is(err, domain.ErrAIUnavailable) {
			t.Errorf("error = %v, want ErrAIUnavailable", err)
		}
	})

	t.Run("propagates extraction failure without writing", func(t *testing.T) {
		catalog := &fakeCatalog{}
		svc := NewDealService(&fakeExtractor{err: domain.ErrAIUnavailable}, catalog)
		_, err := svc.IngestFlyer(ctx, image, "image/png", domain.StoreWalmart)
		if !errors.Is(err, domain.ErrAIUnavailable) {
			t.Errorf("error = %v, want ErrAIUnavailable", err)
		}
		if len(catalog.inserted) != 0 {
			t.Errorf("inserted batches = %d, want 0", len(catalog.inserted))
		}
	})

	t.Run("empty extraction inserts nothing", func(t *testing.T) {
		catalog := &fakeCatalog{}
		svc := NewDealService(&fakeExtractor{}, catalog)
		deals, err := svc.IngestFlyer(ctx, image, "image/png", domain.StoreWalmart)
		if err != nil {
			t.Fatalf("IngestFlyer() error = %v", err)
		}
		if len(deals) != 0 {
			t.Errorf("deals = %+v, want none", deals)
		}
		if len(catalog.inserted) != 0 {
			t.Errorf("inserted batches = %d, want 0", len(catalog.inserted))
		}
	})

	t.Run("inserts extracted deals as one batch", func(t *testing.T) {
		extracted := []domain.Product{
			{Name: "Milk", Store: domain.StoreWalmart, Price: 2.99, Source: domain.SourceFlyer},
			{Name: "Eggs", Store: domain.StoreWalmart, Price: 3.49, Source: domain.SourceFlyer},
		}
		catalog := &fakeCatalog{}
		svc := NewDealService(&fakeExtractor{deals: extracted}, catalog)

		deals, err := svc.IngestFlyer(ctx, image, "image/png", domain.StoreWalmart)
		if err != nil {
			t.Fatalf("IngestFlyer() error = %v", err)
		}
		if len(deals) != 2 {
			t.Errorf("len(deals) = %d, want 2", len(deals))
		}
		if len(catalog.inserted) != 1 {
			t.Fatalf("inserted batches = %d, want 1 (atomic batch)", len(catalog.inserted))
		}
		if len(catalog.inserted[0]) != 2 {
			t.Errorf("batch size = %d, want 2", len(catalog.inserted[0]))
		}
	})

	t.Run("propagates catalog write failure", func(t *testing.T) {
		catalog := &fakeCatalog{err: domain.ErrCatalogUnavailable}
		svc := NewDealService(&fakeExtractor{deals: []domain.Product{{Name: "Milk", Price: 2.99}}}, catalog)
		_, err := svc.IngestFlyer(ctx, image, "image/png", domain.StoreWalmart)
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			t.Errorf("error = %v, want ErrCatalogUnavailable", err)
		}
	})
}
