package catalog

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/goosegrocer/backend/internal/domain"
)

// seedPriceColumns maps the wide per-store price columns of the seed CSV
// to stores. Rows with an empty or unparsable price cell are skipped for
// that store only.
var seedPriceColumns = map[string]domain.Store{
	"no_frills_price":   domain.StoreNoFrills,
	"food_basics_price": domain.StoreFoodBasics,
	"walmart_price":     domain.StoreWalmart,
	"freshco_price":     domain.StoreFreshCo,
	"loblaws_price":     domain.StoreLoblaws,
}

// SeedFromCSV replaces all seed rows with the contents of the CSV at path.
// Flyer rows are left untouched. The whole load is one transaction.
func (s *SQLiteCatalog) SeedFromCSV(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "catalog: open seed file %s", path)
	}
	defer f.Close()

	products, err := parseSeedCSV(f)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "catalog: begin seed load")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM products WHERE source = ?`, string(domain.SourceSeed),
	); err != nil {
		return 0, eris.Wrap(err, "catalog: clear seed rows")
	}

	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, store, category, brand, unit, price, source)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, string(p.Store), p.Category, p.Brand, p.Unit,
			p.Price, string(domain.SourceSeed),
		); err != nil {
			return 0, eris.Wrapf(err, "catalog: insert seed row %q", p.Name)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE catalog_meta SET value = value + 1 WHERE key = 'version'`,
	); err != nil {
		return 0, eris.Wrap(err, "catalog: bump version")
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "catalog: commit seed load")
	}

	zap.L().Info("catalog: seed loaded",
		zap.String("path", path),
		zap.Int("rows", len(products)),
	)
	return len(products), nil
}

// parseSeedCSV turns the wide seed sheet (one row per product, one price
// column per store) into one Product per (product, store) pair.
func parseSeedCSV(r io.Reader) ([]domain.Product, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read seed header")
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := index["product_name"]; !ok {
		return nil, eris.New("catalog: seed file missing product_name column")
	}

	var products []domain.Product
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "catalog: read seed row")
		}

		name := strings.TrimSpace(cell(record, index, "product_name"))
		if name == "" {
			continue
		}
		category := strings.TrimSpace(cell(record, index, "category"))
		brand := strings.TrimSpace(cell(record, index, "brand"))
		unit := strings.TrimSpace(cell(record, index, "unit"))

		for col, store := range seedPriceColumns {
			raw := strings.TrimSpace(cell(record, index, col))
			if raw == "" {
				continue
			}
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil || price <= 0 {
				continue
			}
			products = append(products, domain.Product{
				ID:       uuid.New().String(),
				Name:     name,
				Store:    store,
				Category: category,
				Brand:    brand,
				Unit:     unit,
				Price:    price,
				Source:   domain.SourceSeed,
			})
		}
	}

	return products, nil
}

func cell(record []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
