package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/goosegrocer/backend/internal/domain"
)

// SQLiteCatalog implements domain.CatalogRepository using modernc.org/sqlite.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "catalog: exec %s", pragma)
		}
	}
	return &SQLiteCatalog{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	store       TEXT NOT NULL,
	category    TEXT,
	brand       TEXT,
	unit        TEXT,
	price       REAL NOT NULL,
	source      TEXT NOT NULL DEFAULT 'seed',
	valid_until DATETIME,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS catalog_meta (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

INSERT OR IGNORE INTO catalog_meta (key, value) VALUES ('version', 1);

CREATE INDEX IF NOT EXISTS idx_products_store ON products(store);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
CREATE INDEX IF NOT EXISTS idx_products_source ON products(source);
`

// Migrate creates the schema if it does not exist yet.
func (s *SQLiteCatalog) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "catalog: migrate")
}

// Close closes the underlying database handle.
func (s *SQLiteCatalog) Close() error {
	return s.db.Close()
}

const productColumns = `id, name, store, category, brand, unit, price, source, valid_until`

// GetAllProducts returns every catalog row, seed and flyer alike.
func (s *SQLiteCatalog) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY store, name`,
	)
	if err != nil {
		return nil, eris.Wrap(domain.ErrCatalogUnavailable, err.Error())
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SearchProducts returns rows whose name contains query (case-insensitive),
// optionally restricted to one store.
func (s *SQLiteCatalog) SearchProducts(ctx context.Context, query string, store *domain.Store) ([]domain.Product, error) {
	sqlQuery := `SELECT ` + productColumns + ` FROM products WHERE LOWER(name) LIKE LOWER(?)`
	args := []any{"%" + query + "%"}

	if store != nil {
		sqlQuery += ` AND store = ?`
		args = append(args, string(*store))
	}
	sqlQuery += ` ORDER BY store, name`

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, eris.Wrap(domain.ErrCatalogUnavailable, err.Error())
	}
	defer rows.Close()

	return scanProducts(rows)
}

// InsertDeals writes one flyer batch in a single transaction and bumps the
// catalog version. Readers observe either none or all of the batch.
func (s *SQLiteCatalog) InsertDeals(ctx context.Context, deals []domain.Product) error {
	if len(deals) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "catalog: begin deal batch")
	}
	defer tx.Rollback()

	for _, deal := range deals {
		id := deal.ID
		if id == "" {
			id = uuid.New().String()
		}
		var validUntil any
		if deal.ValidUntil != nil {
			validUntil = deal.ValidUntil.UTC()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, store, category, brand, unit, price, source, valid_until)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, deal.Name, string(deal.Store), deal.Category, deal.Brand, deal.Unit,
			deal.Price, string(domain.SourceFlyer), validUntil,
		)
		if err != nil {
			return eris.Wrapf(err, "catalog: insert deal %q", deal.Name)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE catalog_meta SET value = value + 1 WHERE key = 'version'`,
	); err != nil {
		return eris.Wrap(err, "catalog: bump version")
	}

	return eris.Wrap(tx.Commit(), "catalog: commit deal batch")
}

// Version returns the current catalog snapshot version.
func (s *SQLiteCatalog) Version(ctx context.Context) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM catalog_meta WHERE key = 'version'`,
	).Scan(&version)
	if err != nil {
		return 0, eris.Wrap(domain.ErrCatalogUnavailable, err.Error())
	}
	return version, nil
}

// ActiveDeals returns flyer rows whose validity window has not passed.
func (s *SQLiteCatalog) ActiveDeals(ctx context.Context, now time.Time) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE source = ? AND (valid_until IS NULL OR valid_until > ?)
		 ORDER BY store, name`,
		string(domain.SourceFlyer), now.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(domain.ErrCatalogUnavailable, err.Error())
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var (
			p                     domain.Product
			store, source         string
			category, brand, unit sql.NullString
			validUntil            sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &store, &category, &brand, &unit,
			&p.Price, &source, &validUntil); err != nil {
			return nil, eris.Wrap(err, "catalog: scan product")
		}
		p.Store = domain.Store(store)
		p.Source = domain.ProductSource(source)
		p.Category = category.String
		p.Brand = brand.String
		p.Unit = unit.String
		if validUntil.Valid {
			t := validUntil.Time
			p.ValidUntil = &t
		}
		products = append(products, p)
	}
	return products, eris.Wrap(rows.Err(), "catalog: iterate products")
}
