package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/decantbox/backend/internal/domain"
	"github.com/decantbox/backend/internal/logging"
)

// Connect opens a pgx pool and verifies connectivity
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	log := logging.Component("postgres")
	log.Info().Msg("connected to postgres")
	return pool, nil
}

// PostgresCatalog reads products and note mappings from Postgres
type PostgresCatalog struct {
	db *pgxpool.Pool
}

// NewPostgresCatalog creates a catalog over an open pool
func NewPostgresCatalog(db *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

const listProductsSQL = `
	SELECT id, name, brand, COALESCE(image_url, ''), COALESCE(stock_ml, 0),
	       price_2ml::text, price_5ml::text, price_10ml::text,
	       COALESCE(top_notes, '{}'), COALESCE(middle_notes, '{}'), COALESCE(base_notes, '{}')
	FROM products
	WHERE is_active
	ORDER BY id
`

// productRow mirrors one row of listProductsSQL
type productRow struct {
	ID          int64
	Name        string
	Brand       string
	ImageURL    string
	StockML     int
	Price2ML    *string
	Price5ML    *string
	Price10ML   *string
	TopNotes    []string
	MiddleNotes []string
	BaseNotes   []string
}

// ListProducts returns every active product
func (r *PostgresCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var row productRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Brand, &row.ImageURL, &row.StockML,
			&row.Price2ML, &row.Price5ML, &row.Price10ML,
			&row.TopNotes, &row.MiddleNotes, &row.BaseNotes,
		); err != nil {
			return nil, err
		}
		product, err := row.toProduct()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

// toProduct converts a scanned row; NULL prices mean the size is not sold.
// NUMERIC prices arrive as text so cents survive without a float round trip.
func (row productRow) toProduct() (domain.Product, error) {
	prices := make(map[domain.Size]decimal.Decimal, 3)
	for size, price := range map[domain.Size]*string{
		domain.Size2ML:  row.Price2ML,
		domain.Size5ML:  row.Price5ML,
		domain.Size10ML: row.Price10ML,
	} {
		if price == nil {
			continue
		}
		parsed, err := decimal.NewFromString(*price)
		if err != nil {
			return domain.Product{}, fmt.Errorf("product %d: invalid %dml price %q: %w", row.ID, int(size), *price, err)
		}
		prices[size] = parsed
	}

	return domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		Brand:       row.Brand,
		ImageURL:    row.ImageURL,
		StockML:     row.StockML,
		Prices:      prices,
		TopNotes:    row.TopNotes,
		MiddleNotes: row.MiddleNotes,
		BaseNotes:   row.BaseNotes,
	}, nil
}

// LoadNoteMappings reads the note_mappings table
func (r *PostgresCatalog) LoadNoteMappings(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT hebrew, english FROM note_mappings`)
	if err != nil {
		return nil, err
	}

	pairs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([2]string, error) {
		var pair [2]string
		err := row.Scan(&pair[0], &pair[1])
		return pair, err
	})
	if err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(pairs))
	for _, p := range pairs {
		mapping[p[0]] = p[1]
	}
	return mapping, nil
}
