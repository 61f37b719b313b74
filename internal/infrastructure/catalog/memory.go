package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/decantbox/backend/internal/domain"
)

// MemoryCatalog serves a fixed product list, typically loaded from a JSON seed file
// and never modified after construction
type MemoryCatalog struct {
	products []domain.Product
}

// NewMemoryCatalog creates a catalog over the given products
func NewMemoryCatalog(products []domain.Product) *MemoryCatalog {
	return &MemoryCatalog{products: products}
}

// LoadMemoryCatalog reads a JSON array of products from path
func LoadMemoryCatalog(path string) (*MemoryCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode catalog seed %s: %w", path, err)
	}

	return NewMemoryCatalog(products), nil
}

// ListProducts returns a copy of the product list
func (c *MemoryCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// StaticNoteMappings is a NoteMappingSource over a fixed dictionary
type StaticNoteMappings map[string]string

// LoadNoteMappings returns a copy of the dictionary
func (m StaticNoteMappings) LoadNoteMappings(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}
