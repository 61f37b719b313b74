package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogRepository returns a read-only snapshot of the product catalog
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// NoteMappingSource loads the Hebrew to English scent-note dictionary.
// Keys are lowercased source terms, values are English note names.
type NoteMappingSource interface {
	LoadNoteMappings(ctx context.Context) (map[string]string, error)
}
