package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnknownSize is returned when a requested size class is not sold
	ErrUnknownSize = errors.New("unknown item size")

	// ErrCatalogUnavailable is returned when the catalog provider cannot be read
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
