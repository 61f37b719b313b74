package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/decantbox/backend/internal/domain"
)

// SearchResult is the outcome of a catalog search
type SearchResult struct {
	Query    string
	Terms    []string
	Products []domain.Product
}

// CatalogSearch finds products by name, brand or note, translating Hebrew terms first
type CatalogSearch struct {
	catalog      domain.CatalogRepository
	translator   *NoteTranslator
	preprocessor *QueryPreprocessor
}

// NewCatalogSearch creates a search service. translator may be nil.
func NewCatalogSearch(catalog domain.CatalogRepository, translator *NoteTranslator) *CatalogSearch {
	return &CatalogSearch{
		catalog:      catalog,
		translator:   translator,
		preprocessor: NewQueryPreprocessor(),
	}
}

// Search returns products matching any query term, most matched terms first, then by name
func (s *CatalogSearch) Search(ctx context.Context, query string) (*SearchResult, error) {
	terms := s.preprocessor.Terms(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidRequest)
	}
	if s.translator != nil {
		terms = s.translator.Rewrite(ctx, terms)
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	type hit struct {
		product domain.Product
		matched int
	}
	var hits []hit
	for _, p := range products {
		haystack := searchHaystack(&p)
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched > 0 {
			hits = append(hits, hit{product: p, matched: matched})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].matched != hits[j].matched {
			return hits[i].matched > hits[j].matched
		}
		return strings.ToLower(hits[i].product.Name) < strings.ToLower(hits[j].product.Name)
	})

	result := &SearchResult{
		Query:    query,
		Terms:    terms,
		Products: make([]domain.Product, len(hits)),
	}
	for i, h := range hits {
		result.Products[i] = h.product
	}
	return result, nil
}

// searchHaystack is the lowercased text a product is matched against
func searchHaystack(p *domain.Product) string {
	parts := append([]string{p.Name, p.Brand}, p.Notes()...)
	return strings.ToLower(strings.Join(parts, " "))
}
