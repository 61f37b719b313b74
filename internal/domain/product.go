package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Size is a decant size class in millilitres
type Size int

// Sizes sold by the store
const (
	Size2ML  Size = 2
	Size5ML  Size = 5
	Size10ML Size = 10
)

// ParseSize validates a raw size value
func ParseSize(ml int) (Size, error) {
	switch s := Size(ml); s {
	case Size2ML, Size5ML, Size10ML:
		return s, nil
	}
	return 0, fmt.Errorf("%w: %dml", ErrUnknownSize, ml)
}

// Product is a catalog record as stored by the catalog provider
type Product struct {
	ID          int64                    `json:"id"`
	Name        string                   `json:"name"`
	Brand       string                   `json:"brand"`
	ImageURL    string                   `json:"image_url,omitempty"`
	StockML     int                      `json:"stock_ml"`
	Prices      map[Size]decimal.Decimal `json:"prices"`
	TopNotes    []string                 `json:"top_notes,omitempty"`
	MiddleNotes []string                 `json:"middle_notes,omitempty"`
	BaseNotes   []string                 `json:"base_notes,omitempty"`
}

// PriceFor returns the price at the given size, or zero when the product is not sold at it
func (p *Product) PriceFor(size Size) decimal.Decimal {
	if p.Prices == nil {
		return decimal.Zero
	}
	return p.Prices[size]
}

// Notes merges top, middle and base notes into one lowercased, de-duplicated list
func (p *Product) Notes() []string {
	seen := make(map[string]bool)
	var notes []string
	for _, group := range [][]string{p.TopNotes, p.MiddleNotes, p.BaseNotes} {
		for _, n := range group {
			n = strings.ToLower(strings.TrimSpace(n))
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			notes = append(notes, n)
		}
	}
	return notes
}

// ToCatalogItem resolves the product at one size into selector input
func (p *Product) ToCatalogItem(size Size) CatalogItem {
	return CatalogItem{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		ImageURL: p.ImageURL,
		Price:    p.PriceFor(size),
		Stock:    p.StockML,
		Notes:    p.Notes(),
	}
}
