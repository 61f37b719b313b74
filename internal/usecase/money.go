package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/decantbox/backend/internal/domain"
)

// sumPrices totals item prices without float drift
func sumPrices(items []domain.CatalogItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}

// formatMoney renders an amount the way it is shown to shoppers
func formatMoney(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}

// filterEligible drops items that can never be selected (non-positive price)
func filterEligible(items []domain.CatalogItem) []domain.CatalogItem {
	eligible := make([]domain.CatalogItem, 0, len(items))
	for _, it := range items {
		if it.Price.IsPositive() {
			eligible = append(eligible, it)
		}
	}
	return eligible
}
