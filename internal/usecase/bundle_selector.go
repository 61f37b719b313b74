package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/decantbox/backend/internal/domain"
)

// Selector defaults
const (
	DefaultExactFitTolerance   = 5    // currency units either side of the budget
	DefaultMaxRepairIterations = 1000 // hard cap on budget repair swaps
)

const msgNoEligibleItems = "No items match your criteria right now"

// SelectorConfig holds configuration for the bundle selector
type SelectorConfig struct {
	ExactFitTolerance   decimal.Decimal
	MaxRepairIterations int
}

// BundleSelector picks one item per brand, preferring note overlap, close to a budget.
// It is stateless and safe for concurrent use.
type BundleSelector struct {
	exactFitTolerance   decimal.Decimal
	maxRepairIterations int
}

// DefaultSelectorConfig returns the selector defaults
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		ExactFitTolerance:   decimal.NewFromInt(DefaultExactFitTolerance),
		MaxRepairIterations: DefaultMaxRepairIterations,
	}
}

// NewBundleSelector creates a selector. A zero tolerance demands an exact total;
// a negative tolerance or non-positive iteration cap falls back to the default.
func NewBundleSelector(config SelectorConfig) *BundleSelector {
	tolerance := config.ExactFitTolerance
	if tolerance.IsNegative() {
		tolerance = decimal.NewFromInt(DefaultExactFitTolerance)
	}

	iterations := config.MaxRepairIterations
	if iterations <= 0 {
		iterations = DefaultMaxRepairIterations
	}

	return &BundleSelector{
		exactFitTolerance:   tolerance,
		maxRepairIterations: iterations,
	}
}

// candidate is an eligible item with its preference score
type candidate struct {
	item  domain.CatalogItem
	brand string
	score int
}

// Select runs scoring, greedy distinct-brand selection and budget repair.
// Items are expected to be pre-filtered for stock; non-positive prices are dropped here.
func (s *BundleSelector) Select(items []domain.CatalogItem, request domain.MatchRequest) domain.BundleResult {
	candidates := scoreCandidates(filterEligible(items), request.PreferredNotes)
	if len(candidates) == 0 || request.DesiredCount < 1 {
		return domain.BundleResult{
			Items:      []domain.CatalogItem{},
			TotalPrice: decimal.Zero,
			Status:     domain.StatusInfeasible,
			Message:    msgNoEligibleItems,
			Shortfall:  max(request.DesiredCount, 0),
		}
	}

	sortCandidates(candidates)
	selected, remainder := pickDistinctBrands(candidates, request.DesiredCount)

	total := decimal.Zero
	for _, c := range selected {
		total = total.Add(c.item.Price)
	}

	swaps := 0
	if total.GreaterThan(request.Budget) {
		total, swaps = s.repair(selected, remainder, request.Budget, total)
	}

	result := domain.BundleResult{
		Items:      make([]domain.CatalogItem, len(selected)),
		TotalPrice: total,
		Shortfall:  request.DesiredCount - len(selected),
		Swaps:      swaps,
	}
	for i, c := range selected {
		result.Items[i] = c.item
	}
	result.Status, result.Message = s.classify(result, request)
	return result
}

// scoreCandidates computes the raw note hit count for every item.
// The count is not normalized by the item's note count.
func scoreCandidates(items []domain.CatalogItem, preferred []string) []candidate {
	wanted := make(map[string]bool, len(preferred))
	for _, n := range preferred {
		if n = normalizeNote(n); n != "" {
			wanted[n] = true
		}
	}

	candidates := make([]candidate, 0, len(items))
	for _, it := range items {
		candidates = append(candidates, candidate{
			item:  it,
			brand: brandKey(it.Brand),
			score: noteOverlap(it.Notes, wanted),
		})
	}
	return candidates
}

// noteOverlap counts distinct item notes present in the wanted set
func noteOverlap(notes []string, wanted map[string]bool) int {
	if len(wanted) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(notes))
	hits := 0
	for _, n := range notes {
		n = normalizeNote(n)
		if wanted[n] && !seen[n] {
			seen[n] = true
			hits++
		}
	}
	return hits
}

// sortCandidates orders by score descending, then price ascending; input order breaks ties
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].item.Price.LessThan(candidates[j].item.Price)
	})
}

// pickDistinctBrands takes the first count candidates with unused brands.
// Everything not taken is returned as the repair remainder.
func pickDistinctBrands(candidates []candidate, count int) (selected, remainder []candidate) {
	used := make(map[string]bool)
	for _, c := range candidates {
		if len(selected) < count && !used[c.brand] {
			used[c.brand] = true
			selected = append(selected, c)
			continue
		}
		remainder = append(remainder, c)
	}
	return selected, remainder
}

// repair swaps the most expensive selected item for the cheapest strictly cheaper
// remainder item until the total fits the budget. Brand uniqueness is re-checked on
// every swap. The total strictly decreases with each swap and one remainder item is
// consumed per swap, so the loop terminates even without the iteration cap.
func (s *BundleSelector) repair(selected, remainder []candidate, budget, total decimal.Decimal) (decimal.Decimal, int) {
	pool := make([]candidate, len(remainder))
	copy(pool, remainder)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].item.Price.LessThan(pool[j].item.Price)
	})

	swaps := 0
	for swaps < s.maxRepairIterations && total.GreaterThan(budget) {
		worst := mostExpensive(selected)
		pick := cheapestReplacement(pool, selected, worst)
		if pick < 0 {
			break
		}

		total = total.Sub(selected[worst].item.Price).Add(pool[pick].item.Price)
		selected[worst] = pool[pick]
		pool = append(pool[:pick], pool[pick+1:]...)
		swaps++
	}
	return total, swaps
}

// mostExpensive returns the index of the highest priced selected item (first on ties)
func mostExpensive(selected []candidate) int {
	idx := 0
	for i := 1; i < len(selected); i++ {
		if selected[i].item.Price.GreaterThan(selected[idx].item.Price) {
			idx = i
		}
	}
	return idx
}

// cheapestReplacement scans the price-ascending pool for the first item that is strictly
// cheaper than selected[worst] and whose brand no other selected item holds.
func cheapestReplacement(pool, selected []candidate, worst int) int {
	limit := selected[worst].item.Price
	for i, c := range pool {
		if !c.item.Price.LessThan(limit) {
			return -1
		}
		if brandTaken(selected, worst, c.brand) {
			continue
		}
		return i
	}
	return -1
}

func brandTaken(selected []candidate, except int, brand string) bool {
	for i, c := range selected {
		if i != except && c.brand == brand {
			return true
		}
	}
	return false
}

// classify derives the status and the shopper-facing message
func (s *BundleSelector) classify(result domain.BundleResult, request domain.MatchRequest) (domain.BundleStatus, string) {
	total := result.TotalPrice
	budget := request.Budget
	diff := total.Sub(budget)

	var shortNote string
	if result.Shortfall > 0 {
		shortNote = fmt.Sprintf(" Only %d of the %d requested items could be matched with distinct brands.",
			len(result.Items), request.DesiredCount)
	}

	if result.Shortfall == 0 && diff.Abs().LessThanOrEqual(s.exactFitTolerance) {
		return domain.StatusExactFit, fmt.Sprintf("Found %s totaling %s, matching your budget of %s.",
			pluralItems(len(result.Items)), formatMoney(total), formatMoney(budget))
	}

	switch {
	case diff.IsPositive():
		return domain.StatusBestEffort, fmt.Sprintf("The closest bundle we could build totals %s, %s over your budget of %s.%s",
			formatMoney(total), formatMoney(diff), formatMoney(budget), shortNote)
	case diff.IsNegative():
		return domain.StatusBestEffort, fmt.Sprintf("Found %s totaling %s, %s under your budget of %s.%s",
			pluralItems(len(result.Items)), formatMoney(total), formatMoney(diff.Neg()), formatMoney(budget), shortNote)
	default:
		return domain.StatusBestEffort, fmt.Sprintf("Found %s totaling exactly your budget of %s.%s",
			pluralItems(len(result.Items)), formatMoney(budget), shortNote)
	}
}

func pluralItems(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

func brandKey(brand string) string {
	return strings.ToLower(strings.TrimSpace(brand))
}

func normalizeNote(note string) string {
	return strings.ToLower(strings.TrimSpace(note))
}
