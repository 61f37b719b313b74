package usecase

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/decantbox/backend/internal/domain"
)

// Lottery packing defaults
const (
	DefaultLotteryTrials    = 50 // independent shuffles per draw
	DefaultLotteryTolerance = 20 // a trial may overshoot the budget by this much
	DefaultLotteryCloseFit  = 5  // stop early once a trial lands this close to the budget
)

// LotteryConfig holds configuration for randomized budget packing
type LotteryConfig struct {
	Trials    int
	Tolerance decimal.Decimal
	CloseFit  decimal.Decimal
}

// DefaultLotteryConfig returns the lottery defaults
func DefaultLotteryConfig() LotteryConfig {
	return LotteryConfig{
		Trials:    DefaultLotteryTrials,
		Tolerance: decimal.NewFromInt(DefaultLotteryTolerance),
		CloseFit:  decimal.NewFromInt(DefaultLotteryCloseFit),
	}
}

// withDefaults fills unset fields. Zero tolerance and close fit are kept:
// no overshoot, and no early stop short of an exact hit.
func (c LotteryConfig) withDefaults() LotteryConfig {
	if c.Trials <= 0 {
		c.Trials = DefaultLotteryTrials
	}
	if c.Tolerance.IsNegative() {
		c.Tolerance = decimal.NewFromInt(DefaultLotteryTolerance)
	}
	if c.CloseFit.IsNegative() {
		c.CloseFit = decimal.NewFromInt(DefaultLotteryCloseFit)
	}
	return c
}

// PackLottery fills a budget with a random variety of distinct-brand items.
// It runs up to config.Trials shuffles drawn from rng and keeps the trial whose total
// is closest to the budget; the first trial wins ties. The same rng state and input
// always produce the same result.
func PackLottery(items []domain.CatalogItem, budget decimal.Decimal, rng *rand.Rand, config LotteryConfig) domain.LotteryResult {
	config = config.withDefaults()

	pool := filterEligible(items)
	if len(pool) == 0 || !budget.IsPositive() {
		return domain.LotteryResult{Items: []domain.CatalogItem{}, TotalValue: decimal.Zero}
	}

	limit := budget.Add(config.Tolerance)

	var (
		best     []domain.CatalogItem
		bestSum  = decimal.Zero
		bestDiff decimal.Decimal
		trials   int
	)

	for trials < config.Trials {
		trials++
		rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})

		picked, sum := fillTrial(pool, limit)
		if len(picked) == 0 {
			continue
		}

		diff := sum.Sub(budget).Abs()
		if best == nil || diff.LessThan(bestDiff) {
			best, bestSum, bestDiff = picked, sum, diff
		}
		if bestDiff.LessThanOrEqual(config.CloseFit) {
			break
		}
	}

	if best == nil {
		best = []domain.CatalogItem{}
	}
	return domain.LotteryResult{
		Success:    len(best) > 0,
		Items:      best,
		TotalValue: bestSum,
		Trials:     trials,
	}
}

// fillTrial walks one shuffled order, adding distinct-brand items while the sum stays within limit
func fillTrial(order []domain.CatalogItem, limit decimal.Decimal) ([]domain.CatalogItem, decimal.Decimal) {
	used := make(map[string]bool)
	sum := decimal.Zero
	var picked []domain.CatalogItem

	for _, it := range order {
		brand := brandKey(it.Brand)
		if used[brand] {
			continue
		}
		next := sum.Add(it.Price)
		if next.GreaterThan(limit) {
			continue
		}
		used[brand] = true
		sum = next
		picked = append(picked, it)
	}
	return picked, sum
}
