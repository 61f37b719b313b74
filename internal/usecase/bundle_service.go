package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"lukechampine.com/frand"

	"github.com/decantbox/backend/internal/domain"
	"github.com/decantbox/backend/internal/logging"
	"github.com/decantbox/backend/internal/metrics"
)

// Lottery budget bounds
const (
	DefaultLotteryMinBudget = 200
	DefaultLotteryMaxBudget = 1000
)

// BundleServiceConfig holds configuration for the bundle service
type BundleServiceConfig struct {
	Selector         SelectorConfig
	Lottery          LotteryConfig
	LotteryMinBudget decimal.Decimal
	LotteryMaxBudget decimal.Decimal
	LotterySize      domain.Size
}

// DefaultBundleServiceConfig returns the service defaults
func DefaultBundleServiceConfig() BundleServiceConfig {
	return BundleServiceConfig{
		Selector:         DefaultSelectorConfig(),
		Lottery:          DefaultLotteryConfig(),
		LotteryMinBudget: decimal.NewFromInt(DefaultLotteryMinBudget),
		LotteryMaxBudget: decimal.NewFromInt(DefaultLotteryMaxBudget),
		LotterySize:      domain.Size2ML,
	}
}

// BundleService loads a catalog snapshot and runs the bundle algorithms over it
type BundleService struct {
	catalog     domain.CatalogRepository
	translator  *NoteTranslator
	selector    *BundleSelector
	lottery     LotteryConfig
	minBudget   decimal.Decimal
	maxBudget   decimal.Decimal
	lotterySize domain.Size
	newRand     func() *rand.Rand
	log         zerolog.Logger
}

// NewBundleService creates a bundle service. translator may be nil to skip note rewriting.
func NewBundleService(
	catalog domain.CatalogRepository,
	translator *NoteTranslator,
	config BundleServiceConfig,
) *BundleService {
	minBudget := config.LotteryMinBudget
	if !minBudget.IsPositive() {
		minBudget = decimal.NewFromInt(DefaultLotteryMinBudget)
	}
	maxBudget := config.LotteryMaxBudget
	if !maxBudget.IsPositive() {
		maxBudget = decimal.NewFromInt(DefaultLotteryMaxBudget)
	}

	size := config.LotterySize
	if _, err := domain.ParseSize(int(size)); err != nil {
		size = domain.Size2ML
	}

	return &BundleService{
		catalog:     catalog,
		translator:  translator,
		selector:    NewBundleSelector(config.Selector),
		lottery:     config.Lottery.withDefaults(),
		minBudget:   minBudget,
		maxBudget:   maxBudget,
		lotterySize: size,
		newRand:     newSeededRand,
		log:         logging.Component("bundle"),
	}
}

// newSeededRand seeds a PCG generator from the system CSPRNG
func newSeededRand() *rand.Rand {
	return rand.New(rand.NewPCG(frand.Uint64n(math.MaxUint64), frand.Uint64n(math.MaxUint64)))
}

// MatchBundle builds a preference-driven bundle.
// Flow: validate -> load catalog -> price at size + stock filter -> translate notes -> select
func (s *BundleService) MatchBundle(ctx context.Context, request *domain.MatchRequest) (*domain.BundleResult, error) {
	if request == nil || request.DesiredCount < 1 || !request.Budget.IsPositive() {
		return nil, domain.ErrInvalidRequest
	}
	if _, err := domain.ParseSize(int(request.Size)); err != nil {
		return nil, err
	}

	items, err := s.eligibleItems(ctx, request.Size)
	if err != nil {
		return nil, err
	}

	req := *request
	if s.translator != nil {
		req.PreferredNotes = s.translator.Rewrite(ctx, request.PreferredNotes)
	}

	start := time.Now()
	result := s.selector.Select(items, req)
	metrics.BundleSelectionDuration.WithLabelValues("match").Observe(time.Since(start).Seconds())
	metrics.BundleRequests.WithLabelValues("match", string(result.Status)).Inc()
	metrics.BundleRepairSwaps.Add(float64(result.Swaps))

	s.log.Info().
		Int("requested", req.DesiredCount).
		Int("size_ml", int(req.Size)).
		Str("budget", req.Budget.String()).
		Strs("notes", req.PreferredNotes).
		Int("eligible", len(items)).
		Int("selected", len(result.Items)).
		Str("total", result.TotalPrice.String()).
		Int("swaps", result.Swaps).
		Str("status", string(result.Status)).
		Msg("bundle matched")

	return &result, nil
}

// DrawLottery fills a budget with a random variety of items at the lottery size
func (s *BundleService) DrawLottery(ctx context.Context, budget decimal.Decimal) (*domain.LotteryResult, error) {
	if budget.LessThan(s.minBudget) || budget.GreaterThan(s.maxBudget) {
		return nil, fmt.Errorf("%w: budget must be between %s and %s",
			domain.ErrInvalidRequest, s.minBudget, s.maxBudget)
	}

	items, err := s.eligibleItems(ctx, s.lotterySize)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := PackLottery(items, budget, s.newRand(), s.lottery)
	metrics.BundleSelectionDuration.WithLabelValues("lottery").Observe(time.Since(start).Seconds())

	status := "success"
	if !result.Success {
		status = string(domain.StatusInfeasible)
	}
	metrics.BundleRequests.WithLabelValues("lottery", status).Inc()

	s.log.Info().
		Str("budget", budget.String()).
		Int("eligible", len(items)).
		Int("selected", len(result.Items)).
		Str("total", result.TotalValue.String()).
		Int("trials", result.Trials).
		Msg("lottery drawn")

	return &result, nil
}

// eligibleItems prices the catalog at size and keeps products with a price and enough stock
func (s *BundleService) eligibleItems(ctx context.Context, size domain.Size) ([]domain.CatalogItem, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("catalog load failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	items := make([]domain.CatalogItem, 0, len(products))
	for i := range products {
		p := &products[i]
		if !p.PriceFor(size).IsPositive() || p.StockML < int(size) {
			continue
		}
		items = append(items, p.ToCatalogItem(size))
	}
	return items, nil
}
