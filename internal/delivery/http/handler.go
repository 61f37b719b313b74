package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/decantbox/backend/internal/domain"
	"github.com/decantbox/backend/internal/logging"
	"github.com/decantbox/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	bundles *usecase.BundleService
	search  *usecase.CatalogSearch
	dedup   *usecase.RequestDeduplicator
	log     zerolog.Logger
}

// NewHandler creates a new HTTP handler. Nil services answer 503 on their routes.
func NewHandler(
	bundles *usecase.BundleService,
	search *usecase.CatalogSearch,
	dedup *usecase.RequestDeduplicator,
) *Handler {
	return &Handler{
		bundles: bundles,
		search:  search,
		dedup:   dedup,
		log:     logging.Component("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "decantbox-backend",
		"version": "1.0.0",
	})
}

type matchBundleRequest struct {
	Quantity int      `json:"quantity" binding:"required,min=1,max=20"`
	Size     int      `json:"size" binding:"required,oneof=2 5 10"`
	Budget   float64  `json:"budget" binding:"required,gt=0"`
	Notes    []string `json:"notes" binding:"omitempty,max=20,dive,max=50"`
}

type productResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

type matchBundleResponse struct {
	Products   []productResponse `json:"products"`
	TotalPrice float64           `json:"totalPrice"`
	Message    string            `json:"message"`
	Status     string            `json:"status"`
	Shortfall  int               `json:"shortfall"`
}

// MatchBundle builds a note-matched bundle within a budget
func (h *Handler) MatchBundle(c *gin.Context) {
	if h.bundles == nil {
		respondError(c, http.StatusServiceUnavailable, "bundle service not configured", nil)
		return
	}

	var req matchBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.bundles.MatchBundle(c.Request.Context(), &domain.MatchRequest{
		DesiredCount:   req.Quantity,
		Size:           domain.Size(req.Size),
		Budget:         decimal.NewFromFloat(req.Budget),
		PreferredNotes: req.Notes,
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := matchBundleResponse{
		Products:   make([]productResponse, len(result.Items)),
		TotalPrice: result.TotalPrice.InexactFloat64(),
		Message:    result.Message,
		Status:     string(result.Status),
		Shortfall:  result.Shortfall,
	}
	for i, it := range result.Items {
		resp.Products[i] = productResponse{
			ID:       it.ID,
			Name:     it.Name,
			Brand:    it.Brand,
			ImageURL: it.ImageURL,
			Price:    it.Price.InexactFloat64(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

type lotteryRequest struct {
	Budget float64 `json:"budget" binding:"required,gt=0"`
}

type catalogItemResponse struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Brand    string   `json:"brand"`
	ImageURL string   `json:"image_url"`
	Price    float64  `json:"price"`
	Stock    int      `json:"stock"`
	Notes    []string `json:"notes"`
}

type lotteryResponse struct {
	Success    bool                  `json:"success"`
	Items      []catalogItemResponse `json:"items"`
	TotalValue float64               `json:"totalValue"`
}

// DrawLottery fills the requested budget with a random variety of decants
func (h *Handler) DrawLottery(c *gin.Context) {
	if h.bundles == nil {
		respondError(c, http.StatusServiceUnavailable, "bundle service not configured", nil)
		return
	}

	var req lotteryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.bundles.DrawLottery(c.Request.Context(), decimal.NewFromFloat(req.Budget))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := lotteryResponse{
		Success:    result.Success,
		Items:      make([]catalogItemResponse, len(result.Items)),
		TotalValue: result.TotalValue.InexactFloat64(),
	}
	for i, it := range result.Items {
		resp.Items[i] = catalogItemResponse{
			ID:       it.ID,
			Name:     it.Name,
			Brand:    it.Brand,
			ImageURL: it.ImageURL,
			Price:    it.Price.InexactFloat64(),
			Stock:    it.Stock,
			Notes:    it.Notes,
		}
	}
	c.JSON(http.StatusOK, resp)
}

type searchProductResponse struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	Brand    string             `json:"brand"`
	ImageURL string             `json:"image_url"`
	Prices   map[string]float64 `json:"prices"`
	Notes    []string           `json:"notes"`
}

// SearchProducts finds products by name, brand or note; Hebrew note names are accepted
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.search == nil {
		respondError(c, http.StatusServiceUnavailable, "search service not configured", nil)
		return
	}

	query := c.Query("q")
	result, err := h.search.Search(c.Request.Context(), query)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	products := make([]searchProductResponse, len(result.Products))
	for i := range result.Products {
		p := &result.Products[i]
		prices := make(map[string]float64, len(p.Prices))
		for size, price := range p.Prices {
			if price.IsPositive() {
				prices[strconv.Itoa(int(size))] = price.InexactFloat64()
			}
		}
		products[i] = searchProductResponse{
			ID:       p.ID,
			Name:     p.Name,
			Brand:    p.Brand,
			ImageURL: p.ImageURL,
			Prices:   prices,
			Notes:    p.Notes(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    result.Query,
		"terms":    result.Terms,
		"products": products,
	})
}

type dedupRequest struct {
	Requests    []domain.ScentRequest `json:"requests" binding:"required,min=1,max=5000"`
	MaxDistance int                   `json:"maxDistance" binding:"omitempty,min=1,max=10"`
}

// DeduplicateRequests merges near-duplicate scent requests
func (h *Handler) DeduplicateRequests(c *gin.Context) {
	if h.dedup == nil {
		respondError(c, http.StatusServiceUnavailable, "dedup service not configured", nil)
		return
	}

	var req dedupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	groups := h.dedup.Deduplicate(req.Requests, req.MaxDistance)
	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
	})
}

// respondServiceError maps domain errors to HTTP status codes
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownSize):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrCatalogUnavailable):
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("catalog unavailable")
		respondError(c, http.StatusServiceUnavailable, "catalog temporarily unavailable", nil)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		respondError(c, http.StatusInternalServerError, "internal error", nil)
	}
}
