package domain

import "github.com/shopspring/decimal"

// CatalogItem is one product priced at the requested size
type CatalogItem struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	ImageURL string          `json:"image_url,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Notes    []string        `json:"notes,omitempty"`
}

// MatchRequest describes a preference-driven bundle request
type MatchRequest struct {
	DesiredCount   int
	Size           Size
	Budget         decimal.Decimal
	PreferredNotes []string
}

// BundleStatus classifies how well a bundle fits the request
type BundleStatus string

const (
	StatusExactFit   BundleStatus = "exact-fit"
	StatusBestEffort BundleStatus = "best-effort"
	StatusInfeasible BundleStatus = "infeasible"
)

// BundleResult is the outcome of a bundle selection
type BundleResult struct {
	Items      []CatalogItem
	TotalPrice decimal.Decimal
	Status     BundleStatus
	Message    string
	Shortfall  int // items missing because too few distinct brands were eligible
	Swaps      int // budget repair swaps performed
}

// LotteryResult is the outcome of a randomized budget fill
type LotteryResult struct {
	Success    bool
	Items      []CatalogItem
	TotalValue decimal.Decimal
	Trials     int
}
