package domain

// ScentRequest is a shopper's request for a fragrance the store does not carry yet
type ScentRequest struct {
	ID        string `json:"id"`
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Requester string `json:"requester,omitempty"`
}

// MergedRequest groups near-duplicate scent requests
type MergedRequest struct {
	Brand      string   `json:"brand"`
	Model      string   `json:"model"`
	Count      int      `json:"count"`
	RequestIDs []string `json:"requestIds"`
}
