package usecase

import (
	"sort"

	"github.com/decantbox/backend/internal/domain"
)

// DefaultDedupDistance is the edit distance under which two requests are the same scent
const DefaultDedupDistance = 3

// RequestDeduplicator merges near-duplicate scent requests typed by shoppers
type RequestDeduplicator struct {
	maxDistance int
}

// NewRequestDeduplicator creates a deduplicator with the given default distance
func NewRequestDeduplicator(maxDistance int) *RequestDeduplicator {
	if maxDistance <= 0 {
		maxDistance = DefaultDedupDistance
	}
	return &RequestDeduplicator{maxDistance: maxDistance}
}

// Deduplicate groups requests whose normalized "brand model" keys are within maxDistance
// edits of a group's first request. A non-positive maxDistance uses the default.
// Groups are ordered by size, largest first, then by first appearance.
func (d *RequestDeduplicator) Deduplicate(requests []domain.ScentRequest, maxDistance int) []domain.MergedRequest {
	if maxDistance <= 0 {
		maxDistance = d.maxDistance
	}

	var keys []string
	groups := make([]domain.MergedRequest, 0)

	for _, req := range requests {
		key := requestKey(req)
		if key == "" {
			continue
		}

		joined := false
		for i, groupKey := range keys {
			if withinEditDistance(key, groupKey, maxDistance) {
				groups[i].Count++
				groups[i].RequestIDs = append(groups[i].RequestIDs, req.ID)
				joined = true
				break
			}
		}
		if joined {
			continue
		}

		keys = append(keys, key)
		groups = append(groups, domain.MergedRequest{
			Brand:      req.Brand,
			Model:      req.Model,
			Count:      1,
			RequestIDs: []string{req.ID},
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}

// requestKey concatenates brand and model into a comparable form
func requestKey(req domain.ScentRequest) string {
	return normalizeText(req.Brand + " " + req.Model)
}
