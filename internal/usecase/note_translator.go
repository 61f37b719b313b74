package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/decantbox/backend/internal/domain"
	"github.com/decantbox/backend/internal/logging"
	"github.com/decantbox/backend/internal/metrics"
)

const noteMappingCacheKey = "notes:mapping"

// DefaultNoteMappingTTL is how long a loaded mapping is trusted before reloading
const DefaultNoteMappingTTL = time.Hour

// NoteTranslatorConfig holds configuration for the note translator
type NoteTranslatorConfig struct {
	CacheTTL time.Duration
}

// NoteTranslator rewrites Hebrew scent terms into the English note names used by the catalog.
// The mapping is loaded from a NoteMappingSource and held in the injected cache.
type NoteTranslator struct {
	source   domain.NoteMappingSource
	cache    domain.CacheRepository
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewNoteTranslator creates a translator over the given mapping source and cache
func NewNoteTranslator(
	source domain.NoteMappingSource,
	cache domain.CacheRepository,
	config NoteTranslatorConfig,
) *NoteTranslator {
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = DefaultNoteMappingTTL
	}

	return &NoteTranslator{
		source:   source,
		cache:    cache,
		cacheTTL: ttl,
		log:      logging.Component("notes"),
	}
}

// Rewrite normalizes terms and replaces every known term with its English note.
// Unknown terms pass through unchanged. The result is de-duplicated in input order.
// If the mapping cannot be loaded the terms are only normalized.
func (t *NoteTranslator) Rewrite(ctx context.Context, terms []string) []string {
	if len(terms) == 0 {
		return []string{}
	}

	mapping := t.mappings(ctx)

	rewritten := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if english, ok := mapping[term]; ok {
			term = english
		}
		rewritten = append(rewritten, term)
	}
	return dedupeStrings(rewritten)
}

// mappings returns the cached mapping, reloading it from the source on a miss
func (t *NoteTranslator) mappings(ctx context.Context) map[string]string {
	if cached, err := t.cache.Get(ctx, noteMappingCacheKey); err == nil {
		if mapping, ok := decodeMapping(cached); ok {
			metrics.NoteMappingCache.WithLabelValues("hit").Inc()
			return mapping
		}
	}
	metrics.NoteMappingCache.WithLabelValues("miss").Inc()

	loaded, err := t.source.LoadNoteMappings(ctx)
	if err != nil {
		metrics.NoteMappingCache.WithLabelValues("error").Inc()
		t.log.Warn().Err(err).Msg("note mapping load failed, terms left untranslated")
		return nil
	}

	mapping := make(map[string]string, len(loaded))
	for from, to := range loaded {
		from = strings.ToLower(strings.TrimSpace(from))
		to = strings.ToLower(strings.TrimSpace(to))
		if from != "" && to != "" {
			mapping[from] = to
		}
	}

	if err := t.cache.Set(ctx, noteMappingCacheKey, mapping, t.cacheTTL); err != nil {
		// Log but don't fail if caching fails
		t.log.Warn().Err(err).Msg("note mapping cache write failed")
	}

	t.log.Debug().Int("terms", len(mapping)).Dur("ttl", t.cacheTTL).Msg("note mapping loaded")
	return mapping
}

// decodeMapping handles both typed values and the generic maps a JSON-backed cache returns
func decodeMapping(value interface{}) (map[string]string, bool) {
	switch v := value.(type) {
	case map[string]string:
		return v, true
	case map[string]interface{}:
		mapping := make(map[string]string, len(v))
		for k, raw := range v {
			if s, ok := raw.(string); ok {
				mapping[k] = s
			}
		}
		return mapping, true
	}
	return nil, false
}

// DefaultNoteMappings is the built-in Hebrew to English note dictionary
func DefaultNoteMappings() map[string]string {
	return map[string]string{
		"ורד": "rose", "עוד": "oud", "וניל": "vanilla", "יסמין": "jasmine",
		"מאסק": "musk", "מושק": "musk", "ענבר": "amber", "אמבר": "amber",
		"הדרים": "citrus", "לימון": "lemon", "תפוז": "orange", "ברגמוט": "bergamot",
		"לבנדר": "lavender", "סנדלווד": "sandalwood", "אלגום": "sandalwood",
		"פצ'ולי": "patchouli", "פצולי": "patchouli", "עור": "leather", "טבק": "tobacco",
		"קינמון": "cinnamon", "פלפל": "pepper", "ארז": "cedar", "עץ": "wood",
		"עצי": "woody", "קפה": "coffee", "שוקולד": "chocolate", "דבש": "honey",
		"קטורת": "incense", "מנטה": "mint", "תאנה": "fig", "אירוס": "iris",
		"טוברוז": "tuberose", "פרחוני": "floral", "פירותי": "fruity", "ים": "marine",
		"מלח": "salt", "קוקוס": "coconut", "שקד": "almond", "גרדניה": "gardenia",
		"ויטיבר": "vetiver", "זעפרן": "saffron", "הל": "cardamom", "ג'ינג'ר": "ginger",
	}
}
