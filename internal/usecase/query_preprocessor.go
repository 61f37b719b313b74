package usecase

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/decantbox/backend/internal/logging"
)

// QueryPreprocessor cleans shopper search queries into catalog search terms
type QueryPreprocessor struct {
	log zerolog.Logger
}

// Compiled regex patterns for query preprocessing
var (
	// Matches size patterns like "10ml", "5 ml", "100 מ"ל"
	sizeQuantityPattern = regexp.MustCompile(`(?i)\b\d+\.?\d*\s*(ml|oz)\b|\d+\.?\d*\s*מ"?ל`)

	// Matches concentration labels like "eau de parfum", "EDT"
	concentrationPattern = regexp.MustCompile(`(?i)\beau\s+de\s+(parfum|toilette|cologne)\b|\b(edp|edt|edc|parfum|extrait)\b`)
)

// queryNoiseWords carry no meaning for catalog matching
var queryNoiseWords = map[string]bool{
	// Store vocabulary
	"sample": true, "samples": true, "decant": true, "decants": true,
	"perfume": true, "perfumes": true, "fragrance": true, "scent": true,
	"bottle": true, "spray": true, "tester": true,
	// Hebrew store vocabulary
	"בושם": true, "בשמים": true, "דוגמית": true, "דוגמיות": true, "ריח": true,
	// Generic
	"for": true, "with": true, "and": true, "the": true,
	"men": true, "women": true, "unisex": true,
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor() *QueryPreprocessor {
	return &QueryPreprocessor{
		log: logging.Component("query"),
	}
}

// Terms cleans a raw query and splits it into distinct search terms.
// Removes sizes, concentration labels and noise words.
func (p *QueryPreprocessor) Terms(query string) []string {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	// Step 1: Remove size patterns (e.g., "10ml")
	cleaned := sizeQuantityPattern.ReplaceAllString(query, " ")

	// Step 2: Remove concentration labels (e.g., "eau de parfum")
	cleaned = concentrationPattern.ReplaceAllString(cleaned, " ")

	// Step 3: Normalize punctuation, case and whitespace
	cleaned = normalizeText(cleaned)

	// Step 4: Drop noise words, single runes and pure numbers
	var terms []string
	for _, word := range strings.Fields(cleaned) {
		word = strings.Trim(word, "'")
		if queryNoiseWords[word] || len([]rune(word)) <= 1 || isNumeric(word) {
			continue
		}
		terms = append(terms, word)
	}
	terms = dedupeStrings(terms)

	p.log.Debug().Str("input", query).Strs("terms", terms).Msg("query preprocessed")
	return terms
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
