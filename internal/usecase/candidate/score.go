package candidate

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/gdugdh24/barter-backend/internal/domain"
)

const (
	subcategoryWeight = 0.40
	titleWeight       = 0.35
	proximityWeight   = 0.25

	// DefaultProximityLevel is how many leading postal code characters must agree.
	DefaultProximityLevel = 3
)

// IsNearby compares the first level characters of both postal codes. Codes
// shorter than level are compared up to their own length, so "AB" and "ABC"
// never agree at level 3. Empty codes are never nearby.
func IsNearby(a, b string, level int) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if level <= 0 {
		level = DefaultProximityLevel
	}
	return prefix(a, level) == prefix(b, level)
}

func prefix(s string, n int) string {
	r := []rune(strings.ToUpper(s))
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// TitleSimilarity is the Ratcliff/Obershelp ratio over lower-cased titles.
func TitleSimilarity(a, b string) float64 {
	m := difflib.NewMatcher(splitRunes(strings.ToLower(a)), splitRunes(strings.ToLower(b)))
	return m.Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// SameSubcategory is exact equality; an empty subcategory matches nothing.
func SameSubcategory(a, b string) bool {
	return a != "" && a == b
}

// ScoreMatch weighs subcategory, title and postal proximity into [0, 1].
func ScoreMatch(offer, request *domain.Listing, offerPostal, requestPostal string, proximityLevel int) float64 {
	var score float64
	if SameSubcategory(offer.Subcategory, request.Subcategory) {
		score += subcategoryWeight
	}
	score += titleWeight * TitleSimilarity(offer.Title, request.Title)
	if IsNearby(offerPostal, requestPostal, proximityLevel) {
		score += proximityWeight
	}
	return score
}
