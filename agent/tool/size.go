package tool

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

var sizeScale = []string{"XXS", "XS", "S", "M", "L", "XL", "XXL"}

var sizeRangePattern = regexp.MustCompile(`(?i)\b(XXS|XS|S|M|L|XL|XXL)\s*(?:/|-|\bor\b|\band\b|\bto\b)\s*(XXS|XS|S|M|L|XL|XXL)\b`)

// SizeRecommender turns a stated fit preference into one size. Given a range
// of two sizes it always recommends the smaller one.
func SizeRecommender(preference string) contractx.SizeRecommendation {
	if lo, hi, ok := parseSizeRange(preference); ok {
		return contractx.SizeRecommendation{
			RecommendedSize: lo,
			Rationale: fmt.Sprintf(
				"Based on your preference between %s/%s, I recommend size %s for a more fitted look. You can always size up to %s if you prefer a looser fit.",
				lo, hi, lo, hi,
			),
		}
	}

	lower := strings.ToLower(preference)
	switch {
	case containsAny(lower, "loose", "comfortable", "relaxed"):
		return contractx.SizeRecommendation{
			RecommendedSize: "L",
			Rationale:       "Recommended size L for a comfortable, loose fit.",
		}
	case containsAny(lower, "fitted", "tight", "snug"):
		return contractx.SizeRecommendation{
			RecommendedSize: "M",
			Rationale:       "Recommended size M for a fitted look.",
		}
	default:
		return contractx.SizeRecommendation{
			RecommendedSize: "M",
			Rationale:       "Size M recommended as a versatile middle option that works for most body types.",
		}
	}
}

func parseSizeRange(preference string) (string, string, bool) {
	m := sizeRangePattern.FindStringSubmatch(preference)
	if m == nil {
		return "", "", false
	}

	a := slices.Index(sizeScale, strings.ToUpper(m[1]))
	b := slices.Index(sizeScale, strings.ToUpper(m[2]))
	if a == b {
		return "", "", false
	}
	if a > b {
		a, b = b, a
	}
	return sizeScale[a], sizeScale[b], true
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
