package tool

import (
	"slices"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

// ProductSearch filters the catalog by price cap and tags and ranks the rest by
// how many query terms and tags they hit. The price cap is a hard filter. The
// result is never truncated here; callers decide how many to show.
func ProductSearch(catalog contractx.CatalogStore, query string, priceMax float64, tags []string) []contractx.Product {
	terms := tokenize(query)
	wanted := normalizeTags(tags)

	type scored struct {
		product contractx.Product
		score   int
	}

	var hits []scored
	for _, p := range catalog.List() {
		if p.Price > priceMax {
			continue
		}

		productTags := normalizeTags(p.Tags)
		title := strings.ToLower(p.Title)

		score := 0
		for _, tag := range wanted {
			if slices.Contains(productTags, tag) {
				score++
			}
		}
		for _, term := range terms {
			if strings.Contains(title, term) || slices.Contains(productTags, term) {
				score++
			}
		}

		if score == 0 && (len(terms) > 0 || len(wanted) > 0) {
			continue
		}
		hits = append(hits, scored{product: p, score: score})
	}

	slices.SortStableFunc(hits, func(a, b scored) int {
		return b.score - a.score
	})

	out := make([]contractx.Product, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.product)
	}
	return out
}

func tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})

	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
