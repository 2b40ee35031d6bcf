package orchestratornode

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	"github.com/tanpawarit/shopdesk-agent/agent/policy"
)

// DefaultPriceMax applies when the customer names no budget.
const DefaultPriceMax = 1000

var (
	orderIDPattern   = regexp.MustCompile(`\b[A-Z]\d+\b`)
	emailPattern     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	zipPattern       = regexp.MustCompile(`\b\d{5,6}\b`)
	priceCapPattern  = regexp.MustCompile(`(?i)\b(?:under|below|max|up to|less than)\s*\$?\s*(\d+(?:[.,]\d+)?)`)
	sizeRangePattern = regexp.MustCompile(`(?i)\b(?:XXS|XS|S|M|L|XL|XXL)\s*/\s*(?:XXS|XS|S|M|L|XL|XXL)\b`)
)

var sizeWords = []string{"size", "between", "fit", "loose", "tight", "snug", "comfortable"}

// Vocabulary is the set of words the catalog can actually match on.
type Vocabulary struct {
	tags       []string
	titleWords []string
}

func NewVocabulary(catalog contractx.CatalogStore) Vocabulary {
	v := Vocabulary{tags: catalog.Tags()}
	for _, p := range catalog.List() {
		for _, w := range words(p.Title) {
			if !slices.Contains(v.titleWords, w) {
				v.titleWords = append(v.titleWords, w)
			}
		}
	}
	return v
}

// ExtractIntent fills the intent variant's slots from the message text.
func ExtractIntent(in *GraphState, vocab Vocabulary) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	switch in.Route.Intent {
	case contractx.IntentProductAssist:
		in.Intent = extractProductAssist(in.Text, vocab)
	case contractx.IntentOrderHelp:
		in.Intent = extractOrderHelp(in.Text)
	case contractx.IntentOther:
		in.Intent = contractx.Other{DiscountCodeRequest: policy.IsDiscountCodeRequest(in.Text)}
	default:
		return nil, fmt.Errorf("%w: unknown intent %q", contractx.ErrSchemaViolation, in.Route.Intent)
	}
	return in, nil
}

func extractProductAssist(text string, vocab Vocabulary) contractx.ProductAssist {
	out := contractx.ProductAssist{PriceMax: DefaultPriceMax}

	if m := priceCapPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil && v > 0 {
			out.PriceMax = v
		}
	}

	var query []string
	for _, w := range words(text) {
		if tag, ok := lookup(vocab.tags, w); ok {
			if !slices.Contains(out.Tags, tag) {
				out.Tags = append(out.Tags, tag)
			}
			continue
		}
		if term, ok := lookup(vocab.titleWords, w); ok && !slices.Contains(query, term) {
			query = append(query, term)
		}
	}
	out.Query = strings.Join(query, " ")

	lower := strings.ToLower(text)
	if sizeRangePattern.MatchString(text) || containsAnyWord(lower, sizeWords) {
		out.SizePreference = text
	}

	out.ZipCode = zipPattern.FindString(text)
	return out
}

func extractOrderHelp(text string) contractx.OrderHelp {
	return contractx.OrderHelp{
		OrderID: orderIDPattern.FindString(text),
		Email:   emailPattern.FindString(text),
		Cancel:  strings.Contains(strings.ToLower(text), "cancel"),
	}
}

// lookup returns the vocabulary form of w, trying its singular as well.
func lookup(vocab []string, w string) (string, bool) {
	if slices.Contains(vocab, w) {
		return w, true
	}
	if s := singular(w); slices.Contains(vocab, s) {
		return s, true
	}
	return "", false
}

func singular(w string) string {
	switch {
	case strings.HasSuffix(w, "sses"):
		return strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return strings.TrimSuffix(w, "s")
	default:
		return w
	}
}

func words(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

func containsAnyWord(lower string, candidates []string) bool {
	ws := words(lower)
	for _, c := range candidates {
		if slices.Contains(ws, c) {
			return true
		}
	}
	return false
}
