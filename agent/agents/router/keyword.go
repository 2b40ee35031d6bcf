package router

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

const SourceKeyword = "keyword"

var (
	orderKeywords   = []string{"cancel", "order", "refund", "return"}
	productKeywords = []string{"dress", "product", "size", "wedding", "find", "recommend", "midi", "shipping", "eta"}
)

var _ contractx.Router = KeywordRouter{}

// KeywordRouter classifies by keyword presence. Order words win over product
// words so "cancel my dress order" is order help.
type KeywordRouter struct{}

func (KeywordRouter) Route(_ context.Context, req contractx.RouteRequest) (contractx.RouteResponse, error) {
	return contractx.RouteResponse{
		Intent: ClassifyKeywords(req.UserMessage),
		Source: SourceKeyword,
	}, nil
}

func ClassifyKeywords(message string) contractx.IntentKind {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	})

	hasAny := func(keywords []string) bool {
		for _, w := range words {
			for _, k := range keywords {
				if strings.HasPrefix(w, k) {
					return true
				}
			}
		}
		return false
	}

	switch {
	case hasAny(orderKeywords):
		return contractx.IntentOrderHelp
	case hasAny(productKeywords):
		return contractx.IntentProductAssist
	default:
		return contractx.IntentOther
	}
}
