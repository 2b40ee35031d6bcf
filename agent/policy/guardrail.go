package policy

import (
	"slices"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

const discountRefusalReason = "Non-existent discount code requested"

var discountAlternatives = []string{
	"Sign up for our newsletter to get future discount codes",
	"Check our current promotions page",
	"First-time customers get 10% off their first order",
}

// IsDiscountCodeRequest reports whether the message asks for a discount or
// promo code.
func IsDiscountCodeRequest(message string) bool {
	lower := strings.ToLower(message)
	if !strings.Contains(lower, "code") {
		return false
	}
	return strings.Contains(lower, "discount") ||
		strings.Contains(lower, "promo") ||
		strings.Contains(lower, "coupon")
}

// RefuseDiscountCode is the guardrail decision for discount code requests. The
// agent never invents codes.
func RefuseDiscountCode() contractx.Refusal {
	return contractx.Refusal{
		Refuse:       true,
		Reason:       discountRefusalReason,
		Alternatives: slices.Clone(discountAlternatives),
	}
}
