package policy

import (
	"fmt"
	"math"
	"slices"
	"time"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

// DefaultCancelWindow is how long after placement an order may still be cancelled.
const DefaultCancelWindow = 60 * time.Minute

// RefundNotice accompanies every allowed cancellation.
const RefundNotice = "Full refund will be processed within 3-5 business days."

var blockedAlternatives = []string{
	"Edit your shipping address if the order hasn't shipped yet",
	"Convert to store credit for future purchases",
	"Contact customer support for special assistance",
}

// EvaluateCancellation decides whether an order created at createdAt may be
// cancelled at now. The boundary is inclusive. A non-positive window falls back
// to DefaultCancelWindow.
func EvaluateCancellation(createdAt, now time.Time, window time.Duration) contractx.PolicyDecision {
	if window <= 0 {
		window = DefaultCancelWindow
	}

	age := now.Sub(createdAt)
	elapsed := age.Minutes()
	limit := windowMinutes(window)

	if age <= window {
		return contractx.PolicyDecision{
			CancelAllowed:  true,
			Reason:         fmt.Sprintf("Within %s-minute window (%.1f minutes elapsed)", limit, elapsed),
			ElapsedMinutes: roundTenth(elapsed),
		}
	}
	return contractx.PolicyDecision{
		CancelAllowed:  false,
		Reason:         fmt.Sprintf("Exceeds %s-minute limit (%.1f minutes elapsed)", limit, elapsed),
		ElapsedMinutes: roundTenth(elapsed),
	}
}

// Outcome wraps a decision with the customer follow-ups: the refund notice when
// allowed, the alternatives when blocked.
func Outcome(orderID string, decision contractx.PolicyDecision) contractx.CancelOutcome {
	out := contractx.CancelOutcome{
		OrderID:        orderID,
		PolicyDecision: decision,
	}
	if decision.CancelAllowed {
		out.RefundInfo = RefundNotice
	} else {
		out.Alternatives = CancellationAlternatives()
	}
	return out
}

// CancellationAlternatives lists what a customer can do instead of cancelling.
func CancellationAlternatives() []string {
	return slices.Clone(blockedAlternatives)
}

// roundTenth is for display only. The decision uses the exact duration, so
// 60m02s reads as 60.0 minutes and is still blocked.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func windowMinutes(window time.Duration) string {
	m := window.Minutes()
	if m == math.Trunc(m) {
		return fmt.Sprintf("%d", int64(m))
	}
	return fmt.Sprintf("%.1f", m)
}
