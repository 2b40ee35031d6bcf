package orchestratornode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	"github.com/tanpawarit/shopdesk-agent/agent/policy"
)

// PolicyGuard sets the trace decision: the cancellation decision when one was
// evaluated, a refusal for discount code requests, otherwise nothing.
func PolicyGuard(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	switch {
	case in.Cancel != nil:
		in.Decision = in.Cancel.PolicyDecision
		log.Info().
			Str("request_id", in.RequestID).
			Str("order_id", in.Cancel.OrderID).
			Bool("cancel_allowed", in.Cancel.PolicyDecision.CancelAllowed).
			Str("reason", in.Cancel.PolicyDecision.Reason).
			Msg("cancellation evaluated")
	default:
		if other, ok := in.Intent.(contractx.Other); ok && other.DiscountCodeRequest {
			in.Decision = policy.RefuseDiscountCode()
			log.Info().Str("request_id", in.RequestID).Msg("discount code guardrail triggered")
		}
	}
	return in, nil
}
