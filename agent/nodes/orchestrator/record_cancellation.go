package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	logx "github.com/tanpawarit/shopdesk-agent/pkg/logger"
)

// RecordCancellation hands an allowed cancellation to the recorder. A recorder
// failure is kept on the state for the reply and never fails the request.
func RecordCancellation(ctx context.Context, in *GraphState, recorder contractx.CancellationRecorder) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Cancel == nil || !in.Cancel.PolicyDecision.CancelAllowed || in.Order == nil {
		return in, nil
	}

	ev := contractx.CancellationEvent{
		RequestID:      in.RequestID,
		OrderID:        in.Order.OrderID,
		Email:          in.Order.Email,
		ElapsedMinutes: in.Cancel.PolicyDecision.ElapsedMinutes,
		DecidedAt:      in.Now,
	}
	if err := recorder.RecordCancellation(ctx, ev); err != nil {
		in.RecordErr = err
		log.Error().
			Err(err).
			Str("request_id", in.RequestID).
			Str("order_id", ev.OrderID).
			Str("email", logx.MaskEmail(ev.Email)).
			Msg("record cancellation failed")
		return in, nil
	}

	log.Info().Str("request_id", in.RequestID).Str("order_id", ev.OrderID).Msg("cancellation recorded")
	return in, nil
}
