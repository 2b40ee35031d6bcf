package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	routerx "github.com/tanpawarit/shopdesk-agent/agent/agents/router"
	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

// RouteIntent classifies the message. A router error falls back to keyword
// classification unless the request itself was cancelled.
func RouteIntent(ctx context.Context, in *GraphState, router contractx.Router) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	resp, err := router.Route(ctx, contractx.RouteRequest{
		UserMessage: in.Text,
		Now:         in.Now,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Str("request_id", in.RequestID).Msg("route intent failed, using keywords")
		resp = contractx.RouteResponse{
			Intent: routerx.ClassifyKeywords(in.Text),
			Source: routerx.SourceKeywordFallback,
		}
	}

	in.Route = resp
	log.Debug().
		Str("request_id", in.RequestID).
		Str("intent", string(resp.Intent)).
		Str("source", resp.Source).
		Msg("intent routed")
	return in, nil
}
