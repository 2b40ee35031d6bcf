package router

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

const SourceKeywordFallback = "keyword_fallback"

// Fallback routes with primary and drops to keyword classification on any
// error. It never fails a request.
type Fallback struct {
	primary contractx.Router
}

var _ contractx.Router = (*Fallback)(nil)

func NewFallback(primary contractx.Router) *Fallback {
	return &Fallback{primary: primary}
}

func (f *Fallback) Route(ctx context.Context, req contractx.RouteRequest) (contractx.RouteResponse, error) {
	if f.primary != nil {
		resp, err := f.primary.Route(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return contractx.RouteResponse{}, ctx.Err()
		}
		log.Warn().Err(err).Msg("router failed, using keyword fallback")
	}

	return contractx.RouteResponse{
		Intent: ClassifyKeywords(req.UserMessage),
		Source: SourceKeywordFallback,
	}, nil
}
