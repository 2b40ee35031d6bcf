package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	toolx "github.com/tanpawarit/shopdesk-agent/agent/tool"
	logx "github.com/tanpawarit/shopdesk-agent/pkg/logger"
)

// MaxShownProducts caps the products cited as evidence and shown to the customer.
const MaxShownProducts = 2

// ExecuteTools calls the tools the intent variant needs and copies their
// records into the state. Only tools actually invoked are listed in
// ToolsCalled.
func ExecuteTools(
	ctx context.Context,
	in *GraphState,
	tools contractx.ToolGateway,
	catalog contractx.CatalogStore,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.ToolsCalled = []string{}
	in.Evidence = []any{}

	switch intent := in.Intent.(type) {
	case contractx.ProductAssist:
		return in, executeProductTools(ctx, in, intent, tools)
	case contractx.OrderHelp:
		return in, executeOrderTools(ctx, in, intent, tools, catalog)
	case contractx.Other, nil:
		return in, nil
	default:
		return nil, fmt.Errorf("%w: unsupported intent %T", contractx.ErrValidation, in.Intent)
	}
}

func executeProductTools(ctx context.Context, in *GraphState, intent contractx.ProductAssist, tools contractx.ToolGateway) error {
	reqs := []contractx.ToolRequest{{
		Tool: contractx.ToolProductSearch,
		Args: map[string]any{
			"query":     intent.Query,
			"price_max": intent.PriceMax,
			"tags":      intent.Tags,
		},
	}}
	if intent.WantsSize() {
		reqs = append(reqs, contractx.ToolRequest{
			Tool: contractx.ToolSizeRecommender,
			Args: map[string]any{"preference": intent.SizePreference},
		})
	}
	if intent.WantsETA() {
		reqs = append(reqs, contractx.ToolRequest{
			Tool: contractx.ToolETA,
			Args: map[string]any{"zip_code": intent.ZipCode},
		})
	}

	results, err := tools.Execute(ctx, reqs)
	if err != nil {
		return err
	}

	for _, res := range results {
		in.ToolsCalled = append(in.ToolsCalled, res.Tool)
		if res.Failed() {
			log.Warn().Str("request_id", in.RequestID).Str("tool", res.Tool).Str("error", res.Error).Msg("tool failed")
			continue
		}

		switch out := res.Result.(type) {
		case []contractx.Product:
			if len(out) > MaxShownProducts {
				out = out[:MaxShownProducts]
			}
			in.Products = out
			for _, p := range out {
				in.Evidence = append(in.Evidence, p)
			}
		case contractx.SizeRecommendation:
			in.Size = &out
		case contractx.ShippingEstimate:
			in.Shipping = &out
		}
	}

	log.Debug().
		Str("request_id", in.RequestID).
		Int("products", len(in.Products)).
		Float64("price_max", intent.PriceMax).
		Strs("tags", intent.Tags).
		Msg("product tools executed")
	return nil
}

func executeOrderTools(
	ctx context.Context,
	in *GraphState,
	intent contractx.OrderHelp,
	tools contractx.ToolGateway,
	catalog contractx.CatalogStore,
) error {
	if missing := intent.Missing(); len(missing) > 0 {
		in.OrderErr = fmt.Errorf("%w: missing %v", contractx.ErrValidation, missing)
		log.Info().Str("request_id", in.RequestID).Strs("missing", missing).Msg("order request blocked until identified")
		return nil
	}

	args := map[string]any{
		"order_id": intent.OrderID,
		"email":    intent.Email,
	}

	results, err := tools.Execute(ctx, []contractx.ToolRequest{{Tool: contractx.ToolOrderLookup, Args: args}})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: order_lookup returned no result", contractx.ErrSchemaViolation)
	}
	in.ToolsCalled = append(in.ToolsCalled, contractx.ToolOrderLookup)

	lookup := results[0]
	order, ok := lookup.Result.(contractx.Order)
	if lookup.Failed() || !ok {
		in.OrderErr = lookup.Err
		if in.OrderErr == nil {
			in.OrderErr = errors.New(lookup.Error)
		}
		log.Info().
			Str("request_id", in.RequestID).
			Str("order_id", intent.OrderID).
			Str("email", logx.MaskEmail(intent.Email)).
			Msg("order not found")
		return nil
	}

	resolved, err := toolx.ResolveOrderItems(catalog, order)
	if err != nil {
		log.Error().Err(err).Str("request_id", in.RequestID).Str("order_id", order.OrderID).Msg("order items omitted from evidence")
	}
	in.Order = &resolved
	in.Evidence = append(in.Evidence, resolved)

	if !intent.Cancel {
		return nil
	}

	results, err = tools.Execute(ctx, []contractx.ToolRequest{{
		Tool: contractx.ToolOrderCancel,
		Args: map[string]any{
			"order_id": intent.OrderID,
			"email":    intent.Email,
			"now":      in.Now,
		},
	}})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: order_cancel returned no result", contractx.ErrSchemaViolation)
	}
	in.ToolsCalled = append(in.ToolsCalled, contractx.ToolOrderCancel)

	if results[0].Failed() {
		log.Warn().Str("request_id", in.RequestID).Str("error", results[0].Error).Msg("order_cancel failed")
		return nil
	}
	if outcome, ok := results[0].Result.(contractx.CancelOutcome); ok {
		in.Cancel = &outcome
	}
	return nil
}
