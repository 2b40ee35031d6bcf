package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	"github.com/tanpawarit/shopdesk-agent/agent/policy"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

var _ contractx.ToolGateway = (*Gateway)(nil)

// Gateway dispatches tool requests by name against the stores.
type Gateway struct {
	catalog  contractx.CatalogStore
	orders   contractx.OrderStore
	window   time.Duration
	clock    func() time.Time
	fallback Executor
}

type GatewayOption func(*Gateway)

// WithCancelWindow overrides policy.DefaultCancelWindow.
func WithCancelWindow(window time.Duration) GatewayOption {
	return func(g *Gateway) {
		if window > 0 {
			g.window = window
		}
	}
}

// WithClock sets the time used by order_cancel when no "now" argument is given.
func WithClock(clock func() time.Time) GatewayOption {
	return func(g *Gateway) {
		if clock != nil {
			g.clock = clock
		}
	}
}

func NewGateway(catalog contractx.CatalogStore, orders contractx.OrderStore, opts ...GatewayOption) (*Gateway, error) {
	if catalog == nil || orders == nil {
		return nil, fmt.Errorf("%w: catalog and order stores are required", contractx.ErrValidation)
	}

	g := &Gateway{
		catalog:  catalog,
		orders:   orders,
		window:   policy.DefaultCancelWindow,
		clock:    func() time.Time { return time.Now().UTC() },
		fallback: DefaultExecutor(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Execute runs reqs in order. Tool failures are reported in the results; only a
// cancelled context stops the batch.
func (g *Gateway) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := g.execute(ctx, req.Tool, req.Args)
		if err != nil {
			return results, err
		}
		if res.Failed() {
			log.Debug().Str("tool", req.Tool).Str("error", res.Error).Msg("tool returned error")
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *Gateway) execute(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
	switch tool {
	case contractx.ToolProductSearch:
		return g.productSearch(tool, args), nil
	case contractx.ToolSizeRecommender:
		preference, err := stringArg(args, "preference")
		if err != nil {
			return failed(tool, err), nil
		}
		return contractx.ToolResult{Tool: tool, Result: SizeRecommender(preference)}, nil
	case contractx.ToolETA:
		zip, err := stringArg(args, "zip_code")
		if err != nil {
			return failed(tool, err), nil
		}
		return contractx.ToolResult{Tool: tool, Result: ETA(zip)}, nil
	case contractx.ToolOrderLookup:
		order, err := g.lookup(args)
		if err != nil {
			return failed(tool, err), nil
		}
		return contractx.ToolResult{Tool: tool, Result: order}, nil
	case contractx.ToolOrderCancel:
		return g.orderCancel(tool, args), nil
	default:
		return g.fallback(ctx, tool, args)
	}
}

func (g *Gateway) productSearch(tool string, args map[string]any) contractx.ToolResult {
	query, err := stringArg(args, "query")
	if err != nil {
		return failed(tool, err)
	}
	priceMax, err := requiredNumberArg(args, "price_max")
	if err != nil {
		return failed(tool, err)
	}
	if priceMax < 0 {
		return failed(tool, fmt.Errorf("%w: price_max must not be negative", contractx.ErrValidation))
	}
	tags, err := stringsArg(args, "tags")
	if err != nil {
		return failed(tool, err)
	}
	return contractx.ToolResult{Tool: tool, Result: ProductSearch(g.catalog, query, priceMax, tags)}
}

func (g *Gateway) lookup(args map[string]any) (contractx.Order, error) {
	orderID, err := stringArg(args, "order_id")
	if err != nil {
		return contractx.Order{}, err
	}
	email, err := stringArg(args, "email")
	if err != nil {
		return contractx.Order{}, err
	}
	return OrderLookup(g.orders, orderID, email)
}

// orderCancel re-verifies id and email so the tool cannot be used to probe
// orders by id alone.
func (g *Gateway) orderCancel(tool string, args map[string]any) contractx.ToolResult {
	order, err := g.lookup(args)
	if err != nil {
		return failed(tool, err)
	}

	now, ok, err := timeArg(args, "now")
	if err != nil {
		return failed(tool, err)
	}
	if !ok {
		now = g.clock()
	}

	return contractx.ToolResult{Tool: tool, Result: OrderCancel(order, now, g.window)}
}

func failed(tool string, err error) contractx.ToolResult {
	return contractx.ToolResult{Tool: tool, Error: err.Error(), Err: err}
}

// DefaultExecutor answers every tool name the gateway does not know.
func DefaultExecutor() Executor {
	return func(_ context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		err := fmt.Errorf("%w: tool=%s is unavailable", contractx.ErrValidation, tool)
		return failed(tool, err), nil
	}
}
