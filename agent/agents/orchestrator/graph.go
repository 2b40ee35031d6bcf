package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/shopdesk-agent/agent/nodes/orchestrator"
)

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now, o.newID)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("route_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RouteIntent(ctx, in, o.router)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_intent: %w", err)
	}

	if err := graph.AddLambdaNode("extract_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractIntent(in, o.vocab)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_intent: %w", err)
	}

	if err := graph.AddLambdaNode("execute_tools",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteTools(ctx, in, o.tools, o.catalog)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tools: %w", err)
	}

	if err := graph.AddLambdaNode("policy_guard",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PolicyGuard(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node policy_guard: %w", err)
	}

	if err := graph.AddLambdaNode("record_cancellation",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordCancellation(ctx, in, o.recorder)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_cancellation: %w", err)
	}

	if err := graph.AddLambdaNode("render_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RenderReply(in, o.catalog, o.cancelWindow)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node render_reply: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_trace",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeTrace(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_trace: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "route_intent"},
		{"route_intent", "extract_intent"},
		{"extract_intent", "execute_tools"},
		{"execute_tools", "policy_guard"},
		{"policy_guard", "record_cancellation"},
		{"record_cancellation", "render_reply"},
		{"render_reply", "finalize_trace"},
		{"finalize_trace", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
