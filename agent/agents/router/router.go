package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	toolx "github.com/tanpawarit/shopdesk-agent/agent/tool"
)

const SourceModel = "model"

type routerLLMOutput struct {
	Intent string `json:"intent"`
}

// modelRouter classifies with an eino chat model behind a structured-output graph.
type modelRouter struct {
	runner compose.Runnable[map[string]any, routerLLMOutput]
}

func newModelRouter(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*modelRouter, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: router prompt is empty", contractx.ErrPromptMissing)
	}
	runner, err := compileRouterGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile router graph: %v", contractx.ErrModelInvoke, err)
	}
	return &modelRouter{runner: runner}, nil
}

func (r *modelRouter) Route(ctx context.Context, req contractx.RouteRequest) (contractx.RouteResponse, error) {
	input, err := routerInput(req)
	if err != nil {
		return contractx.RouteResponse{}, err
	}

	out, err := r.runner.Invoke(ctx, map[string]any{
		"input": input,
	})
	if err != nil {
		return contractx.RouteResponse{}, fmt.Errorf("%w: router invoke: %v", contractx.ErrModelInvoke, err)
	}

	kind, err := contractx.ParseIntentKind(out.Intent)
	if err != nil {
		return contractx.RouteResponse{}, err
	}
	return contractx.RouteResponse{Intent: kind, Source: SourceModel}, nil
}

// routerInput is the JSON user turn shared by every model-backed router.
func routerInput(req contractx.RouteRequest) (string, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return "", fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	infos := toolx.Infos()
	tools := make([]map[string]string, 0, len(infos))
	for _, info := range infos {
		tools = append(tools, map[string]string{
			"name":        info.Name,
			"description": info.Desc,
		})
	}

	payload := map[string]any{
		"user_message": req.UserMessage,
		"tools":        tools,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal router payload: %v", contractx.ErrValidation, err)
	}
	return string(inputBytes), nil
}

// parseLabel accepts either the JSON object the prompt asks for or a bare
// label, with optional markdown fences around it.
func parseLabel(content string) (contractx.IntentKind, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "{") {
		var out routerLLMOutput
		if err := json.Unmarshal([]byte(content), &out); err != nil {
			return "", fmt.Errorf("%w: decode router output: %v", contractx.ErrSchemaViolation, err)
		}
		content = out.Intent
	}
	return contractx.ParseIntentKind(content)
}
