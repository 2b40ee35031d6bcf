package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

const SourceOpenAI = "openai"

type chatCompleter interface {
	New(ctx context.Context, body openaisdk.ChatCompletionNewParams, opts ...option.RequestOption) (*openaisdk.ChatCompletion, error)
}

// openAIRouter calls the Chat Completions API directly, without eino.
type openAIRouter struct {
	completions  chatCompleter
	model        string
	temperature  float32
	maxTokens    int
	systemPrompt string
}

func newOpenAIRouter(client *openaisdk.Client, model string, temperature float32, maxTokens int, systemPrompt string) (*openAIRouter, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: router prompt is empty", contractx.ErrPromptMissing)
	}
	return &openAIRouter{
		completions:  &client.Chat.Completions,
		model:        strings.TrimSpace(model),
		temperature:  temperature,
		maxTokens:    maxTokens,
		systemPrompt: systemPrompt,
	}, nil
}

func (r *openAIRouter) Route(ctx context.Context, req contractx.RouteRequest) (contractx.RouteResponse, error) {
	input, err := routerInput(req)
	if err != nil {
		return contractx.RouteResponse{}, err
	}

	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(r.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(r.systemPrompt),
			openaisdk.UserMessage(input),
		},
		Temperature: openaisdk.Float(float64(r.temperature)),
	}
	if r.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(r.maxTokens))
	}

	resp, err := r.completions.New(ctx, params)
	if err != nil {
		return contractx.RouteResponse{}, fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return contractx.RouteResponse{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, errors.New("empty chat completion"))
	}

	kind, err := parseLabel(resp.Choices[0].Message.Content)
	if err != nil {
		return contractx.RouteResponse{}, err
	}
	return contractx.RouteResponse{Intent: kind, Source: SourceOpenAI}, nil
}
