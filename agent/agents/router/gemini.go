package router

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

const SourceGemini = "gemini"

type textGenerator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type geminiRouter struct {
	generator    textGenerator
	systemPrompt string
}

func newGeminiRouter(generator textGenerator, systemPrompt string) (*geminiRouter, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: gemini client is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: router prompt is empty", contractx.ErrPromptMissing)
	}
	return &geminiRouter{generator: generator, systemPrompt: systemPrompt}, nil
}

func (r *geminiRouter) Route(ctx context.Context, req contractx.RouteRequest) (contractx.RouteResponse, error) {
	input, err := routerInput(req)
	if err != nil {
		return contractx.RouteResponse{}, err
	}

	text, err := r.generator.Generate(ctx, r.systemPrompt, input)
	if err != nil {
		return contractx.RouteResponse{}, fmt.Errorf("%w: gemini generate: %v", contractx.ErrModelInvoke, err)
	}

	kind, err := parseLabel(text)
	if err != nil {
		return contractx.RouteResponse{}, err
	}
	return contractx.RouteResponse{Intent: kind, Source: SourceGemini}, nil
}
