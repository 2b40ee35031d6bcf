package router

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	llmx "github.com/tanpawarit/shopdesk-agent/agent/llm"
	promptx "github.com/tanpawarit/shopdesk-agent/agent/prompt"
	geminix "github.com/tanpawarit/shopdesk-agent/pkg/gemini"
	openrouterx "github.com/tanpawarit/shopdesk-agent/pkg/openrouter"
)

// New builds the configured router wrapped in a keyword Fallback. When the
// provider is not usable (no key, unknown name) the keyword router is used
// directly. The returned close func is never nil.
func New(ctx context.Context, cfg llmx.Config) (contractx.Router, func() error, error) {
	noop := func() error { return nil }

	if cfg.ProviderName() == llmx.ProviderKeyword {
		return KeywordRouter{}, noop, nil
	}
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Str("provider", cfg.ProviderName()).Msg("llm router disabled, using keyword router")
		return KeywordRouter{}, noop, nil
	}

	prompts := promptx.LoadPromptSet()

	switch cfg.ProviderName() {
	case llmx.ProviderOpenRouter:
		modelCfg := cfg.OpenRouterFor(contractx.AgentTypeRouter)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: create router model: %v", contractx.ErrModelInvoke, err)
		}
		r, err := newModelRouter(ctx, chatModel, prompts.Router)
		if err != nil {
			return nil, noop, err
		}
		return NewFallback(r), noop, nil

	case llmx.ProviderOpenAI:
		modelCfg := cfg.OpenRouterFor(contractx.AgentTypeRouter)
		r, err := newOpenAIRouter(openrouterx.NewClient(modelCfg), modelCfg.Model, modelCfg.Temperature, cfg.MaxCompletionToken, prompts.Router)
		if err != nil {
			return nil, noop, err
		}
		return NewFallback(r), noop, nil

	case llmx.ProviderGemini:
		client, err := geminix.NewClient(ctx, cfg.Gemini())
		if err != nil {
			return nil, noop, fmt.Errorf("%w: create gemini client: %v", contractx.ErrModelInvoke, err)
		}
		r, err := newGeminiRouter(client, prompts.Router)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return NewFallback(r), client.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: unknown llm provider %q", contractx.ErrValidation, cfg.Provider)
	}
}
