package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	geminix "github.com/tanpawarit/shopdesk-agent/pkg/gemini"
	openrouterx "github.com/tanpawarit/shopdesk-agent/pkg/openrouter"
)

// Supported router providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderKeyword    = "keyword"
)

type Config struct {
	Provider           string        `envconfig:"PROVIDER" split_words:"true" default:"openrouter"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"256"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RouterModel       string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	RouterTemperature float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" split_words:"true"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" split_words:"true" default:"gemini-1.5-flash"`
}

// ProviderName returns the normalized provider, defaulting to openrouter.
func (c Config) ProviderName() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "" {
		return ProviderOpenRouter
	}
	return p
}

func (c Config) Validate() error {
	switch c.ProviderName() {
	case ProviderKeyword:
		return nil
	case ProviderOpenRouter, ProviderOpenAI:
		if strings.TrimSpace(c.APIKey) == "" {
			return fmt.Errorf("%w: api key is required for provider=%s", contractx.ErrValidation, c.ProviderName())
		}
		if strings.TrimSpace(c.Model) == "" && strings.TrimSpace(c.RouterModel) == "" {
			return fmt.Errorf("%w: model is required for provider=%s", contractx.ErrValidation, c.ProviderName())
		}
		return nil
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return fmt.Errorf("%w: gemini api key is required", contractx.ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown llm provider %q", contractx.ErrValidation, c.Provider)
	}
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	if agentType == contractx.AgentTypeRouter {
		if v := strings.TrimSpace(c.RouterModel); v != "" {
			modelName = v
		}
		if c.RouterTemperature >= 0 {
			temp = c.RouterTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

func (c Config) Gemini() geminix.Config {
	temp := c.Temperature
	if c.RouterTemperature >= 0 {
		temp = c.RouterTemperature
	}
	return geminix.Config{
		APIKey:      strings.TrimSpace(c.GeminiAPIKey),
		Model:       strings.TrimSpace(c.GeminiModel),
		Temperature: temp,
	}
}
