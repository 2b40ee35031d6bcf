package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

type Config struct {
	APIKey      string  `envconfig:"API_KEY" split_words:"true"`
	Model       string  `envconfig:"MODEL" split_words:"true" default:"gemini-1.5-flash"`
	Temperature float32 `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
}

// Client wraps a genai client bound to one model.
type Client struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultModel
	}

	return &Client{
		client:      client,
		modelName:   modelName,
		temperature: cfg.Temperature,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Generate sends prompt with an optional system instruction and returns the
// concatenated text parts of the first candidate.
func (c *Client) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	if s := strings.TrimSpace(systemInstruction); s != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
