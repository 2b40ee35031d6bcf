package qstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	URL         string        `split_words:"true" default:"https://qstash.upstash.io"`
	Token       string        `split_words:"true"`
	Destination string        `split_words:"true"`
	Timeout     time.Duration `split_words:"true" default:"10s"`
}

// Enabled reports whether enough is configured to publish.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Token) != "" && strings.TrimSpace(c.Destination) != ""
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// PublishOptions are optional Upstash-* headers for a single message.
type PublishOptions struct {
	DeduplicationID string
	Retries         *int
}

type PublishResponse struct {
	MessageID    string `json:"messageId"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("qstash url is required")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("qstash token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	return client, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// PublishJSON enqueues payload for delivery to destination (a URL or topic name).
func (c *Client) PublishJSON(ctx context.Context, destination string, payload any, opts PublishOptions) (*PublishResponse, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("qstash destination is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal qstash payload: %w", err)
	}

	endpoint := c.baseURL + "/v2/publish/" + destination
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build qstash request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if opts.DeduplicationID != "" {
		req.Header.Set("Upstash-Deduplication-Id", opts.DeduplicationID)
	}
	if opts.Retries != nil {
		req.Header.Set("Upstash-Retries", fmt.Sprint(*opts.Retries))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute qstash request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read qstash response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("qstash http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed PublishResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("decode qstash response: %w", err)
		}
	}
	return &parsed, nil
}
