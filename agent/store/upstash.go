package store

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

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

const maxResponseSizeBytes = 2 << 20

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// UpstashOption customizes UpstashRedisSource.
type UpstashOption func(*UpstashRedisSource)

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(s *UpstashRedisSource) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashRedisSource reads catalog and order snapshots stored as JSON strings
// under two keys, via the Upstash REST API. It only ever issues GET.
type UpstashRedisSource struct {
	baseURL    string
	token      string
	httpClient *http.Client
	catalogKey string
	ordersKey  string
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashRedisSource(cfg UpstashRedisConfig, catalogKey, ordersKey string, opts ...UpstashOption) (*UpstashRedisSource, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	catalogKey = strings.TrimSpace(catalogKey)
	ordersKey = strings.TrimSpace(ordersKey)
	if catalogKey == "" || ordersKey == "" {
		return nil, errors.New("catalog and orders keys are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	src := &UpstashRedisSource{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		catalogKey: catalogKey,
		ordersKey:  ordersKey,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(src)
		}
	}

	return src, nil
}

func (s *UpstashRedisSource) Load(ctx context.Context) (Snapshot, error) {
	catalogRaw, err := s.get(ctx, s.catalogKey)
	if err != nil {
		return Snapshot{}, err
	}
	ordersRaw, err := s.get(ctx, s.ordersKey)
	if err != nil {
		return Snapshot{}, err
	}
	return DecodeSnapshot(catalogRaw, ordersRaw)
}

func (s *UpstashRedisSource) get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.exec(ctx, []any{"GET", key})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, fmt.Errorf("%w: redis key=%s", contractx.ErrNotFound, key)
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode redis payload for key=%s: %w", key, err)
	}
	return []byte(encoded), nil
}

func (s *UpstashRedisSource) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
