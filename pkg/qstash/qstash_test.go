package qstash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "https://qstash.upstash.io"}); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := NewClient(Config{URL: "::bad", Token: "t"}); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestPublishJSON(t *testing.T) {
	t.Parallel()

	var (
		gotPath    string
		gotAuth    string
		gotDedup   string
		gotRetry   string
		gotPayload map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDedup = r.Header.Get("Upstash-Deduplication-Id")
		gotRetry = r.Header.Get("Upstash-Retries")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		fmt.Fprint(w, `{"messageId":"msg_1"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{URL: server.URL, Token: "secret"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	client.WithHTTPClient(server.Client())

	retries := 2
	resp, err := client.PublishJSON(context.Background(), "order-cancellations", map[string]any{"order_id": "A1003"}, PublishOptions{
		DeduplicationID: "req-1",
		Retries:         &retries,
	})
	if err != nil {
		t.Fatalf("PublishJSON() error = %v", err)
	}
	if resp.MessageID != "msg_1" {
		t.Fatalf("MessageID = %q, want msg_1", resp.MessageID)
	}
	if gotPath != "/v2/publish/order-cancellations" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotDedup != "req-1" || gotRetry != "2" {
		t.Fatalf("headers dedup=%q retries=%q", gotDedup, gotRetry)
	}
	if gotPayload["order_id"] != "A1003" {
		t.Fatalf("payload = %#v", gotPayload)
	}
}

func TestPublishJSONHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := MustNew(Config{URL: server.URL, Token: "bad"}).WithHTTPClient(server.Client())
	if _, err := client.PublishJSON(context.Background(), "topic", map[string]any{}, PublishOptions{}); err == nil {
		t.Fatal("expected error on 401")
	}
}
