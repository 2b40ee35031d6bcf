package orchestratornode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	"github.com/tanpawarit/shopdesk-agent/agent/policy"
	"github.com/tanpawarit/shopdesk-agent/agent/store"
)

var testNow = time.Date(2025, 9, 7, 12, 30, 0, 0, time.UTC)

func testCatalog(t *testing.T) *store.Catalog {
	t.Helper()

	snap, err := store.FileSource{}.Load(context.Background())
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	catalog, err := store.NewCatalog(snap.Products)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return catalog
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return testNow }
	id := func() string { return "req-1" }

	if _, err := ValidateRequest(GraphInput{Text: " \n "}, now, id); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}

	st, err := ValidateRequest(GraphInput{Text: "  hello "}, now, id)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if st.Text != "hello" || st.RequestID != "req-1" || !st.Now.Equal(testNow) {
		t.Fatalf("unexpected state: %#v", st)
	}
}

func TestExtractProductAssist(t *testing.T) {
	t.Parallel()

	vocab := NewVocabulary(testCatalog(t))
	st := &GraphState{
		Text:  "Wedding guest, midi, under $120 — I'm between M/L. ETA to 560001?",
		Route: contractx.RouteResponse{Intent: contractx.IntentProductAssist},
	}

	st, err := ExtractIntent(st, vocab)
	if err != nil {
		t.Fatalf("ExtractIntent() error = %v", err)
	}
	intent, ok := st.Intent.(contractx.ProductAssist)
	if !ok {
		t.Fatalf("unexpected intent type %T", st.Intent)
	}
	if intent.PriceMax != 120 {
		t.Fatalf("unexpected price cap: %v", intent.PriceMax)
	}
	if strings.Join(intent.Tags, ",") != "wedding,midi" {
		t.Fatalf("unexpected tags: %v", intent.Tags)
	}
	if !intent.WantsSize() || !intent.WantsETA() || intent.ZipCode != "560001" {
		t.Fatalf("unexpected slots: %#v", intent)
	}
}

type tagOnlyCatalog struct {
	tags []string
}

func (tagOnlyCatalog) Get(id string) (contractx.Product, error) {
	return contractx.Product{}, contractx.ErrNotFound
}
func (tagOnlyCatalog) List() []contractx.Product { return nil }
func (c tagOnlyCatalog) Tags() []string { return c.tags }

func TestVocabularyUsesCatalogTags(t *testing.T) {
	t.Parallel()

	vocab := NewVocabulary(tagOnlyCatalog{tags: []string{"linen", "velvet"}})
	st, err := ExtractIntent(&GraphState{
		Text:  "any velvet options?",
		Route: contractx.RouteResponse{Intent: contractx.IntentProductAssist},
	}, vocab)
	if err != nil {
		t.Fatalf("ExtractIntent() error = %v", err)
	}
	intent := st.Intent.(contractx.ProductAssist)
	if strings.Join(intent.Tags, ",") != "velvet" {
		t.Fatalf("unexpected tags: %v", intent.Tags)
	}
}

func TestExtractProductAssistDefaults(t *testing.T) {
	t.Parallel()

	vocab := NewVocabulary(testCatalog(t))
	st, err := ExtractIntent(&GraphState{
		Text:  "Do you have any shirt dresses?",
		Route: contractx.RouteResponse{Intent: contractx.IntentProductAssist},
	}, vocab)
	if err != nil {
		t.Fatalf("ExtractIntent() error = %v", err)
	}

	intent := st.Intent.(contractx.ProductAssist)
	if intent.PriceMax != DefaultPriceMax {
		t.Fatalf("expected default price cap, got %v", intent.PriceMax)
	}
	if intent.Query != "shirt dress" {
		t.Fatalf("unexpected query: %q", intent.Query)
	}
	if intent.WantsSize() || intent.WantsETA() {
		t.Fatalf("no size or eta was asked for: %#v", intent)
	}
}

func TestExtractOrderHelp(t *testing.T) {
	t.Parallel()

	st, err := ExtractIntent(&GraphState{
		Text:  "Cancel order A1003 — email mira@example.com",
		Route: contractx.RouteResponse{Intent: contractx.IntentOrderHelp},
	}, Vocabulary{})
	if err != nil {
		t.Fatalf("ExtractIntent() error = %v", err)
	}

	intent := st.Intent.(contractx.OrderHelp)
	if intent.OrderID != "A1003" || intent.Email != "mira@example.com" || !intent.Cancel {
		t.Fatalf("unexpected slots: %#v", intent)
	}
	if len(intent.Missing()) != 0 {
		t.Fatalf("unexpected missing: %v", intent.Missing())
	}
}

func TestExtractUnknownIntent(t *testing.T) {
	t.Parallel()

	_, err := ExtractIntent(&GraphState{Text: "x", Route: contractx.RouteResponse{Intent: "billing"}}, Vocabulary{})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestPolicyGuard(t *testing.T) {
	t.Parallel()

	st, _ := PolicyGuard(&GraphState{Intent: contractx.Other{DiscountCodeRequest: true}})
	if _, ok := st.Decision.(contractx.Refusal); !ok {
		t.Fatalf("expected refusal, got %#v", st.Decision)
	}

	st, _ = PolicyGuard(&GraphState{Intent: contractx.Other{}})
	if st.Decision != nil {
		t.Fatalf("expected no decision, got %#v", st.Decision)
	}

	outcome := policy.Outcome("A1", policy.EvaluateCancellation(testNow.Add(-10*time.Minute), testNow, 0))
	st, _ = PolicyGuard(&GraphState{Intent: contractx.OrderHelp{Cancel: true}, Cancel: &outcome})
	decision, ok := st.Decision.(contractx.PolicyDecision)
	if !ok || !decision.CancelAllowed {
		t.Fatalf("expected allowed decision, got %#v", st.Decision)
	}
}

func TestRenderReplyProducts(t *testing.T) {
	t.Parallel()

	catalog := testCatalog(t)
	p, _ := catalog.Get("P1002")
	st := &GraphState{
		Intent:   contractx.ProductAssist{},
		Products: []contractx.Product{p},
	}

	st, err := RenderReply(st, catalog, time.Hour)
	if err != nil {
		t.Fatalf("RenderReply() error = %v", err)
	}
	want := "I found 1 great option for you:\n\n1. **Floral Wrap Midi Dress** ($95, Blush) - Available in S, M, L"
	if !strings.HasPrefix(st.Message, want) {
		t.Fatalf("unexpected reply:\n%s", st.Message)
	}
}

func TestRenderReplyNoProducts(t *testing.T) {
	t.Parallel()

	st, _ := RenderReply(&GraphState{Intent: contractx.ProductAssist{}}, testCatalog(t), time.Hour)
	if !strings.Contains(st.Message, "I don't see any products matching") {
		t.Fatalf("unexpected reply:\n%s", st.Message)
	}
}

func TestRenderReplyOrderDetails(t *testing.T) {
	t.Parallel()

	order := contractx.Order{
		OrderID:   "A1001",
		Email:     "ria@example.com",
		CreatedAt: time.Date(2025, 9, 5, 9, 20, 0, 0, time.UTC),
		Items:     []contractx.OrderItem{{ID: "P1004", Size: "M"}},
	}
	st, _ := RenderReply(&GraphState{
		Intent: contractx.OrderHelp{OrderID: "A1001", Email: "ria@example.com"},
		Order:  &order,
	}, testCatalog(t), time.Hour)

	for _, want := range []string{"Order A1001 Details", "- Linen Shirt Dress (Size M)", "- Placed: September 05 at 09:20 AM"} {
		if !strings.Contains(st.Message, want) {
			t.Fatalf("reply missing %q:\n%s", want, st.Message)
		}
	}
}

func TestRenderReplyHelpMenuUsesWindow(t *testing.T) {
	t.Parallel()

	st, _ := RenderReply(&GraphState{Intent: contractx.Other{}}, testCatalog(t), 45*time.Minute)
	if !strings.Contains(st.Message, "within 45 minutes") {
		t.Fatalf("unexpected reply:\n%s", st.Message)
	}
}

func TestFinalizeTraceDefaults(t *testing.T) {
	t.Parallel()

	if _, err := FinalizeTrace(&GraphState{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty reply, got %v", err)
	}

	out, err := FinalizeTrace(&GraphState{
		Route:   contractx.RouteResponse{Intent: contractx.IntentOther},
		Message: "hi",
	})
	if err != nil {
		t.Fatalf("FinalizeTrace() error = %v", err)
	}
	if out.ToolsCalled == nil || out.Evidence == nil {
		t.Fatal("tools_called and evidence must serialize as empty lists")
	}
	if out.Intent != "other" || out.PolicyDecision != nil {
		t.Fatalf("unexpected trace: %#v", out)
	}
}
