package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	routerx "github.com/tanpawarit/shopdesk-agent/agent/agents/router"
	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	notifyx "github.com/tanpawarit/shopdesk-agent/agent/notify"
	"github.com/tanpawarit/shopdesk-agent/agent/store"
	toolx "github.com/tanpawarit/shopdesk-agent/agent/tool"
)

var scenarioNow = time.Date(2025, 9, 7, 12, 30, 0, 0, time.UTC)

type fakeRecorder struct {
	mu     sync.Mutex
	err    error
	events []contractx.CancellationEvent
}

func (f *fakeRecorder) RecordCancellation(ctx context.Context, ev contractx.CancellationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

type fakeRouter struct {
	resp  contractx.RouteResponse
	err   error
	calls int
}

func (f *fakeRouter) Route(ctx context.Context, req contractx.RouteRequest) (contractx.RouteResponse, error) {
	f.calls++
	return f.resp, f.err
}

type recordingTools struct {
	inner contractx.ToolGateway
	mu    sync.Mutex
	calls []string
}

func (r *recordingTools) Execute(ctx context.Context, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	r.mu.Lock()
	for _, req := range reqs {
		r.calls = append(r.calls, req.Tool)
	}
	r.mu.Unlock()
	return r.inner.Execute(ctx, reqs)
}

func newEmbeddedStores(t *testing.T) (*store.Catalog, *store.Orders) {
	t.Helper()

	snap, err := store.FileSource{}.Load(context.Background())
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	catalog, err := store.NewCatalog(snap.Products)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	orders, err := store.NewOrders(snap.Orders)
	if err != nil {
		t.Fatalf("NewOrders() error = %v", err)
	}
	return catalog, orders
}

func newTestOrchestrator(
	t *testing.T,
	router contractx.Router,
	catalog *store.Catalog,
	orders *store.Orders,
	recorder contractx.CancellationRecorder,
) (*Orchestrator, *recordingTools) {
	t.Helper()

	gateway, err := toolx.NewGateway(catalog, orders)
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}
	tools := &recordingTools{inner: gateway}

	o, err := New(router, tools, catalog, recorder, Config{
		Clock: func() time.Time { return scenarioNow },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o, tools
}

func TestHandleMessageInvalidInput(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, nil)

	_, err := o.HandleMessage(context.Background(), "    ")
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestHandleMessageProductAssist(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, nil)

	trace, err := o.HandleMessage(context.Background(), "Wedding guest, midi, under $120 — I'm between M/L. ETA to 560001?")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if trace.Intent != string(contractx.IntentProductAssist) {
		t.Fatalf("unexpected intent: %s", trace.Intent)
	}
	wantTools := []string{contractx.ToolProductSearch, contractx.ToolSizeRecommender, contractx.ToolETA}
	if strings.Join(trace.ToolsCalled, ",") != strings.Join(wantTools, ",") {
		t.Fatalf("unexpected tools: %v", trace.ToolsCalled)
	}
	if len(trace.Evidence) != 2 {
		t.Fatalf("expected 2 evidence records, got %d", len(trace.Evidence))
	}
	for _, ev := range trace.Evidence {
		p, ok := ev.(contractx.Product)
		if !ok {
			t.Fatalf("unexpected evidence type %T", ev)
		}
		if p.Price > 120 {
			t.Fatalf("evidence %s exceeds price cap: %v", p.ID, p.Price)
		}
	}
	if trace.PolicyDecision != nil {
		t.Fatalf("expected no policy decision, got %#v", trace.PolicyDecision)
	}

	for _, want := range []string{"I found 2 great options", "Satin Slip Midi Dress", "**Size recommendation:** M", "**Shipping to 560001:** 2-3 business days"} {
		if !strings.Contains(trace.FinalMessage, want) {
			t.Fatalf("reply missing %q:\n%s", want, trace.FinalMessage)
		}
	}
	if trace.RequestID == "" || !trace.EvaluatedAt.Equal(scenarioNow) {
		t.Fatalf("unexpected trace metadata: %q %v", trace.RequestID, trace.EvaluatedAt)
	}
}

func TestHandleMessageCancelAllowed(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	recorder := &fakeRecorder{}
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, recorder)

	trace, err := o.HandleMessage(context.Background(), "Cancel order A1003 — email mira@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if trace.Intent != string(contractx.IntentOrderHelp) {
		t.Fatalf("unexpected intent: %s", trace.Intent)
	}
	if strings.Join(trace.ToolsCalled, ",") != "order_lookup,order_cancel" {
		t.Fatalf("unexpected tools: %v", trace.ToolsCalled)
	}
	decision, ok := trace.PolicyDecision.(contractx.PolicyDecision)
	if !ok || !decision.CancelAllowed {
		t.Fatalf("expected allowed decision, got %#v", trace.PolicyDecision)
	}
	if decision.Reason != "Within 60-minute window (35.0 minutes elapsed)" {
		t.Fatalf("unexpected reason: %q", decision.Reason)
	}
	if len(trace.Evidence) != 1 {
		t.Fatalf("expected order evidence, got %#v", trace.Evidence)
	}
	if order := trace.Evidence[0].(contractx.Order); order.OrderID != "A1003" {
		t.Fatalf("unexpected evidence: %#v", order)
	}
	if !strings.Contains(trace.FinalMessage, "successfully cancelled") {
		t.Fatalf("unexpected reply:\n%s", trace.FinalMessage)
	}

	if len(recorder.events) != 1 {
		t.Fatalf("expected 1 recorded cancellation, got %d", len(recorder.events))
	}
	ev := recorder.events[0]
	if ev.OrderID != "A1003" || ev.RequestID != trace.RequestID || ev.ElapsedMinutes != 35 {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestNewWithoutRecorderUsesNoop(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, nil)
	if _, ok := o.recorder.(notifyx.Noop); !ok {
		t.Fatalf("expected notify.Noop recorder, got %T", o.recorder)
	}

	trace, err := o.HandleMessage(context.Background(), "Cancel order A1003 — email mira@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(trace.FinalMessage, "successfully cancelled") {
		t.Fatalf("unexpected reply:\n%s", trace.FinalMessage)
	}
}

func TestHandleMessageCancelBlocked(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	recorder := &fakeRecorder{}
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, recorder)

	trace, err := o.HandleMessage(context.Background(), "Cancel order A1002 — email alex@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	decision, ok := trace.PolicyDecision.(contractx.PolicyDecision)
	if !ok || decision.CancelAllowed {
		t.Fatalf("expected blocked decision, got %#v", trace.PolicyDecision)
	}
	if decision.Reason != "Exceeds 60-minute limit (1405.0 minutes elapsed)" {
		t.Fatalf("unexpected reason: %q", decision.Reason)
	}
	for _, want := range []string{"Unable to cancel order A1002", "store credit", "Edit your shipping address"} {
		if !strings.Contains(trace.FinalMessage, want) {
			t.Fatalf("reply missing %q:\n%s", want, trace.FinalMessage)
		}
	}
	if len(recorder.events) != 0 {
		t.Fatal("blocked cancellations must not be recorded")
	}
}

func TestHandleMessageDiscountGuardrail(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	o, tools := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, nil)

	trace, err := o.HandleMessage(context.Background(), "Can you give me a discount code that doesn't exist?")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if trace.Intent != string(contractx.IntentOther) {
		t.Fatalf("unexpected intent: %s", trace.Intent)
	}
	if len(trace.ToolsCalled) != 0 || len(tools.calls) != 0 {
		t.Fatalf("guardrail must not call tools: %v", tools.calls)
	}
	refusal, ok := trace.PolicyDecision.(contractx.Refusal)
	if !ok || !refusal.Refuse {
		t.Fatalf("expected refusal, got %#v", trace.PolicyDecision)
	}
	if !strings.Contains(trace.FinalMessage, "newsletter") {
		t.Fatalf("unexpected reply:\n%s", trace.FinalMessage)
	}
}

func TestHandleMessageOrderNotFoundDoesNotLeak(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, nil)

	wrongEmail, err := o.HandleMessage(context.Background(), "Cancel order A1003 email alex@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	wrongID, err := o.HandleMessage(context.Background(), "Cancel order A9999 email mira@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	for _, trace := range []contractx.Trace{wrongEmail, wrongID} {
		if strings.Join(trace.ToolsCalled, ",") != contractx.ToolOrderLookup {
			t.Fatalf("cancel must not run without a verified order: %v", trace.ToolsCalled)
		}
		if len(trace.Evidence) != 0 || trace.PolicyDecision != nil {
			t.Fatalf("not found must carry no evidence or decision: %#v", trace)
		}
	}
	if wrongEmail.FinalMessage != wrongID.FinalMessage {
		t.Fatalf("replies must not reveal which field mismatched:\n%s\n%s", wrongEmail.FinalMessage, wrongID.FinalMessage)
	}
}

func TestHandleMessageMissingEmailCallsNoTools(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	o, tools := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, nil)

	trace, err := o.HandleMessage(context.Background(), "Please cancel order A1003")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(tools.calls) != 0 || len(trace.ToolsCalled) != 0 {
		t.Fatalf("expected no tool calls, got %v", tools.calls)
	}
	if !strings.Contains(trace.FinalMessage, "email address") {
		t.Fatalf("reply must ask for the email:\n%s", trace.FinalMessage)
	}
}

func TestHandleMessageRecorderFailureStillReplies(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	recorder := &fakeRecorder{err: errors.New("qstash unavailable")}
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, recorder)

	trace, err := o.HandleMessage(context.Background(), "Cancel order A1003 — email mira@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if decision := trace.PolicyDecision.(contractx.PolicyDecision); !decision.CancelAllowed {
		t.Fatal("decision must stay allowed")
	}
	if !strings.Contains(trace.FinalMessage, "has been approved") || !strings.Contains(trace.FinalMessage, "support team will confirm") {
		t.Fatalf("unexpected reply:\n%s", trace.FinalMessage)
	}
}

func TestHandleMessageRouterErrorFallsBack(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	router := &fakeRouter{err: contractx.ErrModelInvoke}
	o, _ := newTestOrchestrator(t, router, catalog, orders, nil)

	trace, err := o.HandleMessage(context.Background(), "Find me a wedding dress")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if router.calls != 1 {
		t.Fatalf("expected router called once, got %d", router.calls)
	}
	if trace.Intent != string(contractx.IntentProductAssist) {
		t.Fatalf("unexpected intent: %s", trace.Intent)
	}
}

func TestHandleMessageOmitsUnknownOrderItems(t *testing.T) {
	t.Parallel()

	catalog, err := store.NewCatalog([]contractx.Product{
		{ID: "P1", Title: "Linen Dress", Price: 50, Tags: []string{"linen"}, Sizes: []string{"M"}, Color: "Sand"},
	})
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	orders, err := store.NewOrders([]contractx.Order{{
		OrderID:   "B2001",
		Email:     "sam@example.com",
		CreatedAt: scenarioNow.Add(-2 * time.Hour),
		Items:     []contractx.OrderItem{{ID: "P1", Size: "M"}, {ID: "P404", Size: "L"}},
	}})
	if err != nil {
		t.Fatalf("NewOrders() error = %v", err)
	}

	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, nil)
	trace, err := o.HandleMessage(context.Background(), "Where is my order B2001? sam@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	order, ok := trace.Evidence[0].(contractx.Order)
	if !ok {
		t.Fatalf("unexpected evidence: %#v", trace.Evidence)
	}
	if len(order.Items) != 1 || order.Items[0].ID != "P1" {
		t.Fatalf("unknown items must be omitted: %#v", order.Items)
	}
	if strings.Contains(trace.FinalMessage, "P404") {
		t.Fatalf("reply must not cite omitted items:\n%s", trace.FinalMessage)
	}
}

func TestTraceJSONShape(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, nil)

	trace, err := o.HandleMessage(context.Background(), "Cancel order A1002 — email alex@example.com")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	raw, err := json.Marshal(trace)
	if err != nil {
		t.Fatalf("marshal trace: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal trace: %v", err)
	}
	for _, key := range []string{"intent", "tools_called", "evidence", "policy_decision", "final_message"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("trace JSON missing %q: %s", key, raw)
		}
	}
	decision := decoded["policy_decision"].(map[string]any)
	if decision["cancel_allowed"] != false {
		t.Fatalf("unexpected policy_decision: %v", decision)
	}
}

func TestHandleMessageConcurrentRequests(t *testing.T) {
	t.Parallel()

	catalog, orders := newEmbeddedStores(t)
	o, _ := newTestOrchestrator(t, routerx.KeywordRouter{}, catalog, orders, &fakeRecorder{})

	messages := []string{
		"Cancel order A1003 — email mira@example.com",
		"Cancel order A1002 — email alex@example.com",
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(msg string, wantAllowed bool) {
			defer wg.Done()
			trace, err := o.HandleMessage(context.Background(), msg)
			if err != nil {
				errs <- err
				return
			}
			if trace.PolicyDecision.(contractx.PolicyDecision).CancelAllowed != wantAllowed {
				errs <- errors.New("decision drifted under concurrency: " + msg)
			}
		}(messages[i%2], i%2 == 0)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
