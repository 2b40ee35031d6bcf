package contract

import (
	"time"
)

type AgentType string

const (
	AgentTypeOrchestrator AgentType = "orchestrator"
	AgentTypeRouter       AgentType = "router"
)

// Tool names as they appear in traces.
const (
	ToolProductSearch   = "product_search"
	ToolSizeRecommender = "size_recommender"
	ToolETA             = "eta"
	ToolOrderLookup     = "order_lookup"
	ToolOrderCancel     = "order_cancel"
)

type Product struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Price float64  `json:"price"`
	Tags  []string `json:"tags"`
	Sizes []string `json:"sizes"`
	Color string   `json:"color"`
}

type OrderItem struct {
	ID   string `json:"id"`
	Size string `json:"size"`
}

type Order struct {
	OrderID   string      `json:"order_id"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items"`
}

type SizeRecommendation struct {
	RecommendedSize string `json:"recommended_size"`
	Rationale       string `json:"rationale"`
}

type ShippingEstimate struct {
	Zip          string `json:"zip"`
	Region       string `json:"region"`
	MinDays      int    `json:"min_days"`
	MaxDays      int    `json:"max_days"`
	ShippingNote string `json:"shipping_note"`
}

// Decision is what the policy guard hands to the trace: either a cancellation
// PolicyDecision or a Refusal.
type Decision interface {
	decision()
}

type PolicyDecision struct {
	CancelAllowed bool   `json:"cancel_allowed"`
	Reason        string `json:"reason"`

	ElapsedMinutes float64 `json:"-"`
}

func (PolicyDecision) decision() {}

type Refusal struct {
	Refuse       bool     `json:"refuse"`
	Reason       string   `json:"reason"`
	Alternatives []string `json:"alternatives,omitempty"`
}

func (Refusal) decision() {}

// CancelOutcome is the order_cancel tool result: the decision plus the
// customer-facing follow-ups that go with it.
type CancelOutcome struct {
	OrderID        string         `json:"order_id"`
	PolicyDecision PolicyDecision `json:"policy_decision"`
	RefundInfo     string         `json:"refund_info,omitempty"`
	Alternatives   []string       `json:"alternatives,omitempty"`
}

type CancellationEvent struct {
	RequestID      string    `json:"request_id"`
	OrderID        string    `json:"order_id"`
	Email          string    `json:"email"`
	ElapsedMinutes float64   `json:"elapsed_minutes"`
	DecidedAt      time.Time `json:"decided_at"`
}

type RouteRequest struct {
	UserMessage string    `json:"user_message"`
	Now         time.Time `json:"now"`
}

type RouteResponse struct {
	Intent IntentKind `json:"intent"`
	Source string     `json:"source"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Failed reports whether the tool returned an error instead of a result.
func (r ToolResult) Failed() bool {
	return r.Err != nil || r.Error != ""
}

// Trace is the structured record of one handled message.
type Trace struct {
	RequestID      string    `json:"request_id"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
	Intent         string    `json:"intent"`
	ToolsCalled    []string  `json:"tools_called"`
	Evidence       []any     `json:"evidence"`
	PolicyDecision Decision  `json:"policy_decision"`
	FinalMessage   string    `json:"final_message"`
}
