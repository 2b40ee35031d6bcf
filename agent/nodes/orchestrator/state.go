package orchestratornode

import (
	"errors"
	"time"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

var ErrInvalidMessage = errors.New("message is empty")

type GraphInput struct {
	Text string
}

type GraphOutput = contractx.Trace

// GraphState is threaded through every node of one request. Nothing in it
// outlives the request.
type GraphState struct {
	RequestID string
	Text      string
	Now       time.Time

	Route  contractx.RouteResponse
	Intent contractx.Intent

	ToolsCalled []string
	Evidence    []any

	Products []contractx.Product
	Size     *contractx.SizeRecommendation
	Shipping *contractx.ShippingEstimate
	Order    *contractx.Order
	OrderErr error
	Cancel   *contractx.CancelOutcome

	Decision  contractx.Decision
	RecordErr error

	Message string
}
