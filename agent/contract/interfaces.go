package contract

import "context"

// CatalogStore is read-only access to the product catalog.
type CatalogStore interface {
	Get(id string) (Product, error)
	List() []Product
	// Tags is the sorted, lower-cased tag vocabulary of the catalog.
	Tags() []string
}

// OrderStore is read-only access to placed orders.
type OrderStore interface {
	Get(orderID string) (Order, error)
}

type Router interface {
	Route(ctx context.Context, req RouteRequest) (RouteResponse, error)
}

type ToolGateway interface {
	Execute(ctx context.Context, reqs []ToolRequest) ([]ToolResult, error)
}

// CancellationRecorder receives cancellations the policy allowed. The evaluator
// only decides; recording the cancellation is the recorder's job.
type CancellationRecorder interface {
	RecordCancellation(ctx context.Context, ev CancellationEvent) error
}
