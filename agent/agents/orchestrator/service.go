package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	nodex "github.com/tanpawarit/shopdesk-agent/agent/nodes/orchestrator"
	notifyx "github.com/tanpawarit/shopdesk-agent/agent/notify"
	"github.com/tanpawarit/shopdesk-agent/agent/policy"
)

var ErrInvalidMessage = nodex.ErrInvalidMessage

type Config struct {
	CancelWindow time.Duration
	// Clock pins "now" for every request. Nil means wall-clock UTC.
	Clock func() time.Time
}

type Orchestrator struct {
	router   contractx.Router
	tools    contractx.ToolGateway
	catalog  contractx.CatalogStore
	recorder contractx.CancellationRecorder
	vocab    nodex.Vocabulary

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	cancelWindow time.Duration
	now          func() time.Time
	newID        func() string
}

func New(
	router contractx.Router,
	tools contractx.ToolGateway,
	catalog contractx.CatalogStore,
	recorder contractx.CancellationRecorder,
	cfg Config,
) (*Orchestrator, error) {
	if router == nil {
		return nil, errors.New("router is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog store is required")
	}
	if recorder == nil {
		recorder = notifyx.Noop{}
	}

	window := cfg.CancelWindow
	if window <= 0 {
		window = policy.DefaultCancelWindow
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	o := &Orchestrator{
		router:       router,
		tools:        tools,
		catalog:      catalog,
		recorder:     recorder,
		vocab:        nodex.NewVocabulary(catalog),
		cancelWindow: window,
		now:          now,
		newID:        uuid.NewString,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage runs one message through the graph and returns its trace.
// Requests share no state, so it is safe to call concurrently.
func (o *Orchestrator) HandleMessage(ctx context.Context, text string) (contractx.Trace, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Text: text,
	})
	if err != nil {
		return contractx.Trace{}, err
	}
	return out, nil
}
