package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	qstashx "github.com/tanpawarit/shopdesk-agent/pkg/qstash"
)

const defaultRetries = 3

type publisher interface {
	PublishJSON(ctx context.Context, destination string, payload any, opts qstashx.PublishOptions) (*qstashx.PublishResponse, error)
}

var (
	_ contractx.CancellationRecorder = (*QStashRecorder)(nil)
	_ contractx.CancellationRecorder = Noop{}
)

// QStashRecorder publishes allowed cancellations to a QStash destination, which
// delivers them to the fulfilment service with retries.
type QStashRecorder struct {
	client      publisher
	destination string
	retries     int
}

// New returns a QStash recorder when cfg is enabled and Noop otherwise.
func New(cfg qstashx.Config) (contractx.CancellationRecorder, error) {
	if !cfg.Enabled() {
		log.Info().Msg("qstash not configured, cancellations are not forwarded")
		return Noop{}, nil
	}

	client, err := qstashx.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create qstash client: %w", err)
	}
	return NewQStashRecorder(client, cfg.Destination)
}

func NewQStashRecorder(client publisher, destination string) (*QStashRecorder, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: qstash client is nil", contractx.ErrValidation)
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, fmt.Errorf("%w: qstash destination is required", contractx.ErrValidation)
	}
	return &QStashRecorder{client: client, destination: destination, retries: defaultRetries}, nil
}

func (r *QStashRecorder) RecordCancellation(ctx context.Context, ev contractx.CancellationEvent) error {
	retries := r.retries
	resp, err := r.client.PublishJSON(ctx, r.destination, ev, qstashx.PublishOptions{
		DeduplicationID: DeduplicationID(ev.OrderID),
		Retries:         &retries,
	})
	if err != nil {
		return fmt.Errorf("publish cancellation order=%s: %w", ev.OrderID, err)
	}

	log.Debug().
		Str("order_id", ev.OrderID).
		Str("message_id", resp.MessageID).
		Bool("deduplicated", resp.Deduplicated).
		Msg("cancellation published")
	return nil
}

// DeduplicationID is stable per order, so a repeated cancel of the same order
// is delivered once.
func DeduplicationID(orderID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("shopdesk:cancel:"+strings.TrimSpace(orderID))).String()
}

// Noop accepts every cancellation without forwarding it.
type Noop struct{}

func (Noop) RecordCancellation(context.Context, contractx.CancellationEvent) error {
	return nil
}
