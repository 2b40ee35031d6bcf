package store

import (
	"fmt"
	"slices"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

var _ contractx.OrderStore = (*Orders)(nil)

// Orders is an immutable order index keyed by order id.
type Orders struct {
	byID map[string]contractx.Order
}

func NewOrders(orders []contractx.Order) (*Orders, error) {
	s := &Orders{byID: make(map[string]contractx.Order, len(orders))}

	for i, o := range orders {
		id := strings.TrimSpace(o.OrderID)
		if id == "" {
			return nil, fmt.Errorf("%w: order[%d] has empty order_id", contractx.ErrValidation, i)
		}
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("%w: duplicate order id=%s", contractx.ErrValidation, id)
		}
		if o.CreatedAt.IsZero() {
			return nil, fmt.Errorf("%w: order id=%s has no created_at", contractx.ErrValidation, id)
		}

		o.OrderID = id
		o.CreatedAt = o.CreatedAt.UTC()
		s.byID[id] = cloneOrder(o)
	}

	return s, nil
}

func (s *Orders) Get(orderID string) (contractx.Order, error) {
	o, ok := s.byID[strings.TrimSpace(orderID)]
	if !ok {
		return contractx.Order{}, fmt.Errorf("%w: order id=%s", contractx.ErrNotFound, orderID)
	}
	return cloneOrder(o), nil
}

func (s *Orders) Len() int {
	return len(s.byID)
}

func cloneOrder(o contractx.Order) contractx.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
