package tool

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
	"github.com/tanpawarit/shopdesk-agent/agent/policy"
)

// errOrderNotFound is returned for any id/email mismatch so callers cannot tell
// which of the two was wrong.
var errOrderNotFound = fmt.Errorf("%w: no order matches that id and email", contractx.ErrNotFound)

// OrderLookup returns the order only when both the id and the email match.
// Emails compare case-insensitively.
func OrderLookup(orders contractx.OrderStore, orderID, email string) (contractx.Order, error) {
	orderID = strings.TrimSpace(orderID)
	email = strings.TrimSpace(email)

	var missing []string
	if orderID == "" {
		missing = append(missing, "order_id")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return contractx.Order{}, fmt.Errorf("%w: %s required", contractx.ErrValidation, strings.Join(missing, " and "))
	}

	order, err := orders.Get(orderID)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return contractx.Order{}, errOrderNotFound
		}
		return contractx.Order{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(order.Email), email) {
		return contractx.Order{}, errOrderNotFound
	}
	return order, nil
}

// OrderCancel evaluates the cancellation window for order at now. It never
// modifies the order store.
func OrderCancel(order contractx.Order, now time.Time, window time.Duration) contractx.CancelOutcome {
	decision := policy.EvaluateCancellation(order.CreatedAt, now, window)
	return policy.Outcome(order.OrderID, decision)
}

// ResolveOrderItems drops items whose product is not in the catalog. The
// returned error wraps ErrDataIntegrity and names the missing ids; the order is
// still usable.
func ResolveOrderItems(catalog contractx.CatalogStore, order contractx.Order) (contractx.Order, error) {
	kept := make([]contractx.OrderItem, 0, len(order.Items))
	var missing []string
	for _, item := range order.Items {
		if _, err := catalog.Get(item.ID); err != nil {
			missing = append(missing, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	order.Items = kept

	if len(missing) > 0 {
		return order, fmt.Errorf("%w: order=%s references unknown products %s",
			contractx.ErrDataIntegrity, order.OrderID, strings.Join(missing, ","))
	}
	return order, nil
}
