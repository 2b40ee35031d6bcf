package contract

import (
	"fmt"
	"strings"
)

type IntentKind string

const (
	IntentProductAssist IntentKind = "product_assist"
	IntentOrderHelp     IntentKind = "order_help"
	IntentOther         IntentKind = "other"
)

// ParseIntentKind normalizes a classifier label. Surrounding quotes, spaces and
// case are ignored.
func ParseIntentKind(raw string) (IntentKind, error) {
	label := strings.ToLower(strings.Trim(strings.TrimSpace(raw), "\"'`."))
	switch IntentKind(label) {
	case IntentProductAssist, IntentOrderHelp, IntentOther:
		return IntentKind(label), nil
	default:
		return "", fmt.Errorf("%w: unknown intent %q", ErrSchemaViolation, raw)
	}
}

// Intent is the classified request. Each variant carries only the slots its
// tools need.
type Intent interface {
	Kind() IntentKind
}

type ProductAssist struct {
	Query          string
	PriceMax       float64
	Tags           []string
	SizePreference string
	ZipCode        string
}

func (ProductAssist) Kind() IntentKind { return IntentProductAssist }

// WantsSize reports whether the customer asked for sizing help.
func (p ProductAssist) WantsSize() bool { return p.SizePreference != "" }

// WantsETA reports whether a postal code was given.
func (p ProductAssist) WantsETA() bool { return p.ZipCode != "" }

type OrderHelp struct {
	OrderID string
	Email   string
	Cancel  bool
}

func (OrderHelp) Kind() IntentKind { return IntentOrderHelp }

// Missing lists the identifying fields the customer still has to provide.
func (o OrderHelp) Missing() []string {
	var missing []string
	if strings.TrimSpace(o.OrderID) == "" {
		missing = append(missing, "order_id")
	}
	if strings.TrimSpace(o.Email) == "" {
		missing = append(missing, "email")
	}
	return missing
}

type Other struct {
	DiscountCodeRequest bool
}

func (Other) Kind() IntentKind { return IntentOther }
