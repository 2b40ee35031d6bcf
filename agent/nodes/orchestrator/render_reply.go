package orchestratornode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

const (
	replyOrderNotFound = "I couldn't find an order with that ID and email combination. Please double-check the order number and email address."

	replyHelpMenu = `I'm here to help you find products and manage your orders. I can:

• **Find products** - Search by style, price, size, or occasion
• **Size guidance** - Help you choose between M and L
• **Shipping info** - Provide delivery estimates
• **Order help** - Look up orders and handle cancellations (within %s minutes)

What would you like help with?`

	orderDateLayout = "January 02 at 03:04 PM"
)

// RenderReply builds the customer message from the records in the state only.
func RenderReply(in *GraphState, catalog contractx.CatalogStore, window time.Duration) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	switch intent := in.Intent.(type) {
	case contractx.ProductAssist:
		in.Message = renderProducts(in)
	case contractx.OrderHelp:
		in.Message = renderOrder(in, intent, catalog, window)
	default:
		in.Message = renderOther(in, window)
	}
	return in, nil
}

func renderProducts(in *GraphState) string {
	var b strings.Builder

	if len(in.Products) == 0 {
		b.WriteString("I don't see any products matching those criteria in our current collection.\n")
	} else {
		plural := "s"
		if len(in.Products) == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "I found %d great option%s for you:\n\n", len(in.Products), plural)
		for i, p := range in.Products {
			fmt.Fprintf(&b, "%d. **%s** ($%s, %s) - Available in %s\n",
				i+1, p.Title, formatPrice(p.Price), p.Color, strings.Join(p.Sizes, ", "))
		}
	}

	if in.Size != nil {
		fmt.Fprintf(&b, "\n**Size recommendation:** %s - %s\n", in.Size.RecommendedSize, in.Size.Rationale)
	}
	if in.Shipping != nil {
		fmt.Fprintf(&b, "\n**Shipping to %s:** %d-%d business days\n", in.Shipping.Zip, in.Shipping.MinDays, in.Shipping.MaxDays)
	}

	b.WriteString("\nWould you like more details about any of these options?")
	return b.String()
}

func renderOrder(in *GraphState, intent contractx.OrderHelp, catalog contractx.CatalogStore, window time.Duration) string {
	if missing := intent.Missing(); len(missing) > 0 {
		return askForIdentifiers(missing)
	}
	if in.Order == nil {
		if in.OrderErr != nil && !errors.Is(in.OrderErr, contractx.ErrNotFound) && !errors.Is(in.OrderErr, contractx.ErrValidation) {
			return "I'm having trouble looking up that order right now. Please try again or contact customer support."
		}
		return replyOrderNotFound
	}

	order := in.Order
	items := renderItems(order.Items, catalog)
	placed := order.CreatedAt.UTC().Format(orderDateLayout)

	if in.Cancel == nil {
		if intent.Cancel {
			return "I found your order but couldn't check it for cancellation right now. Please contact customer support for help."
		}
		return fmt.Sprintf("📋 **Order %s Details:**\n\n%s\n- Placed: %s\n- Email: %s\n\nHow can I help you with this order?",
			order.OrderID, items, placed, order.Email)
	}

	decision := in.Cancel.PolicyDecision
	if !decision.CancelAllowed {
		alts := make([]string, 0, len(in.Cancel.Alternatives))
		for _, alt := range in.Cancel.Alternatives {
			alts = append(alts, "• **"+alt+"**")
		}
		return fmt.Sprintf("❌ **Unable to cancel order %s**\n\n%s\n\n**Alternative options:**\n%s\n\nWhich option would work best for you?",
			order.OrderID, decision.Reason, strings.Join(alts, "\n"))
	}

	if in.RecordErr != nil {
		return fmt.Sprintf("✅ **Cancellation of order %s has been approved.**\n\n%s\n- Placed: %s\n- Requested within our %s-minute window\n\n"+
			"Our support team will confirm the cancellation by email shortly.\n\n**Refund:** %s",
			order.OrderID, items, placed, minutes(window), in.Cancel.RefundInfo)
	}

	return fmt.Sprintf("✅ **Order %s has been successfully cancelled.**\n\nOrder details:\n%s\n- Placed: %s\n- Cancelled within our %s-minute window\n\n"+
		"**Refund:** %s\n\nIs there anything else I can help you with?",
		order.OrderID, items, placed, minutes(window), in.Cancel.RefundInfo)
}

func renderOther(in *GraphState, window time.Duration) string {
	if refusal, ok := in.Decision.(contractx.Refusal); ok && refusal.Refuse {
		alts := make([]string, 0, len(refusal.Alternatives))
		for _, alt := range refusal.Alternatives {
			alts = append(alts, "• "+alt)
		}
		return fmt.Sprintf("I don't have access to create custom discount codes, but here are some ways you can save:\n\n%s\n\nIs there anything else I can help you find today?",
			strings.Join(alts, "\n"))
	}
	return fmt.Sprintf(replyHelpMenu, minutes(window))
}

func askForIdentifiers(missing []string) string {
	labels := make([]string, 0, len(missing))
	for _, m := range missing {
		switch m {
		case "order_id":
			labels = append(labels, "your order number (for example A1003)")
		case "email":
			labels = append(labels, "the email address used to place the order")
		}
	}
	return fmt.Sprintf("I can help with that. To find your order I need %s.", strings.Join(labels, " and "))
}

func renderItems(items []contractx.OrderItem, catalog contractx.CatalogStore) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if p, err := catalog.Get(item.ID); err == nil {
			lines = append(lines, fmt.Sprintf("- %s (Size %s)", p.Title, item.Size))
			continue
		}
		lines = append(lines, fmt.Sprintf("- Product %s (Size %s)", item.ID, item.Size))
	}
	return strings.Join(lines, "\n")
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func minutes(window time.Duration) string {
	if window <= 0 {
		return "60"
	}
	return strconv.FormatFloat(window.Minutes(), 'f', -1, 64)
}
