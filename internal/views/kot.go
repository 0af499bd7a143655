package views

import (
	"fmt"
	"strings"

	"github.com/georgemunganga/tablepos/internal/domain"
)

const ticketWidth = 32

// KitchenTicket renders an order as a fixed-width kitchen order ticket.
func KitchenTicket(o domain.Order, waiter string) string {
	rule := strings.Repeat("=", ticketWidth)
	thin := strings.Repeat("-", ticketWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(center("KITCHEN ORDER TICKET") + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Table: %d\n", o.TableNumber)
	fmt.Fprintf(&b, "Time: %s\n", o.CreatedAt.Format("03:04 PM"))
	fmt.Fprintf(&b, "Order: #%s\n", shortID(o.ID.String()))
	if waiter != "" {
		fmt.Fprintf(&b, "Waiter: %s\n", waiter)
	}
	b.WriteString(thin + "\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%dx %s\n", it.Qty, it.Name)
	}
	if o.Notes != "" {
		b.WriteString(thin + "\n")
		fmt.Fprintf(&b, "Notes: %s\n", o.Notes)
	}
	b.WriteString(rule + "\n")
	return b.String()
}

func center(s string) string {
	pad := (ticketWidth - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
