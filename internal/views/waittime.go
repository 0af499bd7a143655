package views

import (
	"fmt"
	"strings"

	"github.com/georgemunganga/tablepos/internal/domain"
)

const (
	defaultPrepMinutes = 5
	// kitchenParallelism is how many orders the kitchen works on at once.
	kitchenParallelism = 3
)

// prepTimes is matched in order against the lower-cased item name.
var prepTimes = []struct {
	keyword string
	minutes int
}{
	{"tea", 3},
	{"snacks", 8},
	{"cold drink", 2},
	{"pastry", 1},
}

// PrepMinutes estimates the preparation time of one unit of the named item.
func PrepMinutes(name string) int {
	lower := strings.ToLower(name)
	for _, p := range prepTimes {
		if strings.Contains(lower, p.keyword) {
			return p.minutes
		}
	}
	return defaultPrepMinutes
}

// CartLine is the minimum needed to estimate a not-yet-placed order.
type CartLine struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// WaitTime is the kitchen load summary shown to customers.
type WaitTime struct {
	QueueLength int    `json:"queue_length"`
	Minutes     int    `json:"minutes"`
	Label       string `json:"label"`
}

// EstimateWait returns the minutes needed to clear the current kitchen queue.
func EstimateWait(orders []domain.Order) WaitTime {
	total := 0
	queue := 0
	for _, o := range orders {
		if !inQueue(o.Status) {
			continue
		}
		queue++
		for _, it := range o.Items {
			total += PrepMinutes(it.Name) * it.Qty
		}
	}
	minutes := ceilDiv(total, kitchenParallelism)
	return WaitTime{QueueLength: queue, Minutes: minutes, Label: FormatWait(minutes)}
}

// WaitForNewOrder adds the cart's own preparation time to the current queue estimate.
func WaitForNewOrder(orders []domain.Order, cart []CartLine) WaitTime {
	wt := EstimateWait(orders)
	own := 0
	for _, l := range cart {
		own += PrepMinutes(l.Name) * l.Qty
	}
	wt.Minutes += ceilDiv(own, 2)
	wt.Label = FormatWait(wt.Minutes)
	return wt
}

// FormatWait renders minutes as a coarse human bucket.
func FormatWait(minutes int) string {
	switch {
	case minutes <= 0:
		return "Ready now"
	case minutes < 5:
		return "< 5 min"
	case minutes < 10:
		return "5-10 min"
	case minutes < 15:
		return "10-15 min"
	case minutes < 20:
		return "15-20 min"
	}
	return fmt.Sprintf("~%d min", minutes)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
