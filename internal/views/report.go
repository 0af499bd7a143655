package views

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// Period selects the window of a sales report.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts today, week or month; empty means today.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodToday, nil
	case PeriodToday, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", fmt.Errorf("unknown report period %q", raw)
}

// Window returns [start, now] for the period and the previous window [prevStart, prevEnd).
func (p Period) Window(now time.Time, loc *time.Location) (start, prevStart, prevEnd time.Time) {
	today := StartOfDay(now, loc)
	switch p {
	case PeriodWeek:
		start = today.AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, -7), start
	case PeriodMonth:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return start, start.AddDate(0, -1, 0), start
	default:
		return today, today.AddDate(0, 0, -1), today
	}
}

// ItemSales aggregates one item name across transactions.
type ItemSales struct {
	Name    string `json:"name"`
	Qty     int    `json:"qty"`
	Revenue int    `json:"revenue"`
}

// Bucket is one bar of a time breakdown.
type Bucket struct {
	Label   string `json:"label"`
	Revenue int    `json:"revenue"`
}

// SalesReport summarises paid transactions and expenses over a period.
type SalesReport struct {
	Period          Period                       `json:"period"`
	From            time.Time                    `json:"from"`
	To              time.Time                    `json:"to"`
	Revenue         int                          `json:"revenue"`
	RevenueChange   float64                      `json:"revenue_change"`
	Orders          int                          `json:"orders"`
	OrdersChange    float64                      `json:"orders_change"`
	AverageOrder    int                          `json:"average_order"`
	AverageChange   float64                      `json:"average_change"`
	ByPayment       map[domain.PaymentMethod]int `json:"by_payment"`
	TopItems        []ItemSales                  `json:"top_items"`
	Breakdown       []Bucket                     `json:"breakdown,omitempty"`
	UniqueCustomers int                          `json:"unique_customers"`
	Expenses        int                          `json:"expenses"`
	Net             int                          `json:"net"`
}

const topItemsLimit = 5

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Sales builds the report for period ending at now.
func Sales(period Period, txs []domain.Transaction, expenses []domain.Expense, now time.Time, loc *time.Location) SalesReport {
	if loc == nil {
		loc = time.Local
	}
	start, prevStart, prevEnd := period.Window(now, loc)

	var cur, prev []domain.Transaction
	for _, t := range txs {
		switch {
		case !t.PaidAt.Before(start):
			cur = append(cur, t)
		case !t.PaidAt.Before(prevStart) && t.PaidAt.Before(prevEnd):
			prev = append(prev, t)
		}
	}

	r := SalesReport{
		Period:    period,
		From:      start,
		To:        now,
		ByPayment: make(map[domain.PaymentMethod]int),
	}
	prevRevenue := 0
	for _, t := range prev {
		prevRevenue += t.Total
	}

	phones := make(map[string]struct{})
	items := make(map[string]*ItemSales)
	for _, t := range cur {
		r.Revenue += t.Total
		r.ByPayment[t.PaymentMethod] += t.Total
		for _, p := range t.CustomerPhones {
			phones[p] = struct{}{}
		}
		for _, it := range t.Items {
			s, ok := items[it.Name]
			if !ok {
				s = &ItemSales{Name: it.Name}
				items[it.Name] = s
			}
			s.Qty += it.Qty
			s.Revenue += it.LineTotal()
		}
	}
	r.Orders = len(cur)
	r.UniqueCustomers = len(phones)
	r.AverageOrder = average(r.Revenue, r.Orders)
	r.RevenueChange = change(r.Revenue, prevRevenue)
	r.OrdersChange = change(r.Orders, len(prev))
	r.AverageChange = change(r.AverageOrder, average(prevRevenue, len(prev)))
	r.TopItems = topItems(items)

	switch period {
	case PeriodToday:
		r.Breakdown = hourly(cur, loc)
	case PeriodWeek:
		r.Breakdown = daily(cur, loc)
	}

	for _, e := range expenses {
		if !e.CreatedAt.Before(start) && !e.CreatedAt.After(now) {
			r.Expenses += e.Amount
		}
	}
	r.Net = r.Revenue - r.Expenses
	return r
}

func topItems(items map[string]*ItemSales) []ItemSales {
	out := make([]ItemSales, 0, len(items))
	for _, s := range items {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topItemsLimit {
		out = out[:topItemsLimit]
	}
	return out
}

func hourly(txs []domain.Transaction, loc *time.Location) []Bucket {
	byHour := make(map[int]int)
	for _, t := range txs {
		byHour[t.PaidAt.In(loc).Hour()] += t.Total
	}
	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	out := make([]Bucket, len(hours))
	for i, h := range hours {
		out[i] = Bucket{Label: fmt.Sprintf("%02d:00", h), Revenue: byHour[h]}
	}
	return out
}

func daily(txs []domain.Transaction, loc *time.Location) []Bucket {
	out := make([]Bucket, len(weekdays))
	for i, d := range weekdays {
		out[i].Label = d
	}
	for _, t := range txs {
		out[t.PaidAt.In(loc).Weekday()].Revenue += t.Total
	}
	return out
}

func average(total, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}

// change is the percentage change from prev to cur, one decimal place.
func change(cur, prev int) float64 {
	if prev > 0 {
		return math.Round(float64(cur-prev)/float64(prev)*1000) / 10
	}
	if cur > 0 {
		return 100
	}
	return 0
}
