package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod represents how a bill was settled at the counter.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentFonepay PaymentMethod = "fonepay"
	PaymentCard    PaymentMethod = "card"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentFonepay, PaymentCard:
		return true
	}
	return false
}

// BillStatus represents the lifecycle state of a table bill.
type BillStatus string

const (
	BillActive BillStatus = "active"
	BillPaid   BillStatus = "paid"
)

// Category groups menu items for display.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
}

// MenuItem is a sellable item. Price is in whole currency units.
type MenuItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       int       `json:"price"`
	Category    string    `json:"category"`
	Available   bool      `json:"available"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
}

// OrderItem is a line of an order. Name and Price are snapshots taken when the order was placed.
type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Qty        int       `json:"qty"`
	Price      int       `json:"price"`
}

// LineTotal returns qty x unit price.
func (i OrderItem) LineTotal() int { return i.Qty * i.Price }

// Order is a set of items placed for one table by one customer phone.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	TableNumber   int         `json:"table_number"`
	CustomerPhone string      `json:"customer_phone"`
	Items         []OrderItem `json:"items"`
	Status        OrderStatus `json:"status"`
	Total         int         `json:"total"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// ItemsTotal sums the line totals of items.
func ItemsTotal(items []OrderItem) int {
	total := 0
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// Bill is the running tab of one table.
type Bill struct {
	ID             uuid.UUID     `json:"id"`
	TableNumber    int           `json:"table_number"`
	CustomerPhones []string      `json:"customer_phones"`
	Orders         []Order       `json:"orders"`
	Subtotal       int           `json:"subtotal"`
	Discount       int           `json:"discount"`
	Total          int           `json:"total"`
	Status         BillStatus    `json:"status"`
	PaymentMethod  PaymentMethod `json:"payment_method,omitempty"`
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// HasPhone reports whether phone is already attached to the bill.
func (b Bill) HasPhone(phone string) bool {
	for _, p := range b.CustomerPhones {
		if p == phone {
			return true
		}
	}
	return false
}

// HasOrder reports whether the order id is already on the bill.
func (b Bill) HasOrder(id uuid.UUID) bool {
	for _, o := range b.Orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Transaction is the immutable ledger record written when a bill is paid.
type Transaction struct {
	ID             uuid.UUID     `json:"id"`
	BillID         uuid.UUID     `json:"bill_id"`
	TableNumber    int           `json:"table_number"`
	CustomerPhones []string      `json:"customer_phones"`
	Total          int           `json:"total"`
	Discount       int           `json:"discount"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	PaidAt         time.Time     `json:"paid_at"`
	Items          []OrderItem   `json:"items"`
}

// Customer is keyed by phone.
type Customer struct {
	Phone       string    `json:"phone"`
	Name        string    `json:"name,omitempty"`
	TotalOrders int       `json:"total_orders"`
	TotalSpent  int       `json:"total_spent"`
	Points      int       `json:"points"`
	LastVisit   time.Time `json:"last_visit"`
}

// StaffRole is the access level of a staff account.
type StaffRole string

const (
	RoleAdmin   StaffRole = "admin"
	RoleCounter StaffRole = "counter"
	RoleKitchen StaffRole = "kitchen"
)

// Staff is a terminal operator account.
type Staff struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         StaffRole `json:"role"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Settings is the per-restaurant configuration singleton.
type Settings struct {
	RestaurantName     string `json:"restaurant_name"`
	TableCount         int    `json:"table_count"`
	WifiSSID           string `json:"wifi_ssid,omitempty"`
	WifiPassword       string `json:"wifi_password,omitempty"`
	BaseURL            string `json:"base_url,omitempty"`
	Logo               string `json:"logo,omitempty"`
	InstagramURL       string `json:"instagram_url,omitempty"`
	FacebookURL        string `json:"facebook_url,omitempty"`
	TiktokURL          string `json:"tiktok_url,omitempty"`
	GoogleReviewURL    string `json:"google_review_url,omitempty"`
	CounterAsAdmin     bool   `json:"counter_as_admin"`
	KOTPrintingEnabled bool   `json:"kot_printing_enabled"`
	DualPrinterEnabled bool   `json:"dual_printer_enabled"`
	KDSEnabled         bool   `json:"kds_enabled"`
}

// DefaultSettings is used until the backend provides a settings record.
func DefaultSettings() Settings {
	return Settings{RestaurantName: "Restaurant", TableCount: 10}
}

// ExpenseCategory classifies an expense.
type ExpenseCategory string

const (
	ExpenseIngredients ExpenseCategory = "ingredients"
	ExpenseUtilities   ExpenseCategory = "utilities"
	ExpenseSalary      ExpenseCategory = "salary"
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseOther       ExpenseCategory = "other"
)

// Expense is a recorded outgoing payment.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	Amount      int             `json:"amount"`
	Description string          `json:"description"`
	Category    ExpenseCategory `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by"`
}

// WaiterCallStatus is the state of a table's call for service.
type WaiterCallStatus string

const (
	CallPending      WaiterCallStatus = "pending"
	CallAcknowledged WaiterCallStatus = "acknowledged"
)

// WaiterCall is a customer request for staff attention.
type WaiterCall struct {
	ID             uuid.UUID        `json:"id"`
	TableNumber    int              `json:"table_number"`
	CustomerPhone  string           `json:"customer_phone"`
	Status         WaiterCallStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	AcknowledgedAt *time.Time       `json:"acknowledged_at,omitempty"`
}

// LoyaltyPointsFor returns the points earned for a paid total: one point per 10 units.
func LoyaltyPointsFor(total int) int {
	if total <= 0 {
		return 0
	}
	return total / 10
}
