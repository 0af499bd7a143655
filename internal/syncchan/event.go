// Package syncchan carries "this entity family changed" notifications between the
// backend and every connected terminal over a RabbitMQ fanout exchange.
package syncchan

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event names.
const (
	EventConnection       = "connection"
	EventMenuUpdate       = "MENU_UPDATE"
	EventStaffUpdate      = "STAFF_UPDATE"
	EventOrderUpdate      = "ORDER_UPDATE"
	EventBillUpdate       = "BILL_UPDATE"
	EventCustomerUpdate   = "CUSTOMER_UPDATE"
	EventWaiterCall       = "WAITER_CALL"
	EventSettingsUpdate   = "SETTINGS_UPDATE"
	EventExpenseUpdate    = "EXPENSE_UPDATE"
	EventCategoriesUpdate = "CATEGORIES_UPDATE"
)

// Connection statuses carried by EventConnection.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// UpdateEvents lists every family notification a terminal reacts to.
var UpdateEvents = []string{
	EventMenuUpdate,
	EventStaffUpdate,
	EventOrderUpdate,
	EventBillUpdate,
	EventCustomerUpdate,
	EventWaiterCall,
	EventSettingsUpdate,
	EventExpenseUpdate,
	EventCategoriesUpdate,
}

// Event is one notification. It carries no entity data.
type Event struct {
	Type   string    `json:"type"`
	Status string    `json:"status,omitempty"`
	Origin string    `json:"origin,omitempty"`
	At     time.Time `json:"at"`
}

func known(name string) bool {
	for _, e := range UpdateEvents {
		if e == name {
			return true
		}
	}
	return false
}

// Decode parses a broker message body.
func Decode(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("decode sync event: %w", err)
	}
	if !known(ev.Type) {
		return Event{}, fmt.Errorf("unknown sync event %q", ev.Type)
	}
	return ev, nil
}
