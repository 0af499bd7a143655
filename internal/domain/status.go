package domain

import (
	"errors"
	"fmt"
	"strings"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// lifecycle is the forward order of the non-cancelled states.
var lifecycle = []OrderStatus{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusReady,
	StatusServed,
	StatusPaid,
}

var rank = func() map[OrderStatus]int {
	m := make(map[OrderStatus]int, len(lifecycle))
	for i, s := range lifecycle {
		m[s] = i
	}
	return m
}()

// Known reports whether s is a recognised status.
func (s OrderStatus) Known() bool {
	_, ok := rank[s]
	return ok || s == StatusCancelled
}

// Terminal reports whether no transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Active reports whether the order is still in the kitchen/service pipeline.
func (s OrderStatus) Active() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady:
		return true
	}
	return false
}

// ParseOrderStatus normalises raw input into a known status.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// TransitionPolicy is the authoritative order state machine. Forward moves along the
// lifecycle may skip steps; backward moves are rejected; cancelled is reachable only
// from the statuses in CancelFrom.
type TransitionPolicy struct {
	CancelFrom map[OrderStatus]bool
}

// DefaultTransitionPolicy allows cancelling before the kitchen starts preparing.
func DefaultTransitionPolicy() TransitionPolicy {
	return NewTransitionPolicy(StatusPending, StatusAccepted)
}

// NewTransitionPolicy builds a policy with the given cancel predecessors.
func NewTransitionPolicy(cancelFrom ...OrderStatus) TransitionPolicy {
	p := TransitionPolicy{CancelFrom: make(map[OrderStatus]bool, len(cancelFrom))}
	for _, s := range cancelFrom {
		if s.Terminal() {
			continue
		}
		p.CancelFrom[s] = true
	}
	return p
}

// ParseCancelFrom builds a policy from a comma separated list, e.g. "pending,accepted".
// An empty list yields the default policy.
func ParseCancelFrom(list string) (TransitionPolicy, error) {
	if strings.TrimSpace(list) == "" {
		return DefaultTransitionPolicy(), nil
	}
	var from []OrderStatus
	for _, part := range strings.Split(list, ",") {
		s, err := ParseOrderStatus(part)
		if err != nil {
			return TransitionPolicy{}, err
		}
		from = append(from, s)
	}
	return NewTransitionPolicy(from...), nil
}

// Check returns nil when from -> to is allowed. Re-applying the current status is allowed.
func (p TransitionPolicy) Check(from, to OrderStatus) error {
	if !from.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if !to.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return nil
	}
	if from.Terminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if to == StatusCancelled {
		if p.CancelFrom[from] {
			return nil
		}
		return fmt.Errorf("%w: cannot cancel a %s order", ErrInvalidTransition, from)
	}
	if rank[to] < rank[from] {
		return fmt.Errorf("%w: %s -> %s moves backwards (valid: %s)",
			ErrInvalidTransition, from, to, describe(p.ValidNext(from)))
	}
	return nil
}

// ValidNext lists the statuses reachable from s.
func (p TransitionPolicy) ValidNext(s OrderStatus) []OrderStatus {
	if s.Terminal() {
		return nil
	}
	var next []OrderStatus
	for _, candidate := range lifecycle {
		if rank[candidate] > rank[s] {
			next = append(next, candidate)
		}
	}
	if p.CancelFrom[s] {
		next = append(next, StatusCancelled)
	}
	return next
}

func describe(statuses []OrderStatus) string {
	if len(statuses) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
