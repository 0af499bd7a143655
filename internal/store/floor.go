package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/views"
)

// CallWaiter records a customer's request for attention at a table. A table
// has at most one pending call; calling again returns the one already waiting.
func (s *Store) CallWaiter(table int, phone string) (domain.WaiterCall, error) {
	if table <= 0 {
		return domain.WaiterCall{}, ErrInvalidTable
	}
	var call domain.WaiterCall
	err := s.update(func() (bool, error) {
		for i := range s.waiterCalls {
			c := s.waiterCalls[i]
			if c.TableNumber == table && c.Status == domain.CallPending {
				call = cloneWaiterCall(c)
				return false, nil
			}
		}
		call = domain.WaiterCall{
			ID:            uuid.New(),
			TableNumber:   table,
			CustomerPhone: strings.TrimSpace(phone),
			Status:        domain.CallPending,
			CreatedAt:     s.stamp(),
		}
		s.waiterCalls = append(s.waiterCalls, call)
		return true, nil
	})
	return call, err
}

// AdoptWaiterCall replaces the locally created call localID with the backend's
// record of it. When the backend's call is already held, the local one is dropped.
func (s *Store) AdoptWaiterCall(localID uuid.UUID, remote domain.WaiterCall) error {
	if remote.ID == uuid.Nil || remote.ID == localID {
		return nil
	}
	return s.update(func() (bool, error) {
		i := s.waiterCallIndex(localID)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrWaiterCallNotFound, localID)
		}
		if s.waiterCallIndex(remote.ID) >= 0 {
			s.waiterCalls = append(s.waiterCalls[:i], s.waiterCalls[i+1:]...)
			return true, nil
		}
		local := s.waiterCalls[i]
		adopted := cloneWaiterCall(remote)
		if adopted.TableNumber == 0 {
			adopted.TableNumber = local.TableNumber
		}
		if adopted.Status == "" {
			adopted.Status = local.Status
		}
		if adopted.CreatedAt.IsZero() {
			adopted.CreatedAt = local.CreatedAt
		}
		s.waiterCalls[i] = adopted
		return true, nil
	})
}

// AcknowledgeWaiterCall marks a call handled. Acknowledging twice keeps the first time.
func (s *Store) AcknowledgeWaiterCall(id uuid.UUID) (domain.WaiterCall, error) {
	var call domain.WaiterCall
	err := s.update(func() (bool, error) {
		i := s.waiterCallIndex(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrWaiterCallNotFound, id)
		}
		c := &s.waiterCalls[i]
		if c.Status == domain.CallAcknowledged {
			call = cloneWaiterCall(*c)
			return false, nil
		}
		at := s.stamp()
		c.Status = domain.CallAcknowledged
		c.AcknowledgedAt = &at
		call = cloneWaiterCall(*c)
		return true, nil
	})
	return call, err
}

// PendingWaiterCalls lists unacknowledged calls, oldest first.
func (s *Store) PendingWaiterCalls() []domain.WaiterCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(views.PendingWaiterCalls(s.waiterCalls), cloneWaiterCall)
}

// AddExpense records an outgoing payment.
func (s *Store) AddExpense(e domain.Expense) (domain.Expense, error) {
	if e.Amount <= 0 {
		return domain.Expense{}, fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if strings.TrimSpace(e.Description) == "" {
		return domain.Expense{}, fmt.Errorf("%w: description is required", ErrInvalidExpense)
	}
	if e.Category == "" {
		e.Category = domain.ExpenseOther
	}
	err := s.update(func() (bool, error) {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.stamp()
		}
		s.expenses = append(s.expenses, e)
		return true, nil
	})
	return e, err
}
