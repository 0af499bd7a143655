package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// OrderDraft is an order before the store assigns identity and timestamps.
// A zero ID is replaced with a fresh one.
type OrderDraft struct {
	ID            uuid.UUID          `json:"id"`
	TableNumber   int                `json:"table_number"`
	CustomerPhone string             `json:"customer_phone"`
	Items         []domain.OrderItem `json:"items"`
	Notes         string             `json:"notes,omitempty"`
}

func (d OrderDraft) validate() error {
	if d.TableNumber <= 0 {
		return ErrInvalidTable
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}
	for _, it := range d.Items {
		if strings.TrimSpace(it.Name) == "" && it.MenuItemID == uuid.Nil {
			return fmt.Errorf("%w: item needs a menu item id or a name", ErrInvalidOrder)
		}
		if it.Qty < 1 {
			return fmt.Errorf("%w: quantity must be at least 1 for %q", ErrInvalidOrder, it.Name)
		}
		if it.Price <= 0 {
			return fmt.Errorf("%w: price must be positive for %q", ErrInvalidOrder, it.Name)
		}
	}
	return nil
}

// AddOrder records a new pending order. Its total is fixed here from the item prices.
func (s *Store) AddOrder(d OrderDraft) (domain.Order, error) {
	if err := d.validate(); err != nil {
		return domain.Order{}, err
	}
	var created domain.Order
	err := s.update(func() (bool, error) {
		if d.ID != uuid.Nil && s.orderIndex(d.ID) >= 0 {
			return false, fmt.Errorf("%w: order %s already exists", ErrInvalidOrder, d.ID)
		}
		now := s.stamp()
		items := make([]domain.OrderItem, len(d.Items))
		for i, it := range d.Items {
			if it.ID == uuid.Nil {
				it.ID = uuid.New()
			}
			items[i] = it
		}
		o := domain.Order{
			ID:            d.ID,
			TableNumber:   d.TableNumber,
			CustomerPhone: d.CustomerPhone,
			Items:         items,
			Status:        domain.StatusPending,
			Total:         domain.ItemsTotal(items),
			Notes:         d.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if o.ID == uuid.Nil {
			o.ID = uuid.New()
		}
		s.orders = append(s.orders, o)
		created = cloneOrder(o)
		return true, nil
	})
	return created, err
}

// UpdateOrderStatus moves a single order through the status machine. Bills are not touched.
// Setting the current status again succeeds without a change.
func (s *Store) UpdateOrderStatus(id uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	var updated domain.Order
	err := s.update(func() (bool, error) {
		i := s.orderIndex(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		o := &s.orders[i]
		if err := s.policy.Check(o.Status, status); err != nil {
			return false, err
		}
		if o.Status == status {
			updated = cloneOrder(*o)
			return false, nil
		}
		o.Status = status
		o.UpdatedAt = s.stamp()
		updated = cloneOrder(*o)
		return true, nil
	})
	return updated, err
}

// Policy returns the transition policy in force.
func (s *Store) Policy() domain.TransitionPolicy {
	return s.policy
}
