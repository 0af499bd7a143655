package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

func validateMenuItem(m domain.MenuItem) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMenuItem)
	}
	if m.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidMenuItem)
	}
	return nil
}

// AddMenuItem appends item, assigning an id when it has none.
func (s *Store) AddMenuItem(item domain.MenuItem) (domain.MenuItem, error) {
	if err := validateMenuItem(item); err != nil {
		return domain.MenuItem{}, err
	}
	err := s.update(func() (bool, error) {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		} else if s.menuIndex(item.ID) >= 0 {
			return false, fmt.Errorf("%w: id %s already used", ErrInvalidMenuItem, item.ID)
		}
		s.menu = append(s.menu, item)
		return true, nil
	})
	return item, err
}

// UpdateMenuItem replaces the item with the same id. Existing orders keep their snapshots.
func (s *Store) UpdateMenuItem(item domain.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}
	return s.update(func() (bool, error) {
		i := s.menuIndex(item.ID)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrMenuItemNotFound, item.ID)
		}
		if s.menu[i] == item {
			return false, nil
		}
		s.menu[i] = item
		return true, nil
	})
}

// DeleteMenuItem removes the item from the menu.
func (s *Store) DeleteMenuItem(id uuid.UUID) error {
	return s.update(func() (bool, error) {
		i := s.menuIndex(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrMenuItemNotFound, id)
		}
		s.menu = append(s.menu[:i:i], s.menu[i+1:]...)
		return true, nil
	})
}

// ToggleAvailability flips whether the item can be ordered.
func (s *Store) ToggleAvailability(id uuid.UUID) (domain.MenuItem, error) {
	var out domain.MenuItem
	err := s.update(func() (bool, error) {
		i := s.menuIndex(id)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrMenuItemNotFound, id)
		}
		s.menu[i].Available = !s.menu[i].Available
		out = s.menu[i]
		return true, nil
	})
	return out, err
}

// AvailableMenu lists the items customers may order.
func (s *Store) AvailableMenu() []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.MenuItem
	for _, m := range s.menu {
		if m.Available {
			out = append(out, m)
		}
	}
	return out
}
