package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// customerFor returns the record for phone, creating an empty one if missing.
// Callers hold the write lock.
func (s *Store) customerFor(phone string, now time.Time) *domain.Customer {
	if i := s.customerIndex(phone); i >= 0 {
		return &s.customers[i]
	}
	s.customers = append(s.customers, domain.Customer{Phone: phone, LastVisit: now})
	return &s.customers[len(s.customers)-1]
}

// AddOrUpdateCustomer records a visit: a known phone gets its visit count and last visit
// bumped, an unknown phone is created with one visit. A non-empty name replaces the old one.
func (s *Store) AddOrUpdateCustomer(phone, name string) (domain.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.Customer{}, ErrInvalidPhone
	}
	var out domain.Customer
	err := s.update(func() (bool, error) {
		now := s.stamp()
		c := s.customerFor(phone, now)
		c.TotalOrders++
		c.LastVisit = now
		if name = strings.TrimSpace(name); name != "" {
			c.Name = name
		}
		out = *c
		return true, nil
	})
	return out, err
}

// AddLoyaltyPoints credits points to an existing customer.
func (s *Store) AddLoyaltyPoints(phone string, points int) (domain.Customer, error) {
	if points < 0 {
		return domain.Customer{}, ErrInvalidPoints
	}
	var out domain.Customer
	err := s.update(func() (bool, error) {
		i := s.customerIndex(phone)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrCustomerNotFound, phone)
		}
		s.customers[i].Points += points
		out = s.customers[i]
		return points > 0, nil
	})
	return out, err
}

// RedeemLoyaltyPoints debits points; the balance never drops below zero.
func (s *Store) RedeemLoyaltyPoints(phone string, points int) (domain.Customer, error) {
	if points < 0 {
		return domain.Customer{}, ErrInvalidPoints
	}
	var out domain.Customer
	err := s.update(func() (bool, error) {
		i := s.customerIndex(phone)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrCustomerNotFound, phone)
		}
		c := &s.customers[i]
		before := c.Points
		c.Points -= points
		if c.Points < 0 {
			c.Points = 0
		}
		out = *c
		return c.Points != before, nil
	})
	return out, err
}
