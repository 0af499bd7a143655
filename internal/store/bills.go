package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

// CreateBill returns the active bill of table, attaching phone to it when new.
// Only when the table has no active bill is a fresh, empty one opened.
func (s *Store) CreateBill(table int, phone string) (uuid.UUID, error) {
	return s.CreateBillWithID(uuid.Nil, table, phone)
}

// CreateBillWithID is CreateBill with a caller-chosen id for a newly opened bill.
// The id is ignored when the table already has an active bill.
func (s *Store) CreateBillWithID(id uuid.UUID, table int, phone string) (uuid.UUID, error) {
	if table <= 0 {
		return uuid.Nil, ErrInvalidTable
	}
	phone = strings.TrimSpace(phone)
	var billID uuid.UUID
	err := s.update(func() (bool, error) {
		if i := s.activeBillIndex(table); i >= 0 {
			b := &s.bills[i]
			billID = b.ID
			if phone == "" || b.HasPhone(phone) {
				return false, nil
			}
			b.CustomerPhones = append(b.CustomerPhones, phone)
			return true, nil
		}
		if id == uuid.Nil {
			id = uuid.New()
		} else if s.billIndex(id) >= 0 {
			return false, fmt.Errorf("%w: %s", ErrBillExists, id)
		}
		b := domain.Bill{
			ID:             id,
			TableNumber:    table,
			CustomerPhones: []string{},
			Orders:         []domain.Order{},
			Status:         domain.BillActive,
			CreatedAt:      s.stamp(),
		}
		if phone != "" {
			b.CustomerPhones = append(b.CustomerPhones, phone)
		}
		s.bills = append(s.bills, b)
		billID = id
		return true, nil
	})
	return billID, err
}

// AddOrderToBill appends order to the bill and recomputes subtotal and total.
// Adding an order that is already on the bill changes nothing; an order placed
// for another table is rejected.
func (s *Store) AddOrderToBill(billID uuid.UUID, order domain.Order) error {
	return s.update(func() (bool, error) {
		i := s.billIndex(billID)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
		}
		b := &s.bills[i]
		if b.Status == domain.BillPaid {
			return false, fmt.Errorf("%w: %s", ErrBillPaid, billID)
		}
		if b.HasOrder(order.ID) {
			return false, nil
		}
		if order.TableNumber != b.TableNumber {
			return false, fmt.Errorf("%w: order table %d, bill table %d", ErrWrongTable, order.TableNumber, b.TableNumber)
		}
		b.Orders = append(b.Orders, cloneOrder(order))
		recompute(b)
		return true, nil
	})
}

func recompute(b *domain.Bill) {
	sub := 0
	for _, o := range b.Orders {
		sub += o.Total
	}
	b.Subtotal = sub
	b.Total = sub - b.Discount
	if b.Total < 0 {
		b.Total = 0
	}
}

// PayBill settles an active bill in one step: the bill becomes paid, a transaction is
// written, every order on the bill becomes paid and each phone on the bill earns
// loyalty points for the paid total.
func (s *Store) PayBill(billID uuid.UUID, method domain.PaymentMethod, discount int) (domain.Transaction, error) {
	if !method.Valid() {
		return domain.Transaction{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	var tx domain.Transaction
	err := s.update(func() (bool, error) {
		i := s.billIndex(billID)
		if i < 0 {
			return false, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
		}
		b := &s.bills[i]
		if b.Status == domain.BillPaid {
			return false, fmt.Errorf("%w: %s", ErrBillPaid, billID)
		}
		if discount < 0 || discount > b.Subtotal {
			return false, fmt.Errorf("%w: %d on subtotal %d", ErrInvalidDiscount, discount, b.Subtotal)
		}

		now := s.stamp()
		paidAt := now
		b.Status = domain.BillPaid
		b.Discount = discount
		b.Total = b.Subtotal - discount
		b.PaymentMethod = method
		b.PaidAt = &paidAt

		var items []domain.OrderItem
		for j := range b.Orders {
			b.Orders[j].Status = domain.StatusPaid
			b.Orders[j].UpdatedAt = now
			items = append(items, b.Orders[j].Items...)
			if k := s.orderIndex(b.Orders[j].ID); k >= 0 {
				s.orders[k].Status = domain.StatusPaid
				s.orders[k].UpdatedAt = now
			}
		}

		tx = domain.Transaction{
			ID:             uuid.New(),
			BillID:         b.ID,
			TableNumber:    b.TableNumber,
			CustomerPhones: cloneSlice(b.CustomerPhones, nil),
			Total:          b.Total,
			Discount:       discount,
			PaymentMethod:  method,
			PaidAt:         now,
			Items:          cloneSlice(items, nil),
		}
		s.transactions = append(s.transactions, tx)

		points := domain.LoyaltyPointsFor(b.Total)
		for _, phone := range b.CustomerPhones {
			c := s.customerFor(phone, now)
			c.Points += points
			c.TotalSpent += b.Total
		}
		tx = cloneTransaction(tx)
		return true, nil
	})
	return tx, err
}
