package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

// Service defines bill and transaction business logic.
type Service interface {
	ListBills(ctx context.Context) ([]domain.Bill, error)
	GetBill(ctx context.Context, id uuid.UUID) (domain.Bill, error)

	// OpenBill returns the table's active bill, attaching the phone to it, or opens a new one.
	OpenBill(ctx context.Context, req OpenBillRequest) (domain.Bill, error)

	// AddOrder appends an order to an active bill and recomputes its totals.
	AddOrder(ctx context.Context, billID uuid.UUID, req AddOrderRequest) (domain.Bill, error)

	// PayBill settles a bill: bill paid, transaction written, orders paid and loyalty
	// points credited to every phone on the bill, all in one database transaction.
	PayBill(ctx context.Context, billID uuid.UUID, req PayRequest) (domain.Transaction, error)

	// VoidBill removes an active bill that has no orders.
	VoidBill(ctx context.Context, billID uuid.UUID) error

	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

type service struct {
	repo   Repository
	notify *syncchan.Notifier
	now    func() time.Time
}

func NewService(repo Repository, notify *syncchan.Notifier) Service {
	return &service{repo: repo, notify: notify, now: time.Now}
}

func (s *service) ListBills(ctx context.Context) ([]domain.Bill, error) {
	return s.repo.ListBills(ctx)
}

func (s *service) GetBill(ctx context.Context, id uuid.UUID) (domain.Bill, error) {
	return s.repo.GetBill(ctx, id)
}

func (s *service) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

func (s *service) OpenBill(ctx context.Context, req OpenBillRequest) (domain.Bill, error) {
	phone := strings.TrimSpace(req.CustomerPhone)
	var (
		bill    domain.Bill
		changed bool
		err     error
	)
	// A concurrent open on the same table loses on the unique index; the retry joins the winner.
	for attempt := 0; attempt < 2; attempt++ {
		err = s.repo.WithTx(ctx, func(tx Tx) error {
			changed = false
			b, ok, err := tx.ActiveBill(ctx, req.TableNumber)
			if err != nil {
				return err
			}
			if ok {
				bill = b
				if phone == "" || b.HasPhone(phone) {
					return nil
				}
				bill.CustomerPhones = append(bill.CustomerPhones, phone)
				changed = true
				return tx.SaveBill(ctx, bill)
			}

			bill = domain.Bill{
				ID:             req.ID,
				TableNumber:    req.TableNumber,
				CustomerPhones: []string{},
				Orders:         []domain.Order{},
				Status:         domain.BillActive,
				CreatedAt:      s.now().UTC(),
			}
			if bill.ID == uuid.Nil {
				bill.ID = uuid.New()
			}
			if phone != "" {
				bill.CustomerPhones = append(bill.CustomerPhones, phone)
			}
			changed = true
			return tx.InsertBill(ctx, bill)
		})
		if !errors.Is(err, errActiveBillCreated) {
			break
		}
	}
	if err != nil {
		return domain.Bill{}, err
	}
	if changed {
		s.notify.Notify(ctx, syncchan.EventBillUpdate)
	}
	return bill, nil
}

func (s *service) AddOrder(ctx context.Context, billID uuid.UUID, req AddOrderRequest) (domain.Bill, error) {
	var (
		bill    domain.Bill
		changed bool
	)
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		b, err := tx.LockBill(ctx, billID)
		if err != nil {
			return err
		}
		bill = b
		if b.Status == domain.BillPaid {
			return ErrBillPaid
		}
		if b.HasOrder(req.OrderID) {
			return nil
		}
		o, err := tx.GetOrder(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if o.TableNumber != b.TableNumber {
			return fmt.Errorf("%w: order table %d, bill table %d", ErrWrongTable, o.TableNumber, b.TableNumber)
		}
		if err := tx.LinkOrder(ctx, b.ID, o.ID); err != nil {
			return err
		}
		bill.Orders = append(bill.Orders, o)
		recompute(&bill)
		changed = true
		return tx.SaveBill(ctx, bill)
	})
	if err != nil {
		return domain.Bill{}, err
	}
	if changed {
		s.notify.Notify(ctx, syncchan.EventBillUpdate)
	}
	return bill, nil
}

func (s *service) PayBill(ctx context.Context, billID uuid.UUID, req PayRequest) (domain.Transaction, error) {
	if !req.PaymentMethod.Valid() {
		return domain.Transaction{}, fmt.Errorf("%w: %q", ErrInvalidPayment, req.PaymentMethod)
	}
	var txn domain.Transaction
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		b, err := tx.LockBill(ctx, billID)
		if err != nil {
			return err
		}
		if b.Status == domain.BillPaid {
			return ErrBillPaid
		}
		if req.Discount < 0 || req.Discount > b.Subtotal {
			return fmt.Errorf("%w: %d on subtotal %d", ErrInvalidDiscount, req.Discount, b.Subtotal)
		}

		now := s.now().UTC()
		b.Status = domain.BillPaid
		b.Discount = req.Discount
		b.Total = b.Subtotal - req.Discount
		b.PaymentMethod = req.PaymentMethod
		b.PaidAt = &now
		if err := tx.SaveBill(ctx, b); err != nil {
			return err
		}

		ids := make([]uuid.UUID, len(b.Orders))
		items := []domain.OrderItem{}
		for i, o := range b.Orders {
			ids[i] = o.ID
			items = append(items, o.Items...)
		}
		if err := tx.SetOrderStatus(ctx, ids, domain.StatusPaid, now); err != nil {
			return err
		}

		txn = domain.Transaction{
			ID:             uuid.New(),
			BillID:         b.ID,
			TableNumber:    b.TableNumber,
			CustomerPhones: append([]string{}, b.CustomerPhones...),
			Total:          b.Total,
			Discount:       b.Discount,
			PaymentMethod:  b.PaymentMethod,
			PaidAt:         now,
			Items:          items,
		}
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}

		points := domain.LoyaltyPointsFor(b.Total)
		for _, phone := range b.CustomerPhones {
			if err := tx.RewardCustomer(ctx, phone, points, b.Total, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	s.notify.Notify(ctx, syncchan.EventBillUpdate, syncchan.EventCustomerUpdate)
	return txn, nil
}

func (s *service) VoidBill(ctx context.Context, billID uuid.UUID) error {
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		b, err := tx.LockBill(ctx, billID)
		if err != nil {
			return err
		}
		if b.Status == domain.BillPaid {
			return ErrBillPaid
		}
		if len(b.Orders) > 0 {
			return ErrBillNotEmpty
		}
		return tx.DeleteBill(ctx, billID)
	})
	if err != nil {
		return err
	}
	s.notify.Notify(ctx, syncchan.EventBillUpdate)
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

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
