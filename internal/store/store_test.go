package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

var fixedNow = time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
}

func item(name string, qty, price int) domain.OrderItem {
	return domain.OrderItem{MenuItemID: uuid.New(), Name: name, Qty: qty, Price: price}
}

func mustOrder(t *testing.T, s *Store, table int, phone string, items ...domain.OrderItem) domain.Order {
	t.Helper()
	o, err := s.AddOrder(OrderDraft{TableNumber: table, CustomerPhone: phone, Items: items})
	if err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	return o
}

func activeBillsFor(s *Store, table int) int {
	n := 0
	for _, b := range s.Bills() {
		if b.TableNumber == table && b.Status == domain.BillActive {
			n++
		}
	}
	return n
}

func TestCreateBill_OneActiveBillPerTable(t *testing.T) {
	s := newTestStore(t)

	first, err := s.CreateBill(4, "9800000001")
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	second, err := s.CreateBill(4, "9800000002")
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same bill for table 4, got %s and %s", first, second)
	}
	if n := activeBillsFor(s, 4); n != 1 {
		t.Fatalf("expected 1 active bill for table 4, got %d", n)
	}

	b, _ := s.Bill(first)
	if len(b.CustomerPhones) != 2 || !b.HasPhone("9800000001") || !b.HasPhone("9800000002") {
		t.Errorf("expected union of both phones, got %v", b.CustomerPhones)
	}

	// same phone again does not duplicate it
	if _, err := s.CreateBill(4, "9800000001"); err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	b, _ = s.Bill(first)
	if len(b.CustomerPhones) != 2 {
		t.Errorf("phone duplicated: %v", b.CustomerPhones)
	}
}

func TestCreateBill_NewBillAfterPayment(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateBill(2, "")
	o := mustOrder(t, s, 2, "", item("Tea", 1, 50))
	if err := s.AddOrderToBill(id, o); err != nil {
		t.Fatalf("AddOrderToBill: %v", err)
	}
	if _, err := s.PayBill(id, domain.PaymentCash, 0); err != nil {
		t.Fatalf("PayBill: %v", err)
	}
	next, err := s.CreateBill(2, "")
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if next == id {
		t.Fatalf("paid bill reused for a new tab")
	}
	if n := activeBillsFor(s, 2); n != 1 {
		t.Errorf("expected 1 active bill, got %d", n)
	}
}

func TestCreateBill_RejectsBadTable(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateBill(0, "x"); !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}
}

func TestAddOrderToBill_SubtotalIsOrderIndependent(t *testing.T) {
	s := newTestStore(t)
	a1 := mustOrder(t, s, 1, "", item("Momo", 2, 30))
	b1 := mustOrder(t, s, 1, "", item("Coffee", 1, 45))
	a7 := mustOrder(t, s, 7, "", item("Momo", 2, 30))
	b7 := mustOrder(t, s, 7, "", item("Coffee", 1, 45))

	ab, _ := s.CreateBill(1, "")
	_ = s.AddOrderToBill(ab, a1)
	_ = s.AddOrderToBill(ab, b1)

	ba, _ := s.CreateBill(7, "")
	_ = s.AddOrderToBill(ba, b7)
	_ = s.AddOrderToBill(ba, a7)

	x, _ := s.Bill(ab)
	y, _ := s.Bill(ba)
	if x.Subtotal != y.Subtotal || x.Subtotal != 105 {
		t.Errorf("subtotals differ: [A,B]=%d [B,A]=%d, want 105", x.Subtotal, y.Subtotal)
	}
	if x.Total != x.Subtotal {
		t.Errorf("total %d != subtotal %d with no discount", x.Total, x.Subtotal)
	}
}

func TestAddOrderToBill_Errors(t *testing.T) {
	s := newTestStore(t)
	o := mustOrder(t, s, 1, "", item("Tea", 1, 20))

	if err := s.AddOrderToBill(uuid.New(), o); !errors.Is(err, ErrBillNotFound) {
		t.Errorf("expected ErrBillNotFound, got %v", err)
	}

	id, _ := s.CreateBill(1, "")
	_ = s.AddOrderToBill(id, o)
	before := s.Version()
	if err := s.AddOrderToBill(id, o); err != nil {
		t.Errorf("re-adding an order should be a no-op, got %v", err)
	}
	if s.Version() != before {
		t.Errorf("re-adding an order changed the store")
	}

	elsewhere := mustOrder(t, s, 7, "", item("Tea", 1, 30))
	before = s.Version()
	if err := s.AddOrderToBill(id, elsewhere); !errors.Is(err, ErrWrongTable) || !errors.Is(err, domain.ErrInvalid) {
		t.Errorf("expected ErrWrongTable, got %v", err)
	}
	if b, _ := s.Bill(id); b.Subtotal != 20 || len(b.Orders) != 1 || s.Version() != before {
		t.Errorf("order from another table changed the bill: subtotal=%d orders=%d", b.Subtotal, len(b.Orders))
	}

	_, _ = s.PayBill(id, domain.PaymentCash, 0)
	other := mustOrder(t, s, 1, "", item("Tea", 1, 20))
	if err := s.AddOrderToBill(id, other); !errors.Is(err, ErrBillPaid) {
		t.Errorf("expected ErrBillPaid, got %v", err)
	}
}

func TestPayBill_DiscountTransactionAndOrders(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.AddOrUpdateCustomer("9801", "")
	o1 := mustOrder(t, s, 3, "9801", item("Set", 1, 60))
	o2 := mustOrder(t, s, 3, "9801", item("Juice", 1, 40))
	id, _ := s.CreateBill(3, "9801")
	_ = s.AddOrderToBill(id, o1)
	_ = s.AddOrderToBill(id, o2)

	tx, err := s.PayBill(id, domain.PaymentCash, 5)
	if err != nil {
		t.Fatalf("PayBill: %v", err)
	}
	if tx.Total != 95 || tx.Discount != 5 || tx.BillID != id {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if len(tx.Items) != 2 {
		t.Errorf("expected flattened items, got %d", len(tx.Items))
	}

	b, _ := s.Bill(id)
	if b.Status != domain.BillPaid || b.Total != 95 || b.PaidAt == nil || b.PaymentMethod != domain.PaymentCash {
		t.Errorf("unexpected bill after payment %+v", b)
	}
	for _, bo := range b.Orders {
		if bo.Status != domain.StatusPaid {
			t.Errorf("bill order %s status = %s, want paid", bo.ID, bo.Status)
		}
	}
	for _, id := range []uuid.UUID{o1.ID, o2.ID} {
		o, _ := s.Order(id)
		if o.Status != domain.StatusPaid {
			t.Errorf("order %s status = %s, want paid", id, o.Status)
		}
	}
	if n := len(s.Transactions()); n != 1 {
		t.Errorf("expected 1 transaction, got %d", n)
	}

	c, _ := s.Customer("9801")
	if c.Points != 9 {
		t.Errorf("points = %d, want 9", c.Points)
	}
	if c.TotalSpent != 95 {
		t.Errorf("total spent = %d, want 95", c.TotalSpent)
	}
}

func TestPayBill_SecondPaymentIsRejected(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateBill(5, "")
	_ = s.AddOrderToBill(id, mustOrder(t, s, 5, "", item("Tea", 2, 25)))
	if _, err := s.PayBill(id, domain.PaymentFonepay, 0); err != nil {
		t.Fatalf("PayBill: %v", err)
	}
	before, _ := s.Bill(id)
	version := s.Version()

	if _, err := s.PayBill(id, domain.PaymentCash, 10); !errors.Is(err, ErrBillPaid) {
		t.Fatalf("expected ErrBillPaid, got %v", err)
	}
	after, _ := s.Bill(id)
	if after.PaymentMethod != before.PaymentMethod || after.Discount != before.Discount || after.Total != before.Total {
		t.Errorf("bill changed by second payment: %+v -> %+v", before, after)
	}
	if n := len(s.Transactions()); n != 1 {
		t.Errorf("expected 1 transaction, got %d", n)
	}
	if s.Version() != version {
		t.Errorf("failed payment bumped the version")
	}
}

func TestPayBill_Validation(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.CreateBill(6, "")
	_ = s.AddOrderToBill(id, mustOrder(t, s, 6, "", item("Tea", 1, 30)))

	tests := []struct {
		name     string
		bill     uuid.UUID
		method   domain.PaymentMethod
		discount int
		want     error
	}{
		{"missing bill", uuid.New(), domain.PaymentCash, 0, ErrBillNotFound},
		{"negative discount", id, domain.PaymentCash, -1, ErrInvalidDiscount},
		{"discount above subtotal", id, domain.PaymentCash, 31, ErrInvalidDiscount},
		{"unknown method", id, domain.PaymentMethod("cheque"), 0, ErrInvalidPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.PayBill(tt.bill, tt.method, tt.discount); !errors.Is(err, tt.want) {
				t.Fatalf("PayBill() = %v, want %v", err, tt.want)
			}
		})
	}
	b, _ := s.Bill(id)
	if b.Status != domain.BillActive {
		t.Errorf("bill should still be active after rejected payments")
	}
	if len(s.Transactions()) != 0 {
		t.Errorf("no transaction should have been written")
	}
}

func TestUpdateOrderStatus_DoesNotTouchBills(t *testing.T) {
	s := newTestStore(t)
	o := mustOrder(t, s, 8, "", item("Tea", 1, 30))
	id, _ := s.CreateBill(8, "")
	_ = s.AddOrderToBill(id, o)
	billBefore, _ := s.Bill(id)

	if _, err := s.UpdateOrderStatus(o.ID, domain.StatusPreparing); err != nil {
		t.Fatalf("to preparing: %v", err)
	}
	got, err := s.UpdateOrderStatus(o.ID, domain.StatusServed)
	if err != nil {
		t.Fatalf("to served: %v", err)
	}
	if got.Status != domain.StatusServed {
		t.Errorf("status = %s, want served", got.Status)
	}
	billAfter, _ := s.Bill(id)
	if billAfter.Orders[0].Status != billBefore.Orders[0].Status || billAfter.Total != billBefore.Total {
		t.Errorf("bill was modified by a status update")
	}
}

func TestUpdateOrderStatus_RejectsBackwardsAndUnknown(t *testing.T) {
	s := newTestStore(t)
	o := mustOrder(t, s, 1, "", item("Tea", 1, 30))
	_, _ = s.UpdateOrderStatus(o.ID, domain.StatusReady)

	if _, err := s.UpdateOrderStatus(o.ID, domain.StatusPending); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := s.UpdateOrderStatus(o.ID, domain.StatusCancelled); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("cancel from ready should be rejected by default, got %v", err)
	}
	if _, err := s.UpdateOrderStatus(uuid.New(), domain.StatusReady); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
	got, _ := s.Order(o.ID)
	if got.Status != domain.StatusReady {
		t.Errorf("status changed to %s after rejected transitions", got.Status)
	}
}

func TestUpdateOrderStatus_CustomCancelPolicy(t *testing.T) {
	s := New(WithPolicy(domain.NewTransitionPolicy(domain.StatusPending, domain.StatusPreparing)))
	o, _ := s.AddOrder(OrderDraft{TableNumber: 1, Items: []domain.OrderItem{item("Tea", 1, 10)}})
	_, _ = s.UpdateOrderStatus(o.ID, domain.StatusPreparing)
	if _, err := s.UpdateOrderStatus(o.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel from preparing should be allowed: %v", err)
	}
}

func TestLoyalty_RedeemFlooredAtZero(t *testing.T) {
	s := newTestStore(t)
	_, _ = s.AddOrUpdateCustomer("9802", "Asha")
	if _, err := s.AddLoyaltyPoints("9802", 9); err != nil {
		t.Fatalf("AddLoyaltyPoints: %v", err)
	}
	c, err := s.RedeemLoyaltyPoints("9802", 1000)
	if err != nil {
		t.Fatalf("RedeemLoyaltyPoints: %v", err)
	}
	if c.Points != 0 {
		t.Errorf("points = %d, want 0", c.Points)
	}
	if _, err := s.RedeemLoyaltyPoints("unknown", 1); !errors.Is(err, ErrCustomerNotFound) {
		t.Errorf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := s.AddLoyaltyPoints("9802", -3); !errors.Is(err, ErrInvalidPoints) {
		t.Errorf("expected ErrInvalidPoints, got %v", err)
	}
}

func TestAddOrUpdateCustomer_CountsVisits(t *testing.T) {
	s := newTestStore(t)
	c, _ := s.AddOrUpdateCustomer("9803", "")
	if c.TotalOrders != 1 {
		t.Fatalf("new customer visits = %d, want 1", c.TotalOrders)
	}
	c, _ = s.AddOrUpdateCustomer("9803", "Bikash")
	if c.TotalOrders != 2 || c.Name != "Bikash" || !c.LastVisit.Equal(fixedNow) {
		t.Errorf("unexpected customer %+v", c)
	}
	c, _ = s.AddOrUpdateCustomer("9803", "")
	if c.Name != "Bikash" {
		t.Errorf("empty name overwrote existing name")
	}
	if _, err := s.AddOrUpdateCustomer("  ", ""); !errors.Is(err, ErrInvalidPhone) {
		t.Errorf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestAddOrder_Validation(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name  string
		draft OrderDraft
		want  error
	}{
		{"no table", OrderDraft{Items: []domain.OrderItem{item("Tea", 1, 10)}}, ErrInvalidTable},
		{"no items", OrderDraft{TableNumber: 1}, ErrInvalidOrder},
		{"zero qty", OrderDraft{TableNumber: 1, Items: []domain.OrderItem{item("Tea", 0, 10)}}, ErrInvalidOrder},
		{"zero price", OrderDraft{TableNumber: 1, Items: []domain.OrderItem{item("Tea", 1, 0)}}, ErrInvalidOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddOrder(tt.draft); !errors.Is(err, tt.want) {
				t.Fatalf("AddOrder() = %v, want %v", err, tt.want)
			}
		})
	}
	if len(s.Orders()) != 0 {
		t.Errorf("rejected drafts should not be stored")
	}
}

func TestAddOrder_TotalFrozenAtCreation(t *testing.T) {
	s := newTestStore(t)
	m, _ := s.AddMenuItem(domain.MenuItem{Name: "Tea", Price: 30, Available: true})
	o := mustOrder(t, s, 1, "", domain.OrderItem{MenuItemID: m.ID, Name: m.Name, Qty: 2, Price: m.Price})

	m.Price = 50
	if err := s.UpdateMenuItem(m); err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	got, _ := s.Order(o.ID)
	if got.Total != 60 || got.Status != domain.StatusPending || got.CreatedAt.IsZero() {
		t.Errorf("unexpected order after price change %+v", got)
	}
}

func TestSetters_IdempotentReplace(t *testing.T) {
	s := newTestStore(t)
	menu := []domain.MenuItem{{ID: uuid.New(), Name: "Tea", Price: 30, Available: true}}

	if !s.SetMenu(menu) {
		t.Fatalf("first SetMenu should change the store")
	}
	v := s.Version()
	if s.SetMenu(menu) {
		t.Errorf("identical SetMenu reported a change")
	}
	if s.Version() != v {
		t.Errorf("identical SetMenu bumped the version")
	}
	if s.SetOrders(nil) {
		t.Errorf("replacing empty with empty reported a change")
	}

	// the store keeps its own copy
	menu[0].Price = 99
	if got := s.Menu()[0].Price; got != 30 {
		t.Errorf("store aliased caller slice, price = %d", got)
	}
}

func TestOnChange_ReceivesCommittedSnapshots(t *testing.T) {
	s := newTestStore(t)
	var versions []uint64
	stop := s.OnChange(func(snap Snapshot) { versions = append(versions, snap.Version) })

	_, _ = s.CreateBill(1, "")
	_, _ = s.PayBill(uuid.New(), domain.PaymentCash, 0) // fails, no notification
	_, _ = s.AddOrUpdateCustomer("1", "")
	stop()
	_, _ = s.AddOrUpdateCustomer("2", "")

	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Errorf("versions = %v, want [1 2]", versions)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	o := mustOrder(t, s, 2, "98", item("Tea", 1, 30))
	id, _ := s.CreateBill(2, "98")
	_ = s.AddOrderToBill(id, o)
	snap := s.Snapshot()

	r := newTestStore(t)
	r.Restore(snap)
	if r.Version() != snap.Version {
		t.Errorf("version = %d, want %d", r.Version(), snap.Version)
	}
	b, ok := r.ActiveBillForTable(2)
	if !ok || b.ID != id || b.Subtotal != 30 {
		t.Errorf("restored bill mismatch: %+v", b)
	}
	if r.Settings().TableCount == 0 {
		t.Errorf("restored settings should not be empty")
	}
}

func TestTodayStats(t *testing.T) {
	s := newTestStore(t)
	paid := mustOrder(t, s, 1, "", item("Tea", 2, 50))
	id, _ := s.CreateBill(1, "")
	_ = s.AddOrderToBill(id, paid)
	_, _ = s.PayBill(id, domain.PaymentCash, 0)

	open := mustOrder(t, s, 2, "", item("Coffee", 1, 80))
	id2, _ := s.CreateBill(2, "")
	_ = s.AddOrderToBill(id2, open)
	_, _ = s.UpdateOrderStatus(open.ID, domain.StatusPreparing)
	mustOrder(t, s, 3, "", item("Juice", 1, 60))

	old := domain.Transaction{ID: uuid.New(), Total: 500, PaidAt: fixedNow.AddDate(0, 0, -1)}
	s.SetTransactions(append(s.Transactions(), old))

	st := s.GetTodayStats()
	if st.Revenue != 100 || st.Orders != 1 {
		t.Errorf("revenue/orders = %d/%d, want 100/1", st.Revenue, st.Orders)
	}
	if st.ActiveOrders != 2 {
		t.Errorf("active orders = %d, want 2", st.ActiveOrders)
	}
	if st.ActiveTables != 1 {
		t.Errorf("active tables = %d, want 1", st.ActiveTables)
	}
	if n := len(s.GetPendingOrders()); n != 1 {
		t.Errorf("pending orders = %d, want 1", n)
	}
	if n := len(s.GetActiveBills()); n != 1 {
		t.Errorf("active bills = %d, want 1", n)
	}
}

func TestMenuAndFloorOperations(t *testing.T) {
	s := newTestStore(t)
	m, err := s.AddMenuItem(domain.MenuItem{Name: "Pastry", Price: 120, Available: true})
	if err != nil {
		t.Fatalf("AddMenuItem: %v", err)
	}
	toggled, _ := s.ToggleAvailability(m.ID)
	if toggled.Available {
		t.Errorf("toggle did not flip availability")
	}
	if n := len(s.AvailableMenu()); n != 0 {
		t.Errorf("unavailable item listed, got %d", n)
	}
	if err := s.DeleteMenuItem(m.ID); err != nil {
		t.Fatalf("DeleteMenuItem: %v", err)
	}
	if err := s.DeleteMenuItem(m.ID); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("expected ErrMenuItemNotFound, got %v", err)
	}

	call, _ := s.CallWaiter(5, "98")
	if len(s.PendingWaiterCalls()) != 1 {
		t.Fatalf("expected one pending call")
	}
	acked, err := s.AcknowledgeWaiterCall(call.ID)
	if err != nil || acked.AcknowledgedAt == nil || acked.Status != domain.CallAcknowledged {
		t.Fatalf("AcknowledgeWaiterCall = %+v, %v", acked, err)
	}
	if len(s.PendingWaiterCalls()) != 0 {
		t.Errorf("acknowledged call still pending")
	}

	e, err := s.AddExpense(domain.Expense{Amount: 300, Description: "Milk"})
	if err != nil || e.Category != domain.ExpenseOther || e.ID == uuid.Nil {
		t.Errorf("AddExpense = %+v, %v", e, err)
	}
	if _, err := s.AddExpense(domain.Expense{Amount: 0, Description: "x"}); !errors.Is(err, ErrInvalidExpense) {
		t.Errorf("expected ErrInvalidExpense, got %v", err)
	}
}

func TestCallWaiter_OnePendingPerTable(t *testing.T) {
	s := newTestStore(t)
	first, err := s.CallWaiter(3, "98")
	if err != nil {
		t.Fatalf("CallWaiter: %v", err)
	}
	before := s.Version()
	second, err := s.CallWaiter(3, "")
	if err != nil || second.ID != first.ID {
		t.Errorf("second call = %+v, %v; want existing %s", second, err, first.ID)
	}
	if s.Version() != before || len(s.PendingWaiterCalls()) != 1 {
		t.Errorf("repeat call changed the store, pending %d", len(s.PendingWaiterCalls()))
	}

	if other, _ := s.CallWaiter(4, ""); other.ID == first.ID {
		t.Errorf("another table reused the call")
	}
	_, _ = s.AcknowledgeWaiterCall(first.ID)
	if next, _ := s.CallWaiter(3, ""); next.ID == first.ID {
		t.Errorf("acknowledged call was returned as pending")
	}
}

func TestAdoptWaiterCall(t *testing.T) {
	s := newTestStore(t)
	local, _ := s.CallWaiter(2, "")
	remote := domain.WaiterCall{ID: uuid.New(), TableNumber: 2, Status: domain.CallPending, CreatedAt: fixedNow}
	if err := s.AdoptWaiterCall(local.ID, remote); err != nil {
		t.Fatalf("AdoptWaiterCall: %v", err)
	}
	pending := s.PendingWaiterCalls()
	if len(pending) != 1 || pending[0].ID != remote.ID {
		t.Fatalf("pending = %+v, want backend call", pending)
	}

	dup, _ := s.CallWaiter(5, "")
	if err := s.AdoptWaiterCall(dup.ID, remote); err != nil {
		t.Fatalf("AdoptWaiterCall duplicate: %v", err)
	}
	if n := len(s.PendingWaiterCalls()); n != 1 {
		t.Errorf("duplicate kept, pending %d", n)
	}
	if err := s.AdoptWaiterCall(uuid.New(), domain.WaiterCall{ID: uuid.New()}); !errors.Is(err, ErrWaiterCallNotFound) {
		t.Errorf("expected ErrWaiterCallNotFound, got %v", err)
	}
}
