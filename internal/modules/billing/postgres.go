package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/tablepos/internal/domain"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const billColumns = `id, table_number, customer_phones, subtotal, discount, total, status, payment_method, paid_at, created_at`

func (r *postgresRepo) ListBills(ctx context.Context) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+billColumns+` FROM bills ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	bills := []domain.Bill{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[b.ID] = len(bills)
		bills = append(bills, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := r.db.QueryContext(ctx, `
		SELECT bo.bill_id, `+prefixed("o", orderColumns)+`
		FROM bill_orders bo JOIN orders o ON o.id = bo.order_id
		ORDER BY bo.position ASC`)
	if err != nil {
		return nil, err
	}
	defer links.Close()
	for links.Next() {
		var billID uuid.UUID
		o, err := scanOrder(links, &billID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[billID]; ok {
			bills[i].Orders = append(bills[i].Orders, o)
		}
	}
	return bills, links.Err()
}

func (r *postgresRepo) GetBill(ctx context.Context, id uuid.UUID) (domain.Bill, error) {
	return loadBill(ctx, r.db, `SELECT `+billColumns+` FROM bills WHERE id=$1`, id)
}

func (r *postgresRepo) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, bill_id, table_number, customer_phones, total, discount, payment_method, items, paid_at
		FROM transactions ORDER BY paid_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	txs := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		var items []byte
		if err := rows.Scan(&t.ID, &t.BillID, &t.TableNumber, pq.Array(&t.CustomerPhones), &t.Total,
			&t.Discount, &t.PaymentMethod, &items, &t.PaidAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &t.Items); err != nil {
			return nil, fmt.Errorf("decode items of transaction %s: %w", t.ID, err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *postgresRepo) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	if err := fn(&pgTx{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// ── transaction surface ──────────────────────────────────────────────────────

type pgTx struct{ tx *sql.Tx }

func (t *pgTx) ActiveBill(ctx context.Context, table int) (domain.Bill, bool, error) {
	b, err := loadBill(ctx, t.tx,
		`SELECT `+billColumns+` FROM bills WHERE table_number=$1 AND status='active' FOR UPDATE`, table)
	if errors.Is(err, ErrBillNotFound) {
		return domain.Bill{}, false, nil
	}
	return b, err == nil, err
}

func (t *pgTx) LockBill(ctx context.Context, id uuid.UUID) (domain.Bill, error) {
	return loadBill(ctx, t.tx, `SELECT `+billColumns+` FROM bills WHERE id=$1 FOR UPDATE`, id)
}

func (t *pgTx) InsertBill(ctx context.Context, b domain.Bill) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO bills (id, table_number, customer_phones, subtotal, discount, total, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.TableNumber, pq.Array(b.CustomerPhones), b.Subtotal, b.Discount, b.Total, b.Status, b.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if pqErr.Constraint == "bills_one_active_per_table" {
			return errActiveBillCreated
		}
		return fmt.Errorf("%w: %s", ErrBillExists, b.ID)
	}
	return err
}

func (t *pgTx) SaveBill(ctx context.Context, b domain.Bill) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE bills
		SET customer_phones=$2, subtotal=$3, discount=$4, total=$5, status=$6, payment_method=$7, paid_at=$8
		WHERE id=$1`,
		b.ID, pq.Array(b.CustomerPhones), b.Subtotal, b.Discount, b.Total, b.Status, b.PaymentMethod, b.PaidAt)
	return err
}

func (t *pgTx) DeleteBill(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM bills WHERE id=$1`, id)
	return err
}

func (t *pgTx) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	o, err := scanOrder(t.tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id), nil)
	if errors.Is(err, sql.ErrNoRows) {
		return o, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, err
}

func (t *pgTx) LinkOrder(ctx context.Context, billID, orderID uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO bill_orders (bill_id, order_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`, billID, orderID)
	return err
}

func (t *pgTx) SetOrderStatus(ctx context.Context, ids []uuid.UUID, status domain.OrderStatus, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	_, err := t.tx.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id = ANY($3::uuid[])`, status, at, pq.Array(keys))
	return err
}

func (t *pgTx) InsertTransaction(ctx context.Context, txn domain.Transaction) error {
	items, err := json.Marshal(txn.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO transactions
		  (id, bill_id, table_number, customer_phones, total, discount, payment_method, items, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		txn.ID, txn.BillID, txn.TableNumber, pq.Array(txn.CustomerPhones), txn.Total, txn.Discount,
		txn.PaymentMethod, items, txn.PaidAt)
	return err
}

func (t *pgTx) RewardCustomer(ctx context.Context, phone string, points, spent int, at time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO customers (phone, points, total_spent, last_visit)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (phone) DO UPDATE
		SET points = customers.points + EXCLUDED.points,
		    total_spent = customers.total_spent + EXCLUDED.total_spent`,
		phone, points, spent, at)
	return err
}

// ── helpers ──────────────────────────────────────────────────────────────────

const orderColumns = `id, table_number, customer_phone, items, status, total, notes, created_at, updated_at`

type scanner interface{ Scan(dest ...any) error }

func scanBill(row scanner) (domain.Bill, error) {
	var b domain.Bill
	var paidAt sql.NullTime
	if err := row.Scan(&b.ID, &b.TableNumber, pq.Array(&b.CustomerPhones), &b.Subtotal, &b.Discount,
		&b.Total, &b.Status, &b.PaymentMethod, &paidAt, &b.CreatedAt); err != nil {
		return b, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		b.PaidAt = &t
	}
	if b.CustomerPhones == nil {
		b.CustomerPhones = []string{}
	}
	b.Orders = []domain.Order{}
	return b, nil
}

// scanOrder reads an order row, optionally preceded by the owning bill id.
func scanOrder(row scanner, billID *uuid.UUID) (domain.Order, error) {
	var o domain.Order
	var items []byte
	dest := []any{&o.ID, &o.TableNumber, &o.CustomerPhone, &items, &o.Status, &o.Total, &o.Notes, &o.CreatedAt, &o.UpdatedAt}
	if billID != nil {
		dest = append([]any{billID}, dest...)
	}
	if err := row.Scan(dest...); err != nil {
		return o, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	return o, nil
}

func loadBill(ctx context.Context, q queryer, query string, arg any) (domain.Bill, error) {
	b, err := scanBill(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrBillNotFound
	}
	if err != nil {
		return b, err
	}
	rows, err := q.QueryContext(ctx, `
		SELECT `+prefixed("o", orderColumns)+`
		FROM bill_orders bo JOIN orders o ON o.id = bo.order_id
		WHERE bo.bill_id=$1 ORDER BY bo.position ASC`, b.ID)
	if err != nil {
		return b, err
	}
	defer rows.Close()
	for rows.Next() {
		o, err := scanOrder(rows, nil)
		if err != nil {
			return b, err
		}
		b.Orders = append(b.Orders, o)
	}
	return b, rows.Err()
}

func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
