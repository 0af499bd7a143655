package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/tablepos/internal/domain"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, table_number, customer_phone, items, status, total, notes, created_at, updated_at`

func (r *postgresRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) GetOrder(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOrderNotFound
	}
	return o, err
}

func (r *postgresRepo) CreateOrder(ctx context.Context, o domain.Order) (bool, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return false, fmt.Errorf("encode items: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO NOTHING`,
		o.ID, o.TableNumber, o.CustomerPhone, items, o.Status, o.Total, o.Notes, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("insert order: %w", err)
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`, to, at, id, from)
	if err := affected(res, err); !errors.Is(err, ErrOrderNotFound) {
		return err
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrStatusChanged
	}
	return ErrOrderNotFound
}

func (r *postgresRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET notes=$1, updated_at=$2 WHERE id=$3`, notes, at, id)
	return affected(res, err)
}

func (r *postgresRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id=$1`, id)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrOrderBilled
	}
	return affected(res, err)
}

func (r *postgresRepo) MenuPrices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]MenuPrice, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price, available FROM menu_items WHERE id = ANY($1::uuid[])`, pq.Array(keys))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]MenuPrice, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var p MenuPrice
		if err := rows.Scan(&id, &p.Name, &p.Price, &p.Available); err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

type scanner interface{ Scan(dest ...any) error }

func scanOrder(row scanner) (domain.Order, error) {
	var o domain.Order
	var items []byte
	if err := row.Scan(&o.ID, &o.TableNumber, &o.CustomerPhone, &items, &o.Status, &o.Total,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return o, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	return o, nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
