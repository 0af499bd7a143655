package waitercall

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/tablepos/internal/domain"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const callColumns = `id, table_number, customer_phone, status, created_at, acknowledged_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanCall(row rowScanner) (domain.WaiterCall, error) {
	var c domain.WaiterCall
	var ack sql.NullTime
	if err := row.Scan(&c.ID, &c.TableNumber, &c.CustomerPhone, &c.Status, &c.CreatedAt, &ack); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WaiterCall{}, ErrCallNotFound
		}
		return domain.WaiterCall{}, err
	}
	if ack.Valid {
		t := ack.Time
		c.AcknowledgedAt = &t
	}
	return c, nil
}

func (r *postgresRepo) List(ctx context.Context, pendingOnly bool) ([]domain.WaiterCall, error) {
	q := `SELECT ` + callColumns + ` FROM waiter_calls`
	args := []any{}
	if pendingOnly {
		q += ` WHERE status=$1`
		args = append(args, domain.CallPending)
	}
	q += ` ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.WaiterCall{}
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Get(ctx context.Context, id uuid.UUID) (domain.WaiterCall, error) {
	return scanCall(r.db.QueryRowContext(ctx, `SELECT `+callColumns+` FROM waiter_calls WHERE id=$1`, id))
}

func (r *postgresRepo) PendingForTable(ctx context.Context, table int) (domain.WaiterCall, error) {
	return scanCall(r.db.QueryRowContext(ctx, `
		SELECT `+callColumns+` FROM waiter_calls
		WHERE table_number=$1 AND status=$2
		ORDER BY created_at ASC LIMIT 1`, table, domain.CallPending))
}

func (r *postgresRepo) Create(ctx context.Context, c domain.WaiterCall) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO waiter_calls (`+callColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING`,
		c.ID, c.TableNumber, c.CustomerPhone, c.Status, c.CreatedAt, c.AcknowledgedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *postgresRepo) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) (domain.WaiterCall, error) {
	return scanCall(r.db.QueryRowContext(ctx, `
		UPDATE waiter_calls
		SET status=$2, acknowledged_at=COALESCE(acknowledged_at, $3)
		WHERE id=$1
		RETURNING `+callColumns, id, domain.CallAcknowledged, at))
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waiter_calls WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCallNotFound
	}
	return nil
}
