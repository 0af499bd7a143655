package customer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgemunganga/tablepos/internal/domain"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const columns = `phone, name, total_orders, total_spent, points, last_visit`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM customers ORDER BY last_visit DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Customer{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Get(ctx context.Context, phone string) (domain.Customer, error) {
	return one(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM customers WHERE phone=$1`, phone))
}

func (r *postgresRepo) RecordVisit(ctx context.Context, phone, name string, at time.Time) (domain.Customer, error) {
	return one(r.db.QueryRowContext(ctx, `
		INSERT INTO customers (phone, name, total_orders, last_visit)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (phone) DO UPDATE
		SET total_orders = customers.total_orders + 1,
		    last_visit = EXCLUDED.last_visit,
		    name = CASE WHEN EXCLUDED.name = '' THEN customers.name ELSE EXCLUDED.name END
		RETURNING `+columns, phone, name, at))
}

func (r *postgresRepo) UpdateName(ctx context.Context, phone, name string) (domain.Customer, error) {
	return one(r.db.QueryRowContext(ctx,
		`UPDATE customers SET name=$2 WHERE phone=$1 RETURNING `+columns, phone, name))
}

func (r *postgresRepo) Redeem(ctx context.Context, phone string, points int) (domain.Customer, error) {
	return one(r.db.QueryRowContext(ctx,
		`UPDATE customers SET points = GREATEST(points - $2, 0) WHERE phone=$1 RETURNING `+columns, phone, points))
}

func (r *postgresRepo) Delete(ctx context.Context, phone string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE phone=$1`, phone)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type scanner interface{ Scan(dest ...any) error }

func scan(row scanner) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.Phone, &c.Name, &c.TotalOrders, &c.TotalSpent, &c.Points, &c.LastVisit)
	return c, err
}

func one(row *sql.Row) (domain.Customer, error) {
	c, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCustomerNotFound
	}
	return c, err
}
