package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/tablepos/internal/domain"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const menuColumns = `id, name, price, category, available, description, image`

func (r *postgresRepo) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []domain.MenuItem{}
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Category, &m.Available, &m.Description, &m.Image); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *postgresRepo) GetMenuItem(ctx context.Context, id uuid.UUID) (domain.MenuItem, error) {
	var m domain.MenuItem
	err := r.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id=$1`, id).
		Scan(&m.ID, &m.Name, &m.Price, &m.Category, &m.Available, &m.Description, &m.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrMenuItemNotFound
	}
	return m, err
}

func (r *postgresRepo) CreateMenuItem(ctx context.Context, m domain.MenuItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO menu_items (`+menuColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Name, m.Price, m.Category, m.Available, m.Description, m.Image)
	return err
}

func (r *postgresRepo) UpdateMenuItem(ctx context.Context, m domain.MenuItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name=$2, price=$3, category=$4, available=$5, description=$6, image=$7
		WHERE id=$1`,
		m.ID, m.Name, m.Price, m.Category, m.Available, m.Description, m.Image)
	return affected(res, err, ErrMenuItemNotFound)
}

func (r *postgresRepo) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id=$1`, id)
	return affected(res, err, ErrMenuItemNotFound)
}

func (r *postgresRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cats := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *postgresRepo) GetCategory(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name, sort_order FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCategoryNotFound
	}
	return c, err
}

func (r *postgresRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, sort_order) VALUES ($1,$2,$3)`, c.ID, c.Name, c.SortOrder)
	return uniqueViolation(err)
}

func (r *postgresRepo) UpdateCategory(ctx context.Context, c domain.Category) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name=$2, sort_order=$3 WHERE id=$1`, c.ID, c.Name, c.SortOrder)
	return affected(res, uniqueViolation(err), ErrCategoryNotFound)
}

func (r *postgresRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, id)
	return affected(res, err, ErrCategoryNotFound)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func affected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrCategoryExists
	}
	return err
}
