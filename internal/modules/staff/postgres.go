package staff

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

const columns = `id, username, password_hash, role, name, created_at`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Staff, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM staff ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Staff{}
	for rows.Next() {
		var s domain.Staff
		if err := rows.Scan(&s.ID, &s.Username, &s.PasswordHash, &s.Role, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Staff, error) {
	return r.one(ctx, `SELECT `+columns+` FROM staff WHERE id=$1`, id)
}

func (r *postgresRepo) GetByUsername(ctx context.Context, username string) (domain.Staff, error) {
	return r.one(ctx, `SELECT `+columns+` FROM staff WHERE username=$1`, username)
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Staff) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (`+columns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.Username, s.PasswordHash, s.Role, s.Name, s.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrUsernameTaken
	}
	return err
}

func (r *postgresRepo) Update(ctx context.Context, s domain.Staff) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET password_hash=$2, role=$3, name=$4 WHERE id=$1`,
		s.ID, s.PasswordHash, s.Role, s.Name)
	return affected(res, err)
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id=$1`, id)
	return affected(res, err)
}

func (r *postgresRepo) CountByRole(ctx context.Context, role domain.StaffRole) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff WHERE role=$1`, role).Scan(&n)
	return n, err
}

func (r *postgresRepo) one(ctx context.Context, query string, arg any) (domain.Staff, error) {
	var s domain.Staff
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&s.ID, &s.Username, &s.PasswordHash, &s.Role, &s.Name, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrStaffNotFound
	}
	return s, err
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
		return ErrStaffNotFound
	}
	return nil
}
