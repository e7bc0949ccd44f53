package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct{ pool *pgxpool.Pool }

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (
  id, email, full_name, role, is_active, registered_at, last_active_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7
) ON CONFLICT (id) DO UPDATE SET
  email=$2, full_name=$3, role=$4, is_active=$5, last_active_at=$7;`

	_, err := execSQL(ctx, r.pool, nil, q, u.ID, u.Email, u.FullName, u.Role, u.IsActive, u.RegisteredAt, u.LastActiveAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, email, full_name, role, is_active, registered_at, last_active_at FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, nil, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, email, full_name, role, is_active, registered_at, last_active_at FROM users WHERE email=$1;`
	row, err := pickRow(ctx, r.pool, nil, q, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, email, full_name, role, is_active, registered_at, last_active_at FROM users ORDER BY registered_at ASC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, nil, q, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.RegisteredAt, &u.LastActiveAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &u)
	}
	return out, nil
}

func (r *userRepo) SetActive(ctx context.Context, id string, active bool) error {
	const q = `UPDATE users SET is_active=$2 WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, nil, q, id, active)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) CountUsers(ctx context.Context) (int, error) {
	row, err := pickRow(ctx, r.pool, nil, `SELECT COUNT(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.RegisteredAt, &u.LastActiveAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &u, nil
}
