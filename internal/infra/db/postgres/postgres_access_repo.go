package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

var _ repository.AccessRepository = (*accessRepo)(nil)

type accessRepo struct{ pool *pgxpool.Pool }

func NewAccessRepo(pool *pgxpool.Pool) *accessRepo {
	return &accessRepo{pool: pool}
}

const accessColumns = `id, user_id, course_id, access_type, package_id, payment_id, access_until, is_active, granted_at, updated_at`

func (r *accessRepo) Save(ctx context.Context, tx repository.Tx, a *model.CourseAccess) error {
	const q = `
INSERT INTO course_access (
  id, user_id, course_id, access_type, package_id, payment_id,
  access_until, is_active, granted_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  access_type=$4, package_id=$5, payment_id=$6,
  access_until=$7, is_active=$8, updated_at=$10;`

	_, err := execSQL(ctx, r.pool, tx, q,
		a.ID, a.UserID, a.CourseID, a.AccessType, a.PackageID, a.PaymentID,
		a.AccessUntil, a.IsActive, a.GrantedAt, a.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// LockPair takes an advisory xact lock keyed on the pair, serializing
// concurrent grant sequences before any row exists to row-lock. The
// partial unique index on active rows remains the storage backstop.
func (r *accessRepo) LockPair(ctx context.Context, tx repository.Tx, userID, courseID string) error {
	t, ok := tx.(pgx.Tx)
	if !ok {
		return domain.ErrInvalidExecContext // advisory xact locks need a live tx
	}
	if _, err := t.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", hashToInt64(userID+":"+courseID)); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *accessRepo) FindActive(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.CourseAccess, error) {
	q := `SELECT ` + accessColumns + ` FROM course_access WHERE user_id=$1 AND course_id=$2 AND is_active`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, userID, courseID)
	if err != nil {
		return nil, err
	}
	return scanAccess(row)
}

func (r *accessRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE course_access SET is_active=FALSE, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeactivateExpired lapses bounded rows past their bound. Lifetime rows
// (access_until IS NULL) are never touched; the WHERE clause makes the
// sweep idempotent.
func (r *accessRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `
UPDATE course_access
   SET is_active=FALSE, updated_at=NOW()
 WHERE is_active
   AND access_until IS NOT NULL
   AND access_until < $1;`

	cmd, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}

func (r *accessRepo) HasValid(ctx context.Context, userID, courseID string, now time.Time) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM course_access
   WHERE user_id=$1 AND course_id=$2 AND is_active
     AND (access_until IS NULL OR access_until > $3)
);`
	row, err := pickRow(ctx, r.pool, nil, q, userID, courseID, now)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return ok, nil
}

func (r *accessRepo) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*model.CourseAccess, error) {
	const q = `SELECT ` + accessColumns + ` FROM course_access WHERE user_id=$1 AND is_active AND (access_until IS NULL OR access_until > $2) ORDER BY granted_at ASC;`
	rows, err := queryRows(ctx, r.pool, nil, q, userID, now)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.CourseAccess
	for rows.Next() {
		a, err := scanAccess(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func scanAccess(row pgx.Row) (*model.CourseAccess, error) {
	a := &model.CourseAccess{}
	if err := row.Scan(&a.ID, &a.UserID, &a.CourseID, &a.AccessType, &a.PackageID, &a.PaymentID,
		&a.AccessUntil, &a.IsActive, &a.GrantedAt, &a.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return a, nil
}
