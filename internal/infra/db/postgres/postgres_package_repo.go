package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

var _ repository.PackageRepository = (*packageRepo)(nil)

// packageRepo owns packages and the package_courses join table.
type packageRepo struct{ pool *pgxpool.Pool }

func NewPackageRepo(pool *pgxpool.Pool) *packageRepo {
	return &packageRepo{pool: pool}
}

const packageColumns = `id, title, one_time_price_cents, sub_price_1m_cents, sub_price_3m_cents, sub_price_6m_cents, allows_subscription, is_active, created_at, updated_at`

func (r *packageRepo) Save(ctx context.Context, p *model.Package) error {
	const q = `
INSERT INTO packages (
  id, title, one_time_price_cents,
  sub_price_1m_cents, sub_price_3m_cents, sub_price_6m_cents,
  allows_subscription, is_active, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  title=$2, one_time_price_cents=$3,
  sub_price_1m_cents=$4, sub_price_3m_cents=$5, sub_price_6m_cents=$6,
  allows_subscription=$7, is_active=$8, updated_at=$10;`

	_, err := execSQL(ctx, r.pool, nil, q,
		p.ID, p.Title, p.OneTimePriceCents,
		p.SubPrice1MCents, p.SubPrice3MCents, p.SubPrice6MCents,
		p.AllowsSubscription, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *packageRepo) FindByID(ctx context.Context, id string) (*model.Package, error) {
	row, err := pickRow(ctx, r.pool, nil, `SELECT `+packageColumns+` FROM packages WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanPackage(row)
}

func (r *packageRepo) List(ctx context.Context, offset, limit int) ([]*model.Package, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := queryRows(ctx, r.pool, nil, `SELECT `+packageColumns+` FROM packages ORDER BY created_at ASC OFFSET $1 LIMIT $2;`, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *packageRepo) SoftDelete(ctx context.Context, id string) error {
	cmd, err := execSQL(ctx, r.pool, nil, `UPDATE packages SET is_active=FALSE, updated_at=NOW() WHERE id=$1;`, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *packageRepo) LinkCourse(ctx context.Context, packageID, courseID string) error {
	const q = `INSERT INTO package_courses (package_id, course_id) VALUES ($1,$2) ON CONFLICT DO NOTHING;`
	if _, err := execSQL(ctx, r.pool, nil, q, packageID, courseID); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *packageRepo) UnlinkCourse(ctx context.Context, packageID, courseID string) error {
	const q = `DELETE FROM package_courses WHERE package_id=$1 AND course_id=$2;`
	if _, err := execSQL(ctx, r.pool, nil, q, packageID, courseID); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *packageRepo) ListCourseIDs(ctx context.Context, tx repository.Tx, packageID string) ([]string, error) {
	const q = `SELECT course_id FROM package_courses WHERE package_id=$1 ORDER BY course_id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, packageID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, id)
	}
	return out, nil
}

func scanPackage(row pgx.Row) (*model.Package, error) {
	var p model.Package
	if err := row.Scan(&p.ID, &p.Title, &p.OneTimePriceCents,
		&p.SubPrice1MCents, &p.SubPrice3MCents, &p.SubPrice6MCents,
		&p.AllowsSubscription, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}
