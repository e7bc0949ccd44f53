package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

var _ repository.CourseRepository = (*courseRepo)(nil)

type courseRepo struct{ pool *pgxpool.Pool }

func NewCourseRepo(pool *pgxpool.Pool) *courseRepo {
	return &courseRepo{pool: pool}
}

const courseColumns = `id, title, slug, owner_id, status, one_time_price_cents, sub_price_1m_cents, sub_price_3m_cents, sub_price_6m_cents, allows_subscription, is_active, created_at, updated_at`

func (r *courseRepo) Save(ctx context.Context, c *model.Course) error {
	const q = `
INSERT INTO courses (
  id, title, slug, owner_id, status, one_time_price_cents,
  sub_price_1m_cents, sub_price_3m_cents, sub_price_6m_cents,
  allows_subscription, is_active, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  title=$2, slug=$3, owner_id=$4, status=$5, one_time_price_cents=$6,
  sub_price_1m_cents=$7, sub_price_3m_cents=$8, sub_price_6m_cents=$9,
  allows_subscription=$10, is_active=$11, updated_at=$13;`

	_, err := execSQL(ctx, r.pool, nil, q,
		c.ID, c.Title, c.Slug, c.OwnerID, c.Status, c.OneTimePriceCents,
		c.SubPrice1MCents, c.SubPrice3MCents, c.SubPrice6MCents,
		c.AllowsSubscription, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *courseRepo) FindByID(ctx context.Context, id string) (*model.Course, error) {
	row, err := pickRow(ctx, r.pool, nil, `SELECT `+courseColumns+` FROM courses WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanCourse(row)
}

func (r *courseRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := queryRows(ctx, r.pool, nil, `SELECT `+courseColumns+` FROM courses WHERE id = ANY($1) ORDER BY title ASC;`, ids)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *courseRepo) ListPublished(ctx context.Context) ([]*model.Course, error) {
	rows, err := queryRows(ctx, r.pool, nil, `SELECT `+courseColumns+` FROM courses WHERE is_active AND status='published' ORDER BY title ASC;`)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *courseRepo) List(ctx context.Context, offset, limit int) ([]*model.Course, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := queryRows(ctx, r.pool, nil, `SELECT `+courseColumns+` FROM courses ORDER BY created_at ASC OFFSET $1 LIMIT $2;`, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *courseRepo) SoftDelete(ctx context.Context, id string) error {
	cmd, err := execSQL(ctx, r.pool, nil, `UPDATE courses SET is_active=FALSE, updated_at=NOW() WHERE id=$1;`, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var c model.Course
	if err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.OwnerID, &c.Status, &c.OneTimePriceCents,
		&c.SubPrice1MCents, &c.SubPrice3MCents, &c.SubPrice6MCents,
		&c.AllowsSubscription, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func collectCourses(rows pgx.Rows) ([]*model.Course, error) {
	var out []*model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
