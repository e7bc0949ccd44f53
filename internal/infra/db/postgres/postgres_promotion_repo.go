package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

var _ repository.PromotionRepository = (*promotionRepo)(nil)

type promotionRepo struct{ pool *pgxpool.Pool }

func NewPromotionRepo(pool *pgxpool.Pool) *promotionRepo {
	return &promotionRepo{pool: pool}
}

const promoColumns = `id, code, discount_percent, discount_cents, max_uses, current_uses, valid_from, valid_until, applies_to_courses, applies_to_packages, is_active, created_at, updated_at`

func (r *promotionRepo) Save(ctx context.Context, tx repository.Tx, p *model.PromotionCode) error {
	const q = `
INSERT INTO promotion_codes (
  id, code, discount_percent, discount_cents, max_uses, current_uses,
  valid_from, valid_until, applies_to_courses, applies_to_packages,
  is_active, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  code=$2, discount_percent=$3, discount_cents=$4, max_uses=$5, current_uses=$6,
  valid_from=$7, valid_until=$8, applies_to_courses=$9, applies_to_packages=$10,
  is_active=$11, updated_at=$13;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.Code, p.DiscountPercent, p.DiscountCents, p.MaxUses, p.CurrentUses,
		p.ValidFrom, p.ValidUntil, p.AppliesToCourses, p.AppliesToPackages,
		p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *promotionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PromotionCode, error) {
	q := `SELECT ` + promoColumns + ` FROM promotion_codes WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPromotion(row)
}

func (r *promotionRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromotionCode, error) {
	q := `SELECT ` + promoColumns + ` FROM promotion_codes WHERE code=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanPromotion(row)
}

func (r *promotionRepo) List(ctx context.Context, offset, limit int) ([]*model.PromotionCode, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := queryRows(ctx, r.pool, nil, `SELECT `+promoColumns+` FROM promotion_codes ORDER BY created_at ASC OFFSET $1 LIMIT $2;`, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.PromotionCode
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// IncrementUsageIfAvailable bumps current_uses only while the cap still
// allows it. The guard lives in the UPDATE itself; concurrent
// completions race on the row, not in application code.
func (r *promotionRepo) IncrementUsageIfAvailable(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `
UPDATE promotion_codes
   SET current_uses = current_uses + 1,
       updated_at = NOW()
 WHERE id = $1
   AND (max_uses IS NULL OR current_uses < max_uses);`

	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func scanPromotion(row pgx.Row) (*model.PromotionCode, error) {
	var p model.PromotionCode
	if err := row.Scan(&p.ID, &p.Code, &p.DiscountPercent, &p.DiscountCents, &p.MaxUses, &p.CurrentUses,
		&p.ValidFrom, &p.ValidUntil, &p.AppliesToCourses, &p.AppliesToPackages,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}
