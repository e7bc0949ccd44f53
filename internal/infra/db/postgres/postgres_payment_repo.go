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

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, course_id, package_id, type, amount_cents, discount_cents, final_cents, promotion_code_id, status, paid_at, subscription_months, stripe_payment_intent_id, stripe_session_id, created_at, updated_at`

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (
  id, user_id, course_id, package_id, type, amount_cents, discount_cents, final_cents,
  promotion_code_id, status, paid_at, subscription_months,
  stripe_payment_intent_id, stripe_session_id, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
) ON CONFLICT (id) DO UPDATE SET
  user_id=$2, course_id=$3, package_id=$4, type=$5, amount_cents=$6, discount_cents=$7, final_cents=$8,
  promotion_code_id=$9, status=$10, paid_at=$11, subscription_months=$12,
  stripe_payment_intent_id=$13, stripe_session_id=$14, updated_at=$16;`

	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserID, p.CourseID, p.PackageID, p.Type, p.AmountCents, p.DiscountCents, p.FinalCents,
		p.PromotionCodeID, p.Status, p.PaidAt, p.SubscriptionMonths,
		p.StripePaymentIntentID, p.StripeSessionID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByStripeSession(ctx context.Context, tx repository.Tx, sessionID string) (*model.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE stripe_session_id=$1 LIMIT 1`
	if inTx(tx) {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE user_id=$1 ORDER BY id ASC OFFSET $2 LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, nil, q, userID, offset, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	return collectPayments(rows)
}

// UpdateStatusIfCurrent flips the status only while the row still holds
// the expected one. RowsAffected carries the verdict; there is no
// read-then-write window.
func (r *paymentRepo) UpdateStatusIfCurrent(
	ctx context.Context, tx repository.Tx, id string, current, next model.PaymentStatus, gatewayRef *string, paidAt *time.Time,
) (bool, error) {
	const q = `
UPDATE payments
   SET status = $3,
       stripe_session_id = COALESCE($4, stripe_session_id),
       paid_at = COALESCE($5, paid_at),
       updated_at = NOW()
 WHERE id = $1
   AND status = $2;`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(current), string(next), gatewayRef, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.PackageID, &p.Type,
		&p.AmountCents, &p.DiscountCents, &p.FinalCents, &p.PromotionCodeID,
		&p.Status, &p.PaidAt, &p.SubscriptionMonths,
		&p.StripePaymentIntentID, &p.StripeSessionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func collectPayments(rows pgx.Rows) ([]*model.Payment, error) {
	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
