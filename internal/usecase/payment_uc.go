// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
	"elearning-platform/internal/infra/logging"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// CreatePaymentInput is one purchase or subscription request. Exactly
// one of CourseID / PackageID must be set.
type CreatePaymentInput struct {
	UserID             string
	CourseID           *string
	PackageID          *string
	Type               model.PaymentType
	AmountCents        int64
	PromotionCode      *string
	SubscriptionMonths *int
}

// PaymentUseCase is the payment ledger: it creates payments and walks
// them through the forward-only status machine, granting entitlements on
// the pending->completed edge.
type PaymentUseCase interface {
	Create(ctx context.Context, in CreatePaymentInput) (*model.Payment, error)
	// Complete flips pending->completed, counts promotion usage and
	// grants access, all inside one transaction. A payment is never left
	// completed without its entitlement.
	Complete(ctx context.Context, paymentID, gatewayRef string) (*model.Payment, error)
	Fail(ctx context.Context, paymentID string) (*model.Payment, error)
	Cancel(ctx context.Context, paymentID string) (*model.Payment, error)
	// Refund transitions completed->refunded. It deliberately does not
	// revoke the derived access and does not return promotion usage;
	// cleanup is an explicit separate revoke.
	Refund(ctx context.Context, paymentID string) (*model.Payment, error)

	Get(ctx context.Context, paymentID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Payment, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	courses  repository.CourseRepository
	packages repository.PackageRepository
	users    repository.UserRepository
	promos   PromotionUseCase
	grantor  AccessUseCase
	audit    repository.AuditRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
	now      func() time.Time
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	courses repository.CourseRepository,
	packages repository.PackageRepository,
	users repository.UserRepository,
	promos PromotionUseCase,
	grantor AccessUseCase,
	audit repository.AuditRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		payments: payments,
		courses:  courses,
		packages: packages,
		users:    users,
		promos:   promos,
		grantor:  grantor,
		audit:    audit,
		tm:       tm,
		log:      &l,
		now:      time.Now,
	}
}

func (u *paymentUC) Create(ctx context.Context, in CreatePaymentInput) (*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Create")()

	if (in.CourseID == nil) == (in.PackageID == nil) {
		return nil, domain.ErrInvalidArgument // course XOR package
	}
	if in.AmountCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch in.Type {
	case model.PaymentTypeCoursePurchase:
	case model.PaymentTypeSubscription:
		if in.SubscriptionMonths == nil || !model.AllowedSubscriptionMonths[*in.SubscriptionMonths] {
			return nil, domain.ErrInvalidArgument
		}
	default:
		return nil, domain.ErrInvalidArgument
	}

	if _, err := u.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	if in.CourseID != nil {
		course, err := u.courses.FindByID(ctx, *in.CourseID)
		if err != nil {
			return nil, err
		}
		if !course.Purchasable() {
			return nil, domain.ErrInvalidArgument
		}
		if in.Type == model.PaymentTypeSubscription && !course.AllowsSubscription {
			return nil, domain.ErrInvalidArgument
		}
	} else {
		pkg, err := u.packages.FindByID(ctx, *in.PackageID)
		if err != nil {
			return nil, err
		}
		if !pkg.IsActive {
			return nil, domain.ErrInvalidArgument
		}
		if in.Type == model.PaymentTypeSubscription && !pkg.AllowsSubscription {
			return nil, domain.ErrInvalidArgument
		}
	}

	now := u.now()
	p := &model.Payment{
		ID:                 model.NewPaymentID(now),
		UserID:             in.UserID,
		CourseID:           in.CourseID,
		PackageID:          in.PackageID,
		Type:               in.Type,
		AmountCents:        in.AmountCents,
		Status:             model.PaymentStatusPending,
		SubscriptionMonths: in.SubscriptionMonths,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Discount is recorded at creation; usage is counted only when the
	// payment completes, so abandoned payments never consume the code.
	if in.PromotionCode != nil && *in.PromotionCode != "" {
		code, err := u.promos.Validate(ctx, nil, *in.PromotionCode, in.CourseID != nil, in.PackageID != nil)
		if err != nil {
			return nil, err
		}
		p.PromotionCodeID = &code.ID
		p.DiscountCents = code.DiscountFor(in.AmountCents)
	}
	p.FinalCents = in.AmountCents - p.DiscountCents
	if p.FinalCents < 0 {
		p.FinalCents = 0
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := u.payments.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	u.record(ctx, nil, p, model.AuditActionCreate)
	return p, nil
}

func (u *paymentUC) Complete(ctx context.Context, paymentID, gatewayRef string) (*model.Payment, error) {
	defer logging.TraceDuration(u.log, "PaymentUC.Complete")()

	var out *model.Payment
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID) // row-locked
		if err != nil {
			return err
		}
		if p.Status != model.PaymentStatusPending {
			return domain.ErrInvalidStateTransition
		}

		// Promotion usage increments exactly once, on this edge only; the
		// conditional increment keeps concurrent completions under the cap.
		if p.PromotionCodeID != nil {
			if err := u.promos.RedeemUsage(ctx, tx, *p.PromotionCodeID); err != nil {
				return err
			}
		}

		now := u.now()
		accessType, accessUntil := entitlementFor(p, now)
		if p.ForCourse() {
			if _, err := u.grantor.GrantIn(ctx, tx, GrantInput{
				UserID:      p.UserID,
				CourseID:    *p.CourseID,
				AccessType:  accessType,
				AccessUntil: accessUntil,
				PaymentID:   &p.ID,
			}); err != nil {
				return err
			}
		} else {
			courseIDs, err := u.packages.ListCourseIDs(ctx, tx, *p.PackageID)
			if err != nil {
				return err
			}
			for _, courseID := range courseIDs {
				if _, err := u.grantor.GrantIn(ctx, tx, GrantInput{
					UserID:      p.UserID,
					CourseID:    courseID,
					AccessType:  accessType,
					AccessUntil: accessUntil,
					PackageID:   p.PackageID,
					PaymentID:   &p.ID,
				}); err != nil {
					return err
				}
			}
		}

		ok, err := u.payments.UpdateStatusIfCurrent(ctx, tx, p.ID, model.PaymentStatusPending, model.PaymentStatusCompleted, &gatewayRef, &now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStateTransition
		}
		p.Status = model.PaymentStatusCompleted
		p.PaidAt = &now
		p.StripeSessionID = &gatewayRef
		p.UpdatedAt = now
		u.record(ctx, tx, p, model.AuditActionUpdate)
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("payment_id", out.ID).Str("user_id", out.UserID).Msg("payment completed")
	return out, nil
}

func (u *paymentUC) Fail(ctx context.Context, paymentID string) (*model.Payment, error) {
	return u.transition(ctx, paymentID, model.PaymentStatusPending, model.PaymentStatusFailed)
}

func (u *paymentUC) Cancel(ctx context.Context, paymentID string) (*model.Payment, error) {
	return u.transition(ctx, paymentID, model.PaymentStatusPending, model.PaymentStatusCancelled)
}

func (u *paymentUC) Refund(ctx context.Context, paymentID string) (*model.Payment, error) {
	// Usage stays counted and access stays granted: both are deliberate.
	return u.transition(ctx, paymentID, model.PaymentStatusCompleted, model.PaymentStatusRefunded)
}

func (u *paymentUC) transition(ctx context.Context, paymentID string, current, next model.PaymentStatus) (*model.Payment, error) {
	if !current.CanTransitionTo(next) {
		return nil, domain.ErrInvalidStateTransition
	}
	var out *model.Payment
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != current {
			return domain.ErrInvalidStateTransition
		}
		ok, err := u.payments.UpdateStatusIfCurrent(ctx, tx, p.ID, current, next, nil, nil)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidStateTransition
		}
		p.Status = next
		p.UpdatedAt = u.now()
		u.record(ctx, tx, p, model.AuditActionUpdate)
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *paymentUC) Get(ctx context.Context, paymentID string) (*model.Payment, error) {
	return u.payments.FindByID(ctx, nil, paymentID)
}

func (u *paymentUC) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Payment, error) {
	return u.payments.ListByUser(ctx, userID, offset, limit)
}

// entitlementFor derives the access type and bound a completed payment
// grants. One-time purchases are lifetime (nil bound); subscriptions run
// for calendar months from completion.
func entitlementFor(p *model.Payment, now time.Time) (model.AccessType, *time.Time) {
	if p.Type == model.PaymentTypeSubscription && p.SubscriptionMonths != nil {
		until := now.AddDate(0, *p.SubscriptionMonths, 0)
		return model.AccessTypeSubscription, &until
	}
	return model.AccessTypeOneTime, nil
}

func (u *paymentUC) record(ctx context.Context, tx repository.Tx, p *model.Payment, action model.AuditAction) {
	rec := model.NewAuditRecord("payment", p.ID, action, nil, model.SnapshotPayment(p))
	if err := u.audit.Append(ctx, tx, rec); err != nil {
		u.log.Warn().Err(err).Str("payment_id", p.ID).Msg("audit append failed")
	}
}
