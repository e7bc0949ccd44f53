// File: internal/usecase/promotion_uc.go
package usecase

import (
	"context"
	"strings"
	"time"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ PromotionUseCase = (*promotionUC)(nil)

// PromotionUseCase validates promotion codes and manages their lifecycle.
type PromotionUseCase interface {
	Create(ctx context.Context, code string, discountPercent int, discountCents int64, opts PromotionOptions) (*model.PromotionCode, error)
	Get(ctx context.Context, id string) (*model.PromotionCode, error)
	List(ctx context.Context, offset, limit int) ([]*model.PromotionCode, error)
	Update(ctx context.Context, id string, upd PromotionUpdate) (*model.PromotionCode, error)
	Deactivate(ctx context.Context, id string) error

	// Validate resolves a code against the activity flag, time window,
	// usage cap and target applicability, in that order. It never mutates
	// the code; usage is counted only at payment completion.
	Validate(ctx context.Context, tx repository.Tx, code string, forCourse, forPackage bool) (*model.PromotionCode, error)

	// RedeemUsage is the compare-and-increment fired exactly once per
	// completed payment referencing the code.
	RedeemUsage(ctx context.Context, tx repository.Tx, codeID string) error
}

// PromotionOptions carries the optional constraints of a new code.
type PromotionOptions struct {
	MaxUses           *int
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	AppliesToCourses  bool
	AppliesToPackages bool
}

// PromotionUpdate carries the mutable constraints of an existing code;
// nil means unchanged. The code string and past usage never change.
type PromotionUpdate struct {
	DiscountPercent   *int
	DiscountCents     *int64
	MaxUses           *int
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	AppliesToCourses  *bool
	AppliesToPackages *bool
}

type promotionUC struct {
	promos repository.PromotionRepository
	audit  repository.AuditRepository
	now    func() time.Time
}

func NewPromotionUseCase(promos repository.PromotionRepository, audit repository.AuditRepository) *promotionUC {
	return &promotionUC{promos: promos, audit: audit, now: time.Now}
}

func (u *promotionUC) Create(ctx context.Context, code string, discountPercent int, discountCents int64, opts PromotionOptions) (*model.PromotionCode, error) {
	p, err := model.NewPromotionCode("", code, discountPercent, discountCents)
	if err != nil {
		return nil, err
	}
	if opts.MaxUses != nil && *opts.MaxUses <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if !opts.AppliesToCourses && !opts.AppliesToPackages {
		return nil, domain.ErrInvalidArgument
	}
	p.MaxUses = opts.MaxUses
	p.ValidFrom = opts.ValidFrom
	p.ValidUntil = opts.ValidUntil
	p.AppliesToCourses = opts.AppliesToCourses
	p.AppliesToPackages = opts.AppliesToPackages

	if existing, err := u.promos.FindByCode(ctx, nil, p.Code); err == nil && !existing.IsZero() {
		return nil, domain.ErrAlreadyExists
	}
	if err := u.promos.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	_ = u.audit.Append(ctx, nil, model.NewAuditRecord("promotion_code", p.ID, model.AuditActionCreate, nil, model.SnapshotPromotionCode(p)))
	return p, nil
}

func (u *promotionUC) Get(ctx context.Context, id string) (*model.PromotionCode, error) {
	return u.promos.FindByID(ctx, nil, id)
}

func (u *promotionUC) List(ctx context.Context, offset, limit int) ([]*model.PromotionCode, error) {
	return u.promos.List(ctx, offset, limit)
}

func (u *promotionUC) Update(ctx context.Context, id string, upd PromotionUpdate) (*model.PromotionCode, error) {
	p, err := u.promos.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if upd.DiscountPercent != nil {
		if *upd.DiscountPercent < 0 || *upd.DiscountPercent > 100 {
			return nil, domain.ErrInvalidArgument
		}
		p.DiscountPercent = *upd.DiscountPercent
	}
	if upd.DiscountCents != nil {
		if *upd.DiscountCents < 0 {
			return nil, domain.ErrInvalidArgument
		}
		p.DiscountCents = *upd.DiscountCents
	}
	if p.DiscountPercent == 0 && p.DiscountCents == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if upd.MaxUses != nil {
		// The cap may tighten but never below what is already spent.
		if *upd.MaxUses <= 0 || *upd.MaxUses < p.CurrentUses {
			return nil, domain.ErrInvalidArgument
		}
		p.MaxUses = upd.MaxUses
	}
	if upd.ValidFrom != nil {
		p.ValidFrom = upd.ValidFrom
	}
	if upd.ValidUntil != nil {
		p.ValidUntil = upd.ValidUntil
	}
	if upd.AppliesToCourses != nil {
		p.AppliesToCourses = *upd.AppliesToCourses
	}
	if upd.AppliesToPackages != nil {
		p.AppliesToPackages = *upd.AppliesToPackages
	}
	if !p.AppliesToCourses && !p.AppliesToPackages {
		return nil, domain.ErrInvalidArgument
	}
	p.UpdatedAt = u.now()
	if err := u.promos.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	_ = u.audit.Append(ctx, nil, model.NewAuditRecord("promotion_code", p.ID, model.AuditActionUpdate, nil, model.SnapshotPromotionCode(p)))
	return p, nil
}

func (u *promotionUC) Deactivate(ctx context.Context, id string) error {
	p, err := u.promos.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}
	p.IsActive = false
	p.UpdatedAt = u.now()
	if err := u.promos.Save(ctx, nil, p); err != nil {
		return err
	}
	_ = u.audit.Append(ctx, nil, model.NewAuditRecord("promotion_code", p.ID, model.AuditActionUpdate, nil, model.SnapshotPromotionCode(p)))
	return nil
}

func (u *promotionUC) Validate(ctx context.Context, tx repository.Tx, code string, forCourse, forPackage bool) (*model.PromotionCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	p, err := u.promos.FindByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrPromotionInactive
	}
	if !p.WithinWindow(u.now()) {
		return nil, domain.ErrPromotionOutOfWindow
	}
	if !p.HasUsesLeft() {
		return nil, domain.ErrPromotionExhausted
	}
	if forCourse && !p.AppliesToCourses {
		return nil, domain.ErrPromotionNotApplicable
	}
	if forPackage && !p.AppliesToPackages {
		return nil, domain.ErrPromotionNotApplicable
	}
	return p, nil
}

func (u *promotionUC) RedeemUsage(ctx context.Context, tx repository.Tx, codeID string) error {
	ok, err := u.promos.IncrementUsageIfAvailable(ctx, tx, codeID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPromotionExhausted
	}
	return nil
}
