package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"elearning-platform/internal/domain"
)

// PromotionCode is a discount rule applied at payment creation time.
// Either DiscountCents (flat) or DiscountPercent applies; when both are
// set the flat amount takes precedence and they are never summed.
type PromotionCode struct {
	ID              string
	Code            string // stored uppercase, matched case-sensitively
	DiscountPercent int    // 0..100
	DiscountCents   int64
	MaxUses         *int
	CurrentUses     int
	ValidFrom       *time.Time
	ValidUntil      *time.Time
	AppliesToCourses  bool
	AppliesToPackages bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewPromotionCode(id, code string, discountPercent int, discountCents int64) (*PromotionCode, error) {
	if id == "" {
		id = uuid.NewString()
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || discountPercent < 0 || discountPercent > 100 || discountCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if discountPercent == 0 && discountCents == 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &PromotionCode{
		ID:                id,
		Code:              code,
		DiscountPercent:   discountPercent,
		DiscountCents:     discountCents,
		AppliesToCourses:  true,
		AppliesToPackages: true,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (p *PromotionCode) IsZero() bool { return p == nil || p.ID == "" }

// WithinWindow reports whether now falls inside the validity window.
// Nil bounds are open.
func (p *PromotionCode) WithinWindow(now time.Time) bool {
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}

// HasUsesLeft reports whether the usage counter still permits a
// redemption. The authoritative check happens as a conditional UPDATE at
// payment completion; this is the read-side preview.
func (p *PromotionCode) HasUsesLeft() bool {
	return p.MaxUses == nil || p.CurrentUses < *p.MaxUses
}

// DiscountFor computes the discount for an original amount. Flat
// discounts take precedence over percentages. The result is clamped to
// [0, amountCents].
func (p *PromotionCode) DiscountFor(amountCents int64) int64 {
	var d int64
	if p.DiscountCents > 0 {
		d = p.DiscountCents
	} else {
		d = amountCents * int64(p.DiscountPercent) / 100
	}
	if d < 0 {
		d = 0
	}
	if d > amountCents {
		d = amountCents
	}
	return d
}
