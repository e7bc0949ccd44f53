package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"elearning-platform/internal/domain"
)

type PaymentType string

const (
	PaymentTypeCoursePurchase PaymentType = "course_purchase"
	PaymentTypeSubscription   PaymentType = "subscription"
	PaymentTypeRefund         PaymentType = "refund"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created, awaiting gateway confirmation
	PaymentStatusCompleted PaymentStatus = "completed" // confirmed; entitlement granted in the same tx
	PaymentStatusFailed    PaymentStatus = "failed"    // gateway reported failure (terminal)
	PaymentStatusCancelled PaymentStatus = "cancelled" // abandoned or reconciled away (terminal)
	PaymentStatusRefunded  PaymentStatus = "refunded"  // refunded after completion (terminal)
)

// CanTransitionTo encodes the forward-only status machine:
//
//	pending -> completed -> refunded
//	pending -> failed
//	pending -> cancelled
//
// Everything else is rejected.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusCompleted || next == PaymentStatusFailed || next == PaymentStatusCancelled
	case PaymentStatusCompleted:
		return next == PaymentStatusRefunded
	default:
		return false
	}
}

// Payment is one purchase or subscription attempt. Exactly one of
// CourseID / PackageID is set. Stripe identifiers are opaque correlation
// strings and are never interpreted.
type Payment struct {
	ID                    string // ULID, sortable by creation time
	UserID                string
	CourseID              *string
	PackageID             *string
	Type                  PaymentType
	AmountCents           int64 // pre-discount
	DiscountCents         int64
	FinalCents            int64 // AmountCents - DiscountCents, never negative
	PromotionCodeID       *string
	Status                PaymentStatus
	PaidAt                *time.Time // set only on the transition to completed
	SubscriptionMonths    *int       // required for subscription payments, one of 1/3/6
	StripePaymentIntentID *string
	StripeSessionID       *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func NewPaymentID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

// ForCourse reports whether the payment targets a single course.
func (p *Payment) ForCourse() bool { return p.CourseID != nil }

// ForPackage reports whether the payment targets a package bundle.
func (p *Payment) ForPackage() bool { return p.PackageID != nil }

// Validate checks the structural invariants that must hold for every
// persisted payment, regardless of status.
func (p *Payment) Validate() error {
	if p.ID == "" || p.UserID == "" {
		return domain.ErrInvalidArgument
	}
	if (p.CourseID == nil) == (p.PackageID == nil) {
		return domain.ErrInvalidArgument // course XOR package
	}
	if p.AmountCents < 0 || p.DiscountCents < 0 || p.FinalCents < 0 {
		return domain.ErrInvalidArgument
	}
	if p.Type == PaymentTypeSubscription {
		if p.SubscriptionMonths == nil || !AllowedSubscriptionMonths[*p.SubscriptionMonths] {
			return domain.ErrInvalidArgument
		}
	}
	return nil
}
