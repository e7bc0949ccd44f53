package model

import (
	"testing"
	"time"

	"elearning-platform/internal/domain"
)

func TestPaymentStatusCanTransitionTo(t *testing.T) {
	t.Parallel()

	allowed := map[PaymentStatus][]PaymentStatus{
		PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
		PaymentStatusCompleted: {PaymentStatusRefunded},
		PaymentStatusFailed:    {},
		PaymentStatusCancelled: {},
		PaymentStatusRefunded:  {},
	}
	all := []PaymentStatus{
		PaymentStatusPending, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded,
	}
	for from, nexts := range allowed {
		ok := map[PaymentStatus]bool{}
		for _, n := range nexts {
			ok[n] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != ok[to] {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, ok[to])
			}
		}
	}
}

func TestPaymentValidate(t *testing.T) {
	t.Parallel()

	course := "c1"
	pkg := "p1"
	months := 3
	base := Payment{
		ID:          NewPaymentID(time.Now()),
		UserID:      "u1",
		CourseID:    &course,
		Type:        PaymentTypeCoursePurchase,
		AmountCents: 10000,
		FinalCents:  10000,
		Status:      PaymentStatusPending,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid payment rejected: %v", err)
	}

	both := base
	both.PackageID = &pkg
	if err := both.Validate(); err != domain.ErrInvalidArgument {
		t.Fatalf("course and package together must be rejected, got %v", err)
	}

	neither := base
	neither.CourseID = nil
	if err := neither.Validate(); err != domain.ErrInvalidArgument {
		t.Fatalf("no target must be rejected, got %v", err)
	}

	sub := base
	sub.Type = PaymentTypeSubscription
	if err := sub.Validate(); err != domain.ErrInvalidArgument {
		t.Fatalf("subscription without months must be rejected, got %v", err)
	}
	sub.SubscriptionMonths = &months
	if err := sub.Validate(); err != nil {
		t.Fatalf("valid subscription rejected: %v", err)
	}
	bad := 4
	sub.SubscriptionMonths = &bad
	if err := sub.Validate(); err != domain.ErrInvalidArgument {
		t.Fatalf("4 months must be rejected, got %v", err)
	}
}

func TestPaymentIDsSortByCreation(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewPaymentID(t0)
	b := NewPaymentID(t0.Add(time.Second))
	if !(a < b) {
		t.Fatalf("expected %s < %s", a, b)
	}
}

func TestCourseAccessValidAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	lifetime, err := NewCourseAccess("u1", "c1", AccessTypeOneTime, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !lifetime.ValidAt(now) {
		t.Fatal("lifetime access must always be valid while active")
	}

	bounded, _ := NewCourseAccess("u1", "c1", AccessTypeSubscription, &later)
	if !bounded.ValidAt(now) {
		t.Fatal("access before the bound must be valid")
	}
	bounded.AccessUntil = &earlier
	if bounded.ValidAt(now) {
		t.Fatal("access past the bound must not be valid")
	}

	lifetime.IsActive = false
	if lifetime.ValidAt(now) {
		t.Fatal("inactive access must never be valid")
	}

	if (*CourseAccess)(nil).ValidAt(now) {
		t.Fatal("nil access must not be valid")
	}
}

func TestNewCourseAccessRejectsUnknownType(t *testing.T) {
	t.Parallel()

	if _, err := NewCourseAccess("u1", "c1", AccessType("perpetual"), nil); err != domain.ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestPromotionCodeWithinWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	p, err := NewPromotionCode("", "OPEN", 10, 0)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !p.WithinWindow(now) {
		t.Fatal("open window must always match")
	}

	p.ValidFrom = &after
	if p.WithinWindow(now) {
		t.Fatal("window not yet open")
	}
	p.ValidFrom = &before
	p.ValidUntil = &before
	if p.WithinWindow(now) {
		t.Fatal("window already closed")
	}
	p.ValidUntil = &after
	if !p.WithinWindow(now) {
		t.Fatal("inside the window must match")
	}
}

func TestCourseSubscriptionPriceCents(t *testing.T) {
	t.Parallel()

	c, err := NewCourse("c1", "Go from Scratch", "go-from-scratch", "owner-1", 10000)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.SubscriptionPriceCents(3); err != domain.ErrInvalidArgument {
		t.Fatalf("course without subscriptions: expected ErrInvalidArgument, got %v", err)
	}

	p3 := int64(3000)
	c.AllowsSubscription = true
	c.SubPrice3MCents = &p3
	got, err := c.SubscriptionPriceCents(3)
	if err != nil || got != 3000 {
		t.Fatalf("expected 3000, got %d err=%v", got, err)
	}
	if _, err := c.SubscriptionPriceCents(6); err != domain.ErrInvalidArgument {
		t.Fatalf("unoffered tier: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := c.SubscriptionPriceCents(2); err != domain.ErrInvalidArgument {
		t.Fatalf("2 months is never allowed, got %v", err)
	}
}

func TestCoursePurchasable(t *testing.T) {
	t.Parallel()

	c, _ := NewCourse("c1", "Go from Scratch", "go-from-scratch", "owner-1", 10000)
	if c.Purchasable() {
		t.Fatal("draft course must not be purchasable")
	}
	c.Status = CourseStatusPublished
	if !c.Purchasable() {
		t.Fatal("published active course must be purchasable")
	}
	c.IsActive = false
	if c.Purchasable() {
		t.Fatal("soft-deleted course must not be purchasable")
	}
}
