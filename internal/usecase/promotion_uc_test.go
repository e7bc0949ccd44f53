// File: internal/usecase/promotion_uc_test.go
package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"elearning-platform/internal/domain"
)

func TestPromotionUC_ValidateLadder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	promos := newMemPromoRepo()
	uc := NewPromotionUseCase(promos, newMemAuditRepo())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	if _, err := uc.Validate(ctx, nil, "NOPE", true, false); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	code, err := uc.Create(ctx, "save20", 20, 0, PromotionOptions{AppliesToCourses: true, AppliesToPackages: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if code.Code != "SAVE20" {
		t.Fatalf("expected code stored uppercase, got %q", code.Code)
	}

	// happy path
	if _, err := uc.Validate(ctx, nil, "SAVE20", true, false); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// inactive
	if err := uc.Deactivate(ctx, code.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := uc.Validate(ctx, nil, "SAVE20", true, false); err != domain.ErrPromotionInactive {
		t.Fatalf("expected ErrPromotionInactive, got %v", err)
	}

	// window checks
	from := now.Add(time.Hour)
	if _, err := uc.Create(ctx, "EARLY", 10, 0, PromotionOptions{ValidFrom: &from, AppliesToCourses: true, AppliesToPackages: true}); err != nil {
		t.Fatalf("create early: %v", err)
	}
	if _, err := uc.Validate(ctx, nil, "EARLY", true, false); err != domain.ErrPromotionOutOfWindow {
		t.Fatalf("expected ErrPromotionOutOfWindow, got %v", err)
	}
	until := now.Add(-time.Hour)
	if _, err := uc.Create(ctx, "LATE", 10, 0, PromotionOptions{ValidUntil: &until, AppliesToCourses: true, AppliesToPackages: true}); err != nil {
		t.Fatalf("create late: %v", err)
	}
	if _, err := uc.Validate(ctx, nil, "LATE", true, false); err != domain.ErrPromotionOutOfWindow {
		t.Fatalf("expected ErrPromotionOutOfWindow, got %v", err)
	}

	// exhausted
	one := 1
	used, err := uc.Create(ctx, "USED", 10, 0, PromotionOptions{MaxUses: &one, AppliesToCourses: true, AppliesToPackages: true})
	if err != nil {
		t.Fatalf("create used: %v", err)
	}
	if err := uc.RedeemUsage(ctx, nil, used.ID); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if _, err := uc.Validate(ctx, nil, "USED", true, false); err != domain.ErrPromotionExhausted {
		t.Fatalf("expected ErrPromotionExhausted, got %v", err)
	}

	// applicability
	if _, err := uc.Create(ctx, "PKGONLY", 10, 0, PromotionOptions{AppliesToPackages: true}); err != nil {
		t.Fatalf("create pkgonly: %v", err)
	}
	if _, err := uc.Validate(ctx, nil, "PKGONLY", true, false); err != domain.ErrPromotionNotApplicable {
		t.Fatalf("expected ErrPromotionNotApplicable for course target, got %v", err)
	}
	if _, err := uc.Validate(ctx, nil, "PKGONLY", false, true); err != nil {
		t.Fatalf("package target should pass: %v", err)
	}
}

func TestPromotionUC_CreateRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewPromotionUseCase(newMemPromoRepo(), newMemAuditRepo())

	cases := []struct {
		name    string
		percent int
		cents   int64
		opts    PromotionOptions
	}{
		{"no discount at all", 0, 0, PromotionOptions{AppliesToCourses: true}},
		{"percent over 100", 101, 0, PromotionOptions{AppliesToCourses: true}},
		{"negative flat", 0, -5, PromotionOptions{AppliesToCourses: true}},
		{"applies to nothing", 10, 0, PromotionOptions{}},
	}
	for _, tc := range cases {
		if _, err := uc.Create(ctx, "X"+tc.name, tc.percent, tc.cents, tc.opts); err != domain.ErrInvalidArgument {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}

	if _, err := uc.Create(ctx, "DUP", 10, 0, PromotionOptions{AppliesToCourses: true, AppliesToPackages: true}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := uc.Create(ctx, "dup", 15, 0, PromotionOptions{AppliesToCourses: true, AppliesToPackages: true}); err != domain.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists for duplicate code, got %v", err)
	}
}

func TestPromotionUC_ConcurrentRedemptionsRespectCap(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	promos := newMemPromoRepo()
	uc := NewPromotionUseCase(promos, newMemAuditRepo())

	one := 1
	code, err := uc.Create(ctx, "ONCE", 50, 0, PromotionOptions{MaxUses: &one, AppliesToCourses: true, AppliesToPackages: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := uc.RedeemUsage(ctx, nil, code.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful redemption, got %d", succeeded)
	}
	final, err := promos.FindByID(ctx, nil, code.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if final.CurrentUses != 1 {
		t.Fatalf("expected current_uses=1, got %d", final.CurrentUses)
	}
}

func TestPromotionCode_DiscountFor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewPromotionUseCase(newMemPromoRepo(), newMemAuditRepo())

	pct, err := uc.Create(ctx, "PCT20", 20, 0, PromotionOptions{AppliesToCourses: true, AppliesToPackages: true})
	if err != nil {
		t.Fatalf("create pct: %v", err)
	}
	if got := pct.DiscountFor(10000); got != 2000 {
		t.Fatalf("20%% of 10000 = %d, want 2000", got)
	}

	// flat takes precedence over percent, never summed
	both, err := uc.Create(ctx, "BOTH", 20, 500, PromotionOptions{AppliesToCourses: true, AppliesToPackages: true})
	if err != nil {
		t.Fatalf("create both: %v", err)
	}
	if got := both.DiscountFor(10000); got != 500 {
		t.Fatalf("flat should win: got %d, want 500", got)
	}

	// clamp to original amount
	big, err := uc.Create(ctx, "BIG", 0, 50000, PromotionOptions{AppliesToCourses: true, AppliesToPackages: true})
	if err != nil {
		t.Fatalf("create big: %v", err)
	}
	if got := big.DiscountFor(10000); got != 10000 {
		t.Fatalf("discount must clamp at amount: got %d", got)
	}
	if got := big.DiscountFor(0); got != 0 {
		t.Fatalf("discount on zero amount must be zero: got %d", got)
	}
}

func TestPromotionUC_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uc := NewPromotionUseCase(newMemPromoRepo(), newMemAuditRepo())

	five := 5
	code, err := uc.Create(ctx, "TWEAK", 10, 0, PromotionOptions{MaxUses: &five, AppliesToCourses: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	thirty := 30
	pkgs := true
	got, err := uc.Update(ctx, code.ID, PromotionUpdate{DiscountPercent: &thirty, AppliesToPackages: &pkgs})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.DiscountPercent != 30 || !got.AppliesToPackages || !got.AppliesToCourses {
		t.Fatalf("update result = %+v", got)
	}
	if got.Code != "TWEAK" {
		t.Fatalf("code changed to %q", got.Code)
	}

	bad := 101
	if _, err := uc.Update(ctx, code.ID, PromotionUpdate{DiscountPercent: &bad}); err != domain.ErrInvalidArgument {
		t.Fatalf("percent 101: err = %v, want ErrInvalidArgument", err)
	}
	zero := 0
	zeroCents := int64(0)
	if _, err := uc.Update(ctx, code.ID, PromotionUpdate{DiscountPercent: &zero, DiscountCents: &zeroCents}); err != domain.ErrInvalidArgument {
		t.Fatalf("no discount left: err = %v, want ErrInvalidArgument", err)
	}
	off := false
	if _, err := uc.Update(ctx, code.ID, PromotionUpdate{AppliesToCourses: &off, AppliesToPackages: &off}); err != domain.ErrInvalidArgument {
		t.Fatalf("applies to nothing: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := uc.Update(ctx, "ghost", PromotionUpdate{}); err != domain.ErrNotFound {
		t.Fatalf("unknown id: err = %v, want ErrNotFound", err)
	}
}
