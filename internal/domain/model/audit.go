package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditRecord is an append-only diff entry. Data holds an explicit
// per-entity snapshot (field name -> comparable value) produced by the
// Snapshot* functions below; there is no reflective field walking.
type AuditRecord struct {
	ID         string
	EntityType string
	EntityID   string
	Action     AuditAction
	ActorID    *string
	Data       map[string]any
	CreatedAt  time.Time
}

func NewAuditRecord(entityType, entityID string, action AuditAction, actorID *string, data map[string]any) *AuditRecord {
	return &AuditRecord{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		Data:       data,
		CreatedAt:  time.Now(),
	}
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// SnapshotPayment flattens a payment into comparable values.
func SnapshotPayment(p *Payment) map[string]any {
	return map[string]any{
		"user_id":          p.UserID,
		"course_id":        strOrNil(p.CourseID),
		"package_id":       strOrNil(p.PackageID),
		"type":             string(p.Type),
		"amount_cents":     p.AmountCents,
		"discount_cents":   p.DiscountCents,
		"final_cents":      p.FinalCents,
		"promotion_code":   strOrNil(p.PromotionCodeID),
		"status":           string(p.Status),
		"paid_at":          timeOrNil(p.PaidAt),
	}
}

// SnapshotCourseAccess flattens an entitlement row.
func SnapshotCourseAccess(a *CourseAccess) map[string]any {
	return map[string]any{
		"user_id":      a.UserID,
		"course_id":    a.CourseID,
		"access_type":  string(a.AccessType),
		"package_id":   strOrNil(a.PackageID),
		"payment_id":   strOrNil(a.PaymentID),
		"access_until": timeOrNil(a.AccessUntil),
		"is_active":    a.IsActive,
	}
}

// SnapshotPromotionCode flattens a promotion code.
func SnapshotPromotionCode(p *PromotionCode) map[string]any {
	var maxUses any
	if p.MaxUses != nil {
		maxUses = *p.MaxUses
	}
	return map[string]any{
		"code":             p.Code,
		"discount_percent": p.DiscountPercent,
		"discount_cents":   p.DiscountCents,
		"max_uses":         maxUses,
		"current_uses":     p.CurrentUses,
		"is_active":        p.IsActive,
	}
}

// SnapshotCourse flattens a course.
func SnapshotCourse(c *Course) map[string]any {
	return map[string]any{
		"title":               c.Title,
		"slug":                c.Slug,
		"owner_id":            c.OwnerID,
		"status":              string(c.Status),
		"one_time_cents":      c.OneTimePriceCents,
		"allows_subscription": c.AllowsSubscription,
		"is_active":           c.IsActive,
	}
}

// SnapshotPackage flattens a package.
func SnapshotPackage(p *Package) map[string]any {
	return map[string]any{
		"title":               p.Title,
		"one_time_cents":      p.OneTimePriceCents,
		"allows_subscription": p.AllowsSubscription,
		"is_active":           p.IsActive,
	}
}
