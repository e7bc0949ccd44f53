package model

import (
	"time"

	"github.com/google/uuid"

	"elearning-platform/internal/domain"
)

type AccessType string

const (
	AccessTypeFree         AccessType = "free"
	AccessTypeOneTime      AccessType = "one_time"
	AccessTypeSubscription AccessType = "subscription"
	AccessTypeAdminGranted AccessType = "admin_granted"
)

func (t AccessType) Known() bool {
	switch t {
	case AccessTypeFree, AccessTypeOneTime, AccessTypeSubscription, AccessTypeAdminGranted:
		return true
	}
	return false
}

// CourseAccess is the entitlement record for one (user, course) pair.
// Invariant: at most one row with IsActive=true may exist per pair at
// any instant; the storage layer backs this with a partial unique index.
type CourseAccess struct {
	ID          string
	UserID      string
	CourseID    string
	AccessType  AccessType
	PackageID   *string    // set when the grant was derived from a package purchase
	PaymentID   *string    // nil for admin-granted access
	AccessUntil *time.Time // nil means lifetime
	IsActive    bool
	GrantedAt   time.Time
	UpdatedAt   time.Time
}

func NewCourseAccess(userID, courseID string, accessType AccessType, accessUntil *time.Time) (*CourseAccess, error) {
	if userID == "" || courseID == "" || !accessType.Known() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &CourseAccess{
		ID:          uuid.NewString(),
		UserID:      userID,
		CourseID:    courseID,
		AccessType:  accessType,
		AccessUntil: accessUntil,
		IsActive:    true,
		GrantedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidAt reports whether the record grants access at the given instant.
func (a *CourseAccess) ValidAt(now time.Time) bool {
	if a == nil || !a.IsActive {
		return false
	}
	return a.AccessUntil == nil || a.AccessUntil.After(now)
}
