package repository

import (
	"context"
	"time"

	"elearning-platform/internal/domain/model"
)

// AccessRepository is the port for CourseAccess entitlement rows.
type AccessRepository interface {
	Save(ctx context.Context, tx Tx, a *model.CourseAccess) error

	// LockPair serializes grant sequences for one (user, course) pair for
	// the duration of the surrounding transaction. Postgres implements it
	// with pg_advisory_xact_lock; in-memory implementations use a mutex.
	LockPair(ctx context.Context, tx Tx, userID, courseID string) error

	// FindActive returns the single active row for the pair, row-locked
	// when inside a transaction. ErrNotFound when none exists.
	FindActive(ctx context.Context, tx Tx, userID, courseID string) (*model.CourseAccess, error)

	Deactivate(ctx context.Context, tx Tx, id string) error

	// DeactivateExpired lapses every active row whose access_until is
	// non-null and before now. Lifetime rows are never touched. Returns
	// the number of rows changed; running it twice is a no-op.
	DeactivateExpired(ctx context.Context, tx Tx, now time.Time) (int, error)

	HasValid(ctx context.Context, userID, courseID string, now time.Time) (bool, error)
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*model.CourseAccess, error)
}

// AuditRepository appends entity snapshots; rows are never updated.
type AuditRepository interface {
	Append(ctx context.Context, tx Tx, rec *model.AuditRecord) error
	ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*model.AuditRecord, error)
}
