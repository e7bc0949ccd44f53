// File: internal/usecase/access_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ AccessUseCase = (*accessUC)(nil)

// GrantInput describes one course entitlement to create or extend.
type GrantInput struct {
	UserID      string
	CourseID    string
	AccessType  model.AccessType
	AccessUntil *time.Time // nil = lifetime
	PackageID   *string
	PaymentID   *string
	ActorID     *string // acting admin for manual grants; nil for purchase flows
}

// AccessUseCase is the entitlement engine: it grants, revokes, evaluates
// and expires CourseAccess rows.
type AccessUseCase interface {
	// GrantCourseAccess runs one grant in its own transaction.
	GrantCourseAccess(ctx context.Context, in GrantInput) (*model.CourseAccess, error)
	// GrantPackageAccess expands the package and grants every course
	// inside one transaction; no half-bundle state can persist.
	GrantPackageAccess(ctx context.Context, userID, packageID string, accessType model.AccessType, accessUntil *time.Time, paymentID, actorID *string) ([]*model.CourseAccess, error)
	// GrantIn performs one grant inside a caller-owned transaction. The
	// payment completion flow uses it to keep grant and status flip atomic.
	GrantIn(ctx context.Context, tx repository.Tx, in GrantInput) (*model.CourseAccess, error)

	RevokeCourseAccess(ctx context.Context, userID, courseID string, actorID *string) error

	HasValidAccess(ctx context.Context, userID, courseID string) (bool, error)
	UserAccessibleCourses(ctx context.Context, userID string) ([]*model.Course, error)

	// ProcessExpiredAccesses lapses every time-bounded entitlement whose
	// bound has passed. Idempotent; lifetime rows are never touched.
	ProcessExpiredAccesses(ctx context.Context) (int, error)
}

type accessUC struct {
	access   repository.AccessRepository
	packages repository.PackageRepository
	courses  repository.CourseRepository
	audit    repository.AuditRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
	now      func() time.Time
}

func NewAccessUseCase(
	access repository.AccessRepository,
	packages repository.PackageRepository,
	courses repository.CourseRepository,
	audit repository.AuditRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *accessUC {
	l := logger.With().Str("component", "AccessUC").Logger()
	return &accessUC{
		access:   access,
		packages: packages,
		courses:  courses,
		audit:    audit,
		tm:       tm,
		log:      &l,
		now:      time.Now,
	}
}

func (u *accessUC) GrantCourseAccess(ctx context.Context, in GrantInput) (*model.CourseAccess, error) {
	var out *model.CourseAccess
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := u.GrantIn(ctx, tx, in)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GrantIn implements the precedence rules of the entitlement engine:
//   - no existing valid row: insert a new active one
//   - same access type: renewal; extend to the later bound, and a nil
//     (lifetime) bound on either side wins
//   - different access type: the old row is deactivated and a fresh row
//     supersedes it; types are never merged
//
// The (user, course) pair is locked first so concurrent grants serialize;
// the partial unique index on active rows is the storage backstop.
func (u *accessUC) GrantIn(ctx context.Context, tx repository.Tx, in GrantInput) (*model.CourseAccess, error) {
	if in.UserID == "" || in.CourseID == "" || !in.AccessType.Known() {
		return nil, domain.ErrInvalidArgument
	}
	if err := u.access.LockPair(ctx, tx, in.UserID, in.CourseID); err != nil {
		return nil, err
	}

	existing, err := u.access.FindActive(ctx, tx, in.UserID, in.CourseID)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}

	now := u.now()
	if existing != nil && existing.ValidAt(now) {
		if existing.AccessType == in.AccessType {
			switch {
			case in.AccessUntil == nil || existing.AccessUntil == nil:
				existing.AccessUntil = nil
			case in.AccessUntil.After(*existing.AccessUntil):
				existing.AccessUntil = in.AccessUntil
			}
			if in.PaymentID != nil {
				existing.PaymentID = in.PaymentID
			}
			if in.PackageID != nil {
				existing.PackageID = in.PackageID
			}
			existing.UpdatedAt = now
			if err := u.access.Save(ctx, tx, existing); err != nil {
				return nil, err
			}
			u.recordAccess(ctx, tx, existing, model.AuditActionUpdate, in.ActorID)
			return existing, nil
		}
		// Access-type change supersedes the old row.
		if err := u.access.Deactivate(ctx, tx, existing.ID); err != nil {
			return nil, err
		}
	} else if existing != nil {
		// Row lapsed between sweeps; retire it before inserting anew.
		if err := u.access.Deactivate(ctx, tx, existing.ID); err != nil {
			return nil, err
		}
	}

	a, err := model.NewCourseAccess(in.UserID, in.CourseID, in.AccessType, in.AccessUntil)
	if err != nil {
		return nil, err
	}
	a.PackageID = in.PackageID
	a.PaymentID = in.PaymentID
	if err := u.access.Save(ctx, tx, a); err != nil {
		return nil, err
	}
	u.recordAccess(ctx, tx, a, model.AuditActionCreate, in.ActorID)
	return a, nil
}

func (u *accessUC) GrantPackageAccess(ctx context.Context, userID, packageID string, accessType model.AccessType, accessUntil *time.Time, paymentID, actorID *string) ([]*model.CourseAccess, error) {
	var out []*model.CourseAccess
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		granted, err := u.grantPackageIn(ctx, tx, userID, packageID, accessType, accessUntil, paymentID, actorID)
		if err != nil {
			return err
		}
		out = granted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *accessUC) grantPackageIn(ctx context.Context, tx repository.Tx, userID, packageID string, accessType model.AccessType, accessUntil *time.Time, paymentID, actorID *string) ([]*model.CourseAccess, error) {
	pkg, err := u.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	courseIDs, err := u.packages.ListCourseIDs(ctx, tx, pkg.ID)
	if err != nil {
		return nil, err
	}
	// An empty package is valid: nothing to grant.
	granted := make([]*model.CourseAccess, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		a, err := u.GrantIn(ctx, tx, GrantInput{
			UserID:      userID,
			CourseID:    courseID,
			AccessType:  accessType,
			AccessUntil: accessUntil,
			PackageID:   &pkg.ID,
			PaymentID:   paymentID,
			ActorID:     actorID,
		})
		if err != nil {
			// Whole-bundle rollback via the surrounding tx; re-running is
			// safe because per-course grants are idempotent.
			return nil, err
		}
		granted = append(granted, a)
	}
	return granted, nil
}

func (u *accessUC) RevokeCourseAccess(ctx context.Context, userID, courseID string, actorID *string) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.access.LockPair(ctx, tx, userID, courseID); err != nil {
			return err
		}
		existing, err := u.access.FindActive(ctx, tx, userID, courseID)
		if err == domain.ErrNotFound {
			return nil // revoking absent access is a no-op, not an error
		}
		if err != nil {
			return err
		}
		if err := u.access.Deactivate(ctx, tx, existing.ID); err != nil {
			return err
		}
		existing.IsActive = false
		u.recordAccess(ctx, tx, existing, model.AuditActionDelete, actorID)
		return nil
	})
}

func (u *accessUC) HasValidAccess(ctx context.Context, userID, courseID string) (bool, error) {
	return u.access.HasValid(ctx, userID, courseID, u.now())
}

func (u *accessUC) UserAccessibleCourses(ctx context.Context, userID string) ([]*model.Course, error) {
	rows, err := u.access.ListActiveByUser(ctx, userID, u.now())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, a := range rows {
		ids = append(ids, a.CourseID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return u.courses.FindByIDs(ctx, ids)
}

func (u *accessUC) ProcessExpiredAccesses(ctx context.Context) (int, error) {
	n, err := u.access.DeactivateExpired(ctx, nil, u.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.log.Info().Int("count", n).Msg("expired entitlements deactivated")
	}
	return n, nil
}

func (u *accessUC) recordAccess(ctx context.Context, tx repository.Tx, a *model.CourseAccess, action model.AuditAction, actorID *string) {
	rec := model.NewAuditRecord("course_access", a.ID, action, actorID, model.SnapshotCourseAccess(a))
	if err := u.audit.Append(ctx, tx, rec); err != nil {
		u.log.Warn().Err(err).Str("access_id", a.ID).Msg("audit append failed")
	}
}
