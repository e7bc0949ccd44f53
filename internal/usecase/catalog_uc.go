// File: internal/usecase/catalog_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

// CourseUpdate carries the mutable course fields; nil means unchanged.
type CourseUpdate struct {
	Title              *string
	Status             *model.CourseStatus
	OneTimePriceCents  *int64
	SubPrice1MCents    *int64
	SubPrice3MCents    *int64
	SubPrice6MCents    *int64
	AllowsSubscription *bool
}

// CatalogUseCase manages the sellable catalog: courses, packages and the
// package expansion used by the entitlement engine.
type CatalogUseCase interface {
	CreateCourse(ctx context.Context, title, slug, ownerID string, oneTimePriceCents int64) (*model.Course, error)
	UpdateCourse(ctx context.Context, id string, upd CourseUpdate) (*model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	ListCourses(ctx context.Context, offset, limit int) ([]*model.Course, error)
	ListPublishedCourses(ctx context.Context) ([]*model.Course, error)
	DeleteCourse(ctx context.Context, id string) error // soft delete

	CreatePackage(ctx context.Context, title string, oneTimePriceCents int64) (*model.Package, error)
	GetPackage(ctx context.Context, id string) (*model.Package, error)
	ListPackages(ctx context.Context, offset, limit int) ([]*model.Package, error)
	DeletePackage(ctx context.Context, id string) error
	AddCourseToPackage(ctx context.Context, packageID, courseID string) error
	RemoveCourseFromPackage(ctx context.Context, packageID, courseID string) error
	// ExpandPackage resolves the constituent course set. Pure read; an
	// empty package yields an empty set, not an error.
	ExpandPackage(ctx context.Context, packageID string) ([]string, error)
}

type catalogUC struct {
	courses  repository.CourseRepository
	packages repository.PackageRepository
	audit    repository.AuditRepository
	log      *zerolog.Logger
	now      func() time.Time
}

func NewCatalogUseCase(courses repository.CourseRepository, packages repository.PackageRepository, audit repository.AuditRepository, logger *zerolog.Logger) *catalogUC {
	l := logger.With().Str("component", "CatalogUC").Logger()
	return &catalogUC{courses: courses, packages: packages, audit: audit, log: &l, now: time.Now}
}

func (u *catalogUC) CreateCourse(ctx context.Context, title, slug, ownerID string, oneTimePriceCents int64) (*model.Course, error) {
	c, err := model.NewCourse("", title, slug, ownerID, oneTimePriceCents)
	if err != nil {
		return nil, err
	}
	if err := u.courses.Save(ctx, c); err != nil {
		return nil, err
	}
	u.recordCourse(ctx, c, model.AuditActionCreate)
	return c, nil
}

func (u *catalogUC) UpdateCourse(ctx context.Context, id string, upd CourseUpdate) (*model.Course, error) {
	c, err := u.courses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		if *upd.Title == "" {
			return nil, domain.ErrInvalidArgument
		}
		c.Title = *upd.Title
	}
	if upd.Status != nil {
		switch *upd.Status {
		case model.CourseStatusDraft, model.CourseStatusPublished, model.CourseStatusArchived:
			c.Status = *upd.Status
		default:
			return nil, domain.ErrInvalidArgument
		}
	}
	if upd.OneTimePriceCents != nil {
		if *upd.OneTimePriceCents < 0 {
			return nil, domain.ErrInvalidArgument
		}
		c.OneTimePriceCents = *upd.OneTimePriceCents
	}
	if upd.SubPrice1MCents != nil {
		c.SubPrice1MCents = upd.SubPrice1MCents
	}
	if upd.SubPrice3MCents != nil {
		c.SubPrice3MCents = upd.SubPrice3MCents
	}
	if upd.SubPrice6MCents != nil {
		c.SubPrice6MCents = upd.SubPrice6MCents
	}
	if upd.AllowsSubscription != nil {
		c.AllowsSubscription = *upd.AllowsSubscription
	}
	c.UpdatedAt = u.now()
	if err := u.courses.Save(ctx, c); err != nil {
		return nil, err
	}
	u.recordCourse(ctx, c, model.AuditActionUpdate)
	return c, nil
}

func (u *catalogUC) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	return u.courses.FindByID(ctx, id)
}

func (u *catalogUC) ListCourses(ctx context.Context, offset, limit int) ([]*model.Course, error) {
	return u.courses.List(ctx, offset, limit)
}

func (u *catalogUC) ListPublishedCourses(ctx context.Context) ([]*model.Course, error) {
	return u.courses.ListPublished(ctx)
}

func (u *catalogUC) DeleteCourse(ctx context.Context, id string) error {
	c, err := u.courses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.courses.SoftDelete(ctx, c.ID); err != nil {
		return err
	}
	c.IsActive = false
	u.recordCourse(ctx, c, model.AuditActionDelete)
	return nil
}

func (u *catalogUC) CreatePackage(ctx context.Context, title string, oneTimePriceCents int64) (*model.Package, error) {
	p, err := model.NewPackage("", title, oneTimePriceCents)
	if err != nil {
		return nil, err
	}
	if err := u.packages.Save(ctx, p); err != nil {
		return nil, err
	}
	u.recordPackage(ctx, p, model.AuditActionCreate)
	return p, nil
}

func (u *catalogUC) GetPackage(ctx context.Context, id string) (*model.Package, error) {
	return u.packages.FindByID(ctx, id)
}

func (u *catalogUC) ListPackages(ctx context.Context, offset, limit int) ([]*model.Package, error) {
	return u.packages.List(ctx, offset, limit)
}

func (u *catalogUC) DeletePackage(ctx context.Context, id string) error {
	p, err := u.packages.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.packages.SoftDelete(ctx, p.ID); err != nil {
		return err
	}
	p.IsActive = false
	u.recordPackage(ctx, p, model.AuditActionDelete)
	return nil
}

func (u *catalogUC) AddCourseToPackage(ctx context.Context, packageID, courseID string) error {
	if _, err := u.packages.FindByID(ctx, packageID); err != nil {
		return err
	}
	if _, err := u.courses.FindByID(ctx, courseID); err != nil {
		return err
	}
	return u.packages.LinkCourse(ctx, packageID, courseID)
}

func (u *catalogUC) RemoveCourseFromPackage(ctx context.Context, packageID, courseID string) error {
	return u.packages.UnlinkCourse(ctx, packageID, courseID)
}

func (u *catalogUC) ExpandPackage(ctx context.Context, packageID string) ([]string, error) {
	if _, err := u.packages.FindByID(ctx, packageID); err != nil {
		return nil, err
	}
	return u.packages.ListCourseIDs(ctx, nil, packageID)
}

func (u *catalogUC) recordCourse(ctx context.Context, c *model.Course, action model.AuditAction) {
	if err := u.audit.Append(ctx, nil, model.NewAuditRecord("course", c.ID, action, nil, model.SnapshotCourse(c))); err != nil {
		u.log.Warn().Err(err).Str("course_id", c.ID).Msg("audit append failed")
	}
}

func (u *catalogUC) recordPackage(ctx context.Context, p *model.Package, action model.AuditAction) {
	if err := u.audit.Append(ctx, nil, model.NewAuditRecord("package", p.ID, action, nil, model.SnapshotPackage(p))); err != nil {
		u.log.Warn().Err(err).Str("package_id", p.ID).Msg("audit append failed")
	}
}
