package repository

import (
	"context"

	"elearning-platform/internal/domain/model"
)

// CourseRepository is the port for course persistence.
type CourseRepository interface {
	Save(ctx context.Context, c *model.Course) error
	FindByID(ctx context.Context, id string) (*model.Course, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Course, error)
	ListPublished(ctx context.Context) ([]*model.Course, error)
	List(ctx context.Context, offset, limit int) ([]*model.Course, error)
	// SoftDelete flips is_active off; rows are never physically removed.
	SoftDelete(ctx context.Context, id string) error
}

// PackageRepository owns packages and the package_courses join.
type PackageRepository interface {
	Save(ctx context.Context, p *model.Package) error
	FindByID(ctx context.Context, id string) (*model.Package, error)
	List(ctx context.Context, offset, limit int) ([]*model.Package, error)
	SoftDelete(ctx context.Context, id string) error

	LinkCourse(ctx context.Context, packageID, courseID string) error
	UnlinkCourse(ctx context.Context, packageID, courseID string) error
	// ListCourseIDs expands a package into its constituent course set.
	// An empty package is valid and yields an empty slice.
	ListCourseIDs(ctx context.Context, tx Tx, packageID string) ([]string, error)
}
