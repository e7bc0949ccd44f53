package usecase

import (
	"context"
	"testing"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
)

func newCatalogFixture() (*testFixture, *catalogUC) {
	f := newTestFixture()
	log := newTestLogger()
	return f, NewCatalogUseCase(f.courses, f.packages, f.audit, log)
}

func TestCatalogUC_CourseLifecycle(t *testing.T) {
	ctx := context.Background()
	_, uc := newCatalogFixture()

	course, err := uc.CreateCourse(ctx, "Go from Scratch", "go-from-scratch", "owner-1", 9900)
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.Status != model.CourseStatusDraft {
		t.Fatalf("new course status = %q, want draft", course.Status)
	}

	// Drafts never show up in the public listing.
	pub, err := uc.ListPublishedCourses(ctx)
	if err != nil {
		t.Fatalf("ListPublishedCourses: %v", err)
	}
	if len(pub) != 0 {
		t.Fatalf("published courses = %d, want 0", len(pub))
	}

	published := model.CourseStatusPublished
	if _, err := uc.UpdateCourse(ctx, course.ID, CourseUpdate{Status: &published}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	pub, _ = uc.ListPublishedCourses(ctx)
	if len(pub) != 1 || pub[0].ID != course.ID {
		t.Fatalf("published courses = %v, want the one course", pub)
	}

	if err := uc.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	pub, _ = uc.ListPublishedCourses(ctx)
	if len(pub) != 0 {
		t.Fatalf("published after soft delete = %d, want 0", len(pub))
	}
}

func TestCatalogUC_UpdateCourseRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	_, uc := newCatalogFixture()

	course, err := uc.CreateCourse(ctx, "SQL", "sql", "owner-1", 14900)
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	empty := ""
	if _, err := uc.UpdateCourse(ctx, course.ID, CourseUpdate{Title: &empty}); err != domain.ErrInvalidArgument {
		t.Fatalf("empty title: err = %v, want ErrInvalidArgument", err)
	}
	negative := int64(-1)
	if _, err := uc.UpdateCourse(ctx, course.ID, CourseUpdate{OneTimePriceCents: &negative}); err != domain.ErrInvalidArgument {
		t.Fatalf("negative price: err = %v, want ErrInvalidArgument", err)
	}
	bogus := model.CourseStatus("retired")
	if _, err := uc.UpdateCourse(ctx, course.ID, CourseUpdate{Status: &bogus}); err != domain.ErrInvalidArgument {
		t.Fatalf("bogus status: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := uc.UpdateCourse(ctx, "ghost", CourseUpdate{}); err != domain.ErrNotFound {
		t.Fatalf("unknown course: err = %v, want ErrNotFound", err)
	}
}

func TestCatalogUC_PackageMembership(t *testing.T) {
	ctx := context.Background()
	_, uc := newCatalogFixture()

	c1, _ := uc.CreateCourse(ctx, "A", "a", "owner-1", 1000)
	c2, _ := uc.CreateCourse(ctx, "B", "b", "owner-1", 2000)
	pkg, err := uc.CreatePackage(ctx, "Bundle", 2500)
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	if err := uc.AddCourseToPackage(ctx, pkg.ID, c1.ID); err != nil {
		t.Fatalf("link c1: %v", err)
	}
	if err := uc.AddCourseToPackage(ctx, pkg.ID, c2.ID); err != nil {
		t.Fatalf("link c2: %v", err)
	}
	// Linking twice is a no-op, not an error.
	if err := uc.AddCourseToPackage(ctx, pkg.ID, c1.ID); err != nil {
		t.Fatalf("relink c1: %v", err)
	}

	ids, err := uc.ExpandPackage(ctx, pkg.ID)
	if err != nil {
		t.Fatalf("ExpandPackage: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expanded to %d courses, want 2", len(ids))
	}

	if err := uc.RemoveCourseFromPackage(ctx, pkg.ID, c1.ID); err != nil {
		t.Fatalf("unlink c1: %v", err)
	}
	ids, _ = uc.ExpandPackage(ctx, pkg.ID)
	if len(ids) != 1 || ids[0] != c2.ID {
		t.Fatalf("after unlink ids = %v, want [%s]", ids, c2.ID)
	}
}

func TestCatalogUC_PackageGuards(t *testing.T) {
	ctx := context.Background()
	_, uc := newCatalogFixture()

	c1, _ := uc.CreateCourse(ctx, "A", "a", "owner-1", 1000)

	if err := uc.AddCourseToPackage(ctx, "ghost", c1.ID); err != domain.ErrNotFound {
		t.Fatalf("link to unknown package: err = %v, want ErrNotFound", err)
	}
	pkg, _ := uc.CreatePackage(ctx, "Bundle", 2500)
	if err := uc.AddCourseToPackage(ctx, pkg.ID, "ghost"); err != domain.ErrNotFound {
		t.Fatalf("link unknown course: err = %v, want ErrNotFound", err)
	}
	if _, err := uc.ExpandPackage(ctx, "ghost"); err != domain.ErrNotFound {
		t.Fatalf("expand unknown package: err = %v, want ErrNotFound", err)
	}

	// Empty package expands to an empty set.
	ids, err := uc.ExpandPackage(ctx, pkg.ID)
	if err != nil {
		t.Fatalf("expand empty package: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("empty package expanded to %v", ids)
	}
}

func TestCatalogUC_WritesAuditTrail(t *testing.T) {
	ctx := context.Background()
	f, uc := newCatalogFixture()

	course, _ := uc.CreateCourse(ctx, "A", "a", "owner-1", 1000)
	published := model.CourseStatusPublished
	uc.UpdateCourse(ctx, course.ID, CourseUpdate{Status: &published})
	uc.DeleteCourse(ctx, course.ID)

	recs, err := f.audit.ListByEntity(ctx, "course", course.ID, 10)
	if err != nil {
		t.Fatalf("ListByEntity: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("audit records = %d, want create+update+delete", len(recs))
	}
}
