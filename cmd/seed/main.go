package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"elearning-platform/internal/config"
	"elearning-platform/internal/domain/model"
	pg "elearning-platform/internal/infra/db/postgres"
	"elearning-platform/internal/infra/logging"
	"elearning-platform/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// Schema first; every statement is IF NOT EXISTS.
	if _, err := pool.Exec(ctx, pg.SchemaSQL); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	userRepo := pg.NewUserRepo(pool)
	courseRepo := pg.NewCourseRepo(pool)
	packageRepo := pg.NewPackageRepo(pool)
	promoRepo := pg.NewPromotionRepo(pool)
	auditRepo := pg.NewAuditRepo(pool)

	catalogUC := usecase.NewCatalogUseCase(courseRepo, packageRepo, auditRepo, logger)
	promoUC := usecase.NewPromotionUseCase(promoRepo, auditRepo)

	// If users already exist, leave the data alone.
	n, err := userRepo.CountUsers(ctx)
	if err != nil {
		log.Fatalf("count users: %v", err)
	}
	if n > 0 {
		fmt.Printf("%d users already present. No changes.\n", n)
		return
	}

	admin, err := model.NewUser("", "admin@example.com", "Platform Admin", model.UserRoleAdmin)
	if err != nil {
		log.Fatalf("admin user: %v", err)
	}
	if err := userRepo.Save(ctx, admin); err != nil {
		log.Fatalf("save admin: %v", err)
	}
	fmt.Printf("seeded admin: %s (id=%s)\n", admin.Email, admin.ID)

	instructor, err := model.NewUser("", "instructor@example.com", "Demo Instructor", model.UserRoleTeacher)
	if err != nil {
		log.Fatalf("instructor user: %v", err)
	}
	if err := userRepo.Save(ctx, instructor); err != nil {
		log.Fatalf("save instructor: %v", err)
	}

	courses := []struct {
		Title string
		Slug  string
		Price int64
	}{
		{"Go from Scratch", "go-from-scratch", 9900},
		{"Advanced SQL", "advanced-sql", 14900},
		{"Distributed Systems", "distributed-systems", 19900},
	}
	published := model.CourseStatusPublished
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		course, err := catalogUC.CreateCourse(ctx, c.Title, c.Slug, instructor.ID, c.Price)
		if err != nil {
			log.Fatalf("create course %q: %v", c.Title, err)
		}
		if _, err := catalogUC.UpdateCourse(ctx, course.ID, usecase.CourseUpdate{Status: &published}); err != nil {
			log.Fatalf("publish course %q: %v", c.Title, err)
		}
		ids = append(ids, course.ID)
		fmt.Printf("seeded course: %s (id=%s, price=%d)\n", c.Title, course.ID, c.Price)
	}

	pkg, err := catalogUC.CreatePackage(ctx, "Backend Bundle", 34900)
	if err != nil {
		log.Fatalf("create package: %v", err)
	}
	for _, id := range ids {
		if err := catalogUC.AddCourseToPackage(ctx, pkg.ID, id); err != nil {
			log.Fatalf("link course %s: %v", id, err)
		}
	}
	fmt.Printf("seeded package: %s (id=%s, courses=%d)\n", pkg.Title, pkg.ID, len(ids))

	maxUses := 100
	promo, err := promoUC.Create(ctx, "SAVE20", 20, 0, usecase.PromotionOptions{
		MaxUses:           &maxUses,
		AppliesToCourses:  true,
		AppliesToPackages: true,
	})
	if err != nil {
		log.Fatalf("create promotion: %v", err)
	}
	fmt.Printf("seeded promotion: %s (id=%s, 20%% off, max_uses=%d)\n", promo.Code, promo.ID, maxUses)

	fmt.Println("seeding complete")
}
