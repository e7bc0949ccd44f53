package usecase

import (
	"context"
	"testing"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
)

func TestUserUC_RegisterAndDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	uc := NewUserUseCase(f.users, newTestLogger())

	usr, err := uc.Register(ctx, "ada@example.com", "Ada Lovelace")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if usr.Role != model.UserRoleStudent || !usr.IsActive {
		t.Fatalf("new user = %+v, want active student", usr)
	}

	if _, err := uc.Register(ctx, "ada@example.com", "Someone Else"); err != domain.ErrAlreadyExists {
		t.Fatalf("duplicate email: err = %v, want ErrAlreadyExists", err)
	}
}

func TestUserUC_SetRole(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	uc := NewUserUseCase(f.users, newTestLogger())

	usr, _ := uc.Register(ctx, "t@example.com", "Tess")
	if err := uc.SetRole(ctx, usr.ID, model.UserRoleTeacher); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	got, _ := uc.Get(ctx, usr.ID)
	if got.Role != model.UserRoleTeacher {
		t.Fatalf("role = %q, want teacher", got.Role)
	}

	if err := uc.SetRole(ctx, usr.ID, model.UserRole("superuser")); err != domain.ErrInvalidArgument {
		t.Fatalf("bogus role: err = %v, want ErrInvalidArgument", err)
	}
	if err := uc.SetRole(ctx, "ghost", model.UserRoleAdmin); err != domain.ErrNotFound {
		t.Fatalf("unknown user: err = %v, want ErrNotFound", err)
	}
}

func TestUserUC_SetActiveAndCount(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	uc := NewUserUseCase(f.users, newTestLogger())

	a, _ := uc.Register(ctx, "a@example.com", "A")
	uc.Register(ctx, "b@example.com", "B")

	if err := uc.SetActive(ctx, a.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	got, _ := uc.Get(ctx, a.ID)
	if got.IsActive {
		t.Fatalf("user still active after SetActive(false)")
	}

	if err := uc.SetActive(ctx, "ghost", false); err != domain.ErrNotFound {
		t.Fatalf("unknown user: err = %v, want ErrNotFound", err)
	}

	n, err := uc.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}
