package repository

import (
	"context"

	"elearning-platform/internal/domain/model"
)

// UserRepository is the port for platform accounts.
type UserRepository interface {
	Save(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	CountUsers(ctx context.Context) (int, error)
}
