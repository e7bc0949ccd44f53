// File: internal/usecase/user_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes account operations used by registration and admin
// flows. Authentication itself is a collaborator concern; callers always
// supply an already-authenticated acting user id.
type UserUseCase interface {
	Register(ctx context.Context, email, fullName string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role model.UserRole) error
	Count(ctx context.Context) (int, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	l := logger.With().Str("component", "UserUC").Logger()
	return &userUC{users: users, log: &l}
}

func (u *userUC) Register(ctx context.Context, email, fullName string) (*model.User, error) {
	if existing, err := u.users.FindByEmail(ctx, email); err == nil && !existing.IsZero() {
		return nil, domain.ErrAlreadyExists
	}
	usr, err := model.NewUser("", email, fullName, model.UserRoleStudent)
	if err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, usr); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", usr.ID).Msg("user registered")
	return usr, nil
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	return u.users.FindByID(ctx, id)
}

func (u *userUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	return u.users.List(ctx, offset, limit)
}

func (u *userUC) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := u.users.FindByID(ctx, id); err != nil {
		return err
	}
	return u.users.SetActive(ctx, id, active)
}

func (u *userUC) SetRole(ctx context.Context, id string, role model.UserRole) error {
	usr, err := u.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	switch role {
	case model.UserRoleStudent, model.UserRoleTeacher, model.UserRoleAdmin:
	default:
		return domain.ErrInvalidArgument
	}
	usr.Role = role
	return u.users.Save(ctx, usr)
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	return u.users.CountUsers(ctx)
}
