package model

import (
	"time"

	"github.com/google/uuid"

	"elearning-platform/internal/domain"
)

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleTeacher UserRole = "teacher"
	UserRoleAdmin   UserRole = "admin"
)

// User is a platform account. Entitlements hang off the user via
// CourseAccess rows; the user itself carries only identity and role.
type User struct {
	ID           string
	Email        string
	FullName     string
	Role         UserRole
	IsActive     bool
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewUser(id, email, fullName string, role UserRole) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" || fullName == "" {
		return nil, domain.ErrInvalidArgument
	}
	switch role {
	case UserRoleStudent, UserRoleTeacher, UserRoleAdmin:
	default:
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		Email:        email,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
