package model

import (
	"time"

	"github.com/google/uuid"

	"elearning-platform/internal/domain"
)

// Package bundles courses sold as one entitlement unit. The linked
// course set lives in the package_courses join and is owned by the
// package side only; the inverse view is derived by an index query,
// never a maintained back-pointer collection.
type Package struct {
	ID                 string
	Title              string
	OneTimePriceCents  int64
	SubPrice1MCents    *int64
	SubPrice3MCents    *int64
	SubPrice6MCents    *int64
	AllowsSubscription bool
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewPackage(id, title string, oneTimePriceCents int64) (*Package, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if title == "" || oneTimePriceCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Package{
		ID:                id,
		Title:             title,
		OneTimePriceCents: oneTimePriceCents,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (p *Package) IsZero() bool { return p == nil || p.ID == "" }

func (p *Package) SubscriptionPriceCents(months int) (int64, error) {
	if !p.AllowsSubscription || !AllowedSubscriptionMonths[months] {
		return 0, domain.ErrInvalidArgument
	}
	var v *int64
	switch months {
	case 1:
		v = p.SubPrice1MCents
	case 3:
		v = p.SubPrice3MCents
	case 6:
		v = p.SubPrice6MCents
	}
	if v == nil {
		return 0, domain.ErrInvalidArgument
	}
	return *v, nil
}
