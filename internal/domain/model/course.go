package model

import (
	"time"

	"github.com/google/uuid"

	"elearning-platform/internal/domain"
)

type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
	CourseStatusArchived  CourseStatus = "archived"
)

// AllowedSubscriptionMonths are the only durations a subscription
// purchase may carry.
var AllowedSubscriptionMonths = map[int]bool{1: true, 3: true, 6: true}

// Course is the sellable content unit. All prices are integer cents to
// avoid float errors. Subscription tier prices are nil when the tier is
// not offered.
type Course struct {
	ID                 string
	Title              string
	Slug               string
	OwnerID            string
	Status             CourseStatus
	OneTimePriceCents  int64
	SubPrice1MCents    *int64
	SubPrice3MCents    *int64
	SubPrice6MCents    *int64
	AllowsSubscription bool
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewCourse(id, title, slug, ownerID string, oneTimePriceCents int64) (*Course, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if title == "" || slug == "" || ownerID == "" || oneTimePriceCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Course{
		ID:                id,
		Title:             title,
		Slug:              slug,
		OwnerID:           ownerID,
		Status:            CourseStatusDraft,
		OneTimePriceCents: oneTimePriceCents,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (c *Course) IsZero() bool { return c == nil || c.ID == "" }

// Purchasable reports whether the course can be sold right now.
func (c *Course) Purchasable() bool {
	return c != nil && c.IsActive && c.Status == CourseStatusPublished
}

// SubscriptionPriceCents returns the price for the given duration, or
// ErrInvalidArgument when the tier is not offered.
func (c *Course) SubscriptionPriceCents(months int) (int64, error) {
	if !c.AllowsSubscription || !AllowedSubscriptionMonths[months] {
		return 0, domain.ErrInvalidArgument
	}
	var p *int64
	switch months {
	case 1:
		p = c.SubPrice1MCents
	case 3:
		p = c.SubPrice3MCents
	case 6:
		p = c.SubPrice6MCents
	}
	if p == nil {
		return 0, domain.ErrInvalidArgument
	}
	return *p, nil
}
