package model

import (
	"time"

	"academy-payments/internal/domain"
)

// Course is a purchasable catalog entry with a price in minor units.
type Course struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Currency    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Course) IsZero() bool { return c == nil || c.ID == "" }

// NewCourse validates and constructs a course.
func NewCourse(id, name, description string, price int64, currency string) (*Course, error) {
	if id == "" || name == "" || price <= 0 || currency == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Course{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Currency:    currency,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
