package repository

import (
	"context"

	"academy-payments/internal/domain/model"
)

type CourseRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Course) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Course, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Course, error)
}
