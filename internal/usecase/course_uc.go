package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"academy-payments/internal/domain/model"
	"academy-payments/internal/domain/ports/repository"
)

// Compile-time check
var _ CourseUseCase = (*courseUC)(nil)

// CourseUseCase is the peripheral catalog collaborator: plain CRUD, no
// payment logic.
type CourseUseCase interface {
	Create(ctx context.Context, name, description string, price int64, currency string) (*model.Course, error)
	Update(ctx context.Context, c *model.Course) error
	Get(ctx context.Context, id string) (*model.Course, error)
	ListActive(ctx context.Context) ([]*model.Course, error)
}

type courseUC struct {
	courses repository.CourseRepository
	log     *zerolog.Logger
}

func NewCourseUseCase(courses repository.CourseRepository, logger *zerolog.Logger) *courseUC {
	return &courseUC{courses: courses, log: logger}
}

func (u *courseUC) Create(ctx context.Context, name, description string, price int64, currency string) (*model.Course, error) {
	c, err := model.NewCourse(uuid.NewString(), name, description, price, currency)
	if err != nil {
		return nil, err
	}
	if err := u.courses.Save(ctx, nil, c); err != nil {
		return nil, err
	}
	u.log.Info().Str("course_id", c.ID).Str("name", c.Name).Msg("course created")
	return c, nil
}

func (u *courseUC) Update(ctx context.Context, c *model.Course) error {
	c.UpdatedAt = time.Now()
	return u.courses.Save(ctx, nil, c)
}

func (u *courseUC) Get(ctx context.Context, id string) (*model.Course, error) {
	return u.courses.FindByID(ctx, nil, id)
}

func (u *courseUC) ListActive(ctx context.Context) ([]*model.Course, error) {
	return u.courses.ListActive(ctx, nil)
}
