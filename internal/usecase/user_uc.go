package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/model"
	"academy-payments/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase backs the session endpoints. The current user's phone is the
// default contact number shown on payment forms.
type UserUseCase interface {
	Register(ctx context.Context, email, password, fullName, phone string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, log: logger}
}

func (u *userUC) Register(ctx context.Context, email, password, fullName, phone string) (*model.User, error) {
	if email == "" || len(password) < 8 {
		return nil, domain.ErrInvalidArgument
	}
	if existing, err := u.users.FindByEmail(ctx, nil, email); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	usr, err := model.NewUser(uuid.NewString(), email, string(hash), fullName, phone, model.RoleStudent)
	if err != nil {
		return nil, err
	}
	if err := u.users.Save(ctx, nil, usr); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", usr.ID).Msg("user registered")
	return usr, nil
}

func (u *userUC) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	usr, err := u.users.FindByEmail(ctx, nil, email)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	_ = u.users.TouchLastActive(ctx, nil, usr.ID)
	return usr, nil
}

func (u *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	return u.users.FindByID(ctx, nil, id)
}
