package model

import (
	"time"

	"academy-payments/internal/domain"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// User is an account on the platform. Phone is the default contact number
// offered on payment forms; it is stored as entered, not canonicalized.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Role         UserRole
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewUser(id, email, passwordHash, fullName, phone string, role UserRole) (*User, error) {
	if id == "" || email == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = RoleStudent
	}
	return &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Phone:        phone,
		Role:         role,
		RegisteredAt: time.Now(),
	}, nil
}
