package user

import (
	"context"

	"joulina-backend/internal/domain"
)

type CreateInput struct {
	PhoneNumber  string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
}

// Repository owns user rows. Create returns domain.ErrAlreadyExists when the
// phone number is taken.
type Repository interface {
	Create(ctx context.Context, in CreateInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*domain.User, error)
}
