package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/medvault/medvault_backend/internal/model"
)

type UserRepo interface {
	Create(ctx context.Context, u model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

type ProfileRepo interface {
	Create(ctx context.Context, p model.Profile) error
}
