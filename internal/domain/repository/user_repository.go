package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/devis-eau-api/internal/domain/entity"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// RoleRepository defines the interface for role data operations
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	// FirstOrCreate returns the role with the given name, creating it if needed.
	FirstOrCreate(ctx context.Context, name string) (*entity.Role, error)
}
