package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	domainRepo "github.com/sangkips/devis-eau-api/internal/domain/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return dbFromContext(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var user entity.User
	err := dbFromContext(ctx, r.db).Preload("Role").First(&user, entity.User{ID: id}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if email == "" {
		return nil, nil
	}
	var user entity.User
	err := dbFromContext(ctx, r.db).Preload("Role").First(&user, entity.User{Email: email}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) domainRepo.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	var role entity.Role
	err := dbFromContext(ctx, r.db).First(&role, entity.Role{Name: name}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &role, err
}

func (r *roleRepository) FirstOrCreate(ctx context.Context, name string) (*entity.Role, error) {
	role := entity.Role{Name: name}
	if err := dbFromContext(ctx, r.db).Where(entity.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
