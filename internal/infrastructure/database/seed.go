package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sangkips/devis-eau-api/internal/config"
	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedDefaultData creates the admin and agent roles, and the admin account
// when ADMIN_EMAIL and ADMIN_PASSWORD are set. It is safe to run repeatedly.
func SeedDefaultData(ctx context.Context, db *gorm.DB, admin config.AdminConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := make(map[string]entity.Role)
		for _, name := range []string{entity.RoleAdmin, entity.RoleAgent} {
			role := entity.Role{Name: name}
			if err := tx.Where(entity.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}
			roles[name] = role
		}

		if admin.Email == "" || admin.Password == "" {
			log.Info("admin account not configured, skipping")
			return nil
		}

		var existing entity.User
		err := tx.Where(entity.User{Email: admin.Email}).First(&existing).Error
		if err == nil {
			log.Info("admin account already exists", zap.String("email", admin.Email))
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := utils.HashPassword(admin.Password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		name := admin.Name
		if name == "" {
			name = "Administrateur"
		}
		user := entity.User{
			Name:     name,
			Email:    admin.Email,
			Password: hashed,
			RoleID:   roles[entity.RoleAdmin].ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create admin account: %w", err)
		}
		log.Info("admin account created", zap.String("email", admin.Email))
		return nil
	})
}
