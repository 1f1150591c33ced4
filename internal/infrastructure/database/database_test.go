package database

import (
	"context"
	"strings"
	"testing"

	"github.com/sangkips/devis-eau-api/internal/config"
	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestPing(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, Ping(context.Background(), db))
}

func TestSeedDefaultData(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	admin := config.AdminConfig{Email: "admin@eau.tn", Password: "secret123", Name: "Admin"}

	require.NoError(t, SeedDefaultData(ctx, db, admin, zap.NewNop()))
	require.NoError(t, SeedDefaultData(ctx, db, admin, zap.NewNop()), "second run is a no-op")

	var roles int64
	require.NoError(t, db.Model(&entity.Role{}).Count(&roles).Error)
	assert.Equal(t, int64(2), roles)

	var user entity.User
	require.NoError(t, db.Preload("Role").First(&user, entity.User{Email: "admin@eau.tn"}).Error)
	assert.Equal(t, entity.RoleAdmin, user.Role.Name)
	assert.NotEqual(t, "secret123", user.Password)
}

func TestSeedDefaultData_WithoutAdmin(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, SeedDefaultData(context.Background(), db, config.AdminConfig{}, nil))

	var users int64
	require.NoError(t, db.Model(&entity.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
