package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", " SQLServer ")
	t.Setenv("DB_PORT", "1433")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	assert.Error(t, err, "no .env in an empty directory")
	require.NotNil(t, cfg)

	assert.Equal(t, "devis-eau-api", cfg.App.Name)
	assert.Equal(t, "sqlserver", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpiryHours)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQuery)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", User: "u", Password: "p", Name: "devis", Port: "5432", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=devis port=5432 sslmode=disable TimeZone=UTC", pg.DSN())

	ms := DatabaseConfig{Driver: "sqlserver", Host: "db", User: "sa", Password: "p", Name: "GestionEau", Port: "1433"}
	assert.Equal(t, "sqlserver://sa:p@db:1433?database=GestionEau", ms.DSN())

	lite := DatabaseConfig{Driver: "sqlite", Path: "file::memory:"}
	assert.Equal(t, "file::memory:", lite.DSN())
}
