package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	Path         string
	MaxIdleConns int
	MaxOpenConns int
	SlowQuery    time.Duration
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// AdminConfig is the account created by the seed step
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Load reads .env when present, then the environment. The returned error
// only reports a missing or unreadable .env file; defaults still apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	var readErr error
	if err := v.ReadInConfig(); err != nil {
		readErr = fmt.Errorf(".env not loaded, using environment variables: %w", err)
	}

	return fromViper(v), readErr
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "devis-eau-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "devis_eau")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Africa/Tunis")
	v.SetDefault("DB_PATH", "devis.db")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("DB_SLOW_QUERY_MS", 200)
	v.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,X-Request-Id")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("ADMIN_NAME", "Administrateur")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			Timezone:     v.GetString("DB_TIMEZONE"),
			Path:         v.GetString("DB_PATH"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			SlowQuery:    time.Duration(v.GetInt("DB_SLOW_QUERY_MS")) * time.Millisecond,
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			Name:     v.GetString("ADMIN_NAME"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN builds the connection string for the configured driver
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "sqlserver":
		return fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case "sqlite":
		return c.Path
	default:
		return "host=" + c.Host +
			" user=" + c.User +
			" password=" + c.Password +
			" dbname=" + c.Name +
			" port=" + c.Port +
			" sslmode=" + c.SSLMode +
			" TimeZone=" + c.Timezone
	}
}
