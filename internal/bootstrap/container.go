// Package bootstrap wires configuration, storage and services together for
// the API server and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/sangkips/devis-eau-api/internal/application/service"
	"github.com/sangkips/devis-eau-api/internal/config"
	"github.com/sangkips/devis-eau-api/internal/domain/pricing"
	"github.com/sangkips/devis-eau-api/internal/infrastructure/database"
	"github.com/sangkips/devis-eau-api/internal/infrastructure/repository"
	"github.com/sangkips/devis-eau-api/internal/observability/metrics"
	"github.com/sangkips/devis-eau-api/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds the shared dependencies of one process
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *gorm.DB
	JWTManager *utils.JWTManager
	Metrics    *metrics.Recorder

	TariffService *service.TariffService
	QuoteService  *service.QuoteService
	ClientService *service.ClientService
	AuthService   *service.AuthService
}

// New opens the database and builds the services on top of it
func New(cfg *config.Config, log *zap.Logger) (*Container, error) {
	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewWithDB(cfg, log, db), nil
}

// NewWithDB builds the services on an already opened database
func NewWithDB(cfg *config.Config, log *zap.Logger, db *gorm.DB) *Container {
	recorder := metrics.NewRecorder()
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	tariffRepo := repository.NewTariffRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	quoteLineRepo := repository.NewQuoteLineRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	userRepo := repository.NewUserRepository(db)
	transactor := repository.NewTransactor(db)

	resolver := pricing.NewResolver(tariffRepo,
		pricing.WithLogger(log.Named("pricing")),
		pricing.WithFallbackHook(recorder.RecordTransportFallback),
	)

	return &Container{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		JWTManager:    jwtManager,
		Metrics:       recorder,
		TariffService: service.NewTariffService(tariffRepo, transactor, resolver, recorder, log),
		QuoteService:  service.NewQuoteService(quoteRepo, quoteLineRepo, saleRepo, clientRepo, transactor, resolver, recorder, log),
		ClientService: service.NewClientService(clientRepo, quoteRepo),
		AuthService:   service.NewAuthService(userRepo, jwtManager),
	}
}

// Migrate runs AutoMigrate and seeds roles and the admin account
func (c *Container) Migrate(ctx context.Context) error {
	if err := database.AutoMigrate(c.DB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return database.SeedDefaultData(ctx, c.DB, c.Config.Admin, c.Logger)
}

// Ping checks the database connection
func (c *Container) Ping(ctx context.Context) error {
	return database.Ping(ctx, c.DB)
}

// Close releases the database pool
func (c *Container) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
