package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	domainRepo "github.com/sangkips/devis-eau-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tariffRepository struct {
	db *gorm.DB
}

// NewTariffRepository creates a new tariff repository
func NewTariffRepository(db *gorm.DB) domainRepo.TariffRepository {
	return &tariffRepository{db: db}
}

// newestFirst orders tariffs by validFrom then id, both descending
var newestFirst = []clause.OrderByColumn{
	{Column: col("DateDebut"), Desc: true},
	{Column: col("TarifID"), Desc: true},
}

func orderNewestFirst(db *gorm.DB) *gorm.DB {
	for _, o := range newestFirst {
		db = db.Order(o)
	}
	return db
}

func (r *tariffRepository) Create(ctx context.Context, tariff *entity.Tariff) error {
	return dbFromContext(ctx, r.db).Create(tariff).Error
}

func (r *tariffRepository) GetByID(ctx context.Context, id uint) (*entity.Tariff, error) {
	var tariff entity.Tariff
	err := dbFromContext(ctx, r.db).First(&tariff, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tariff, err
}

func (r *tariffRepository) Update(ctx context.Context, tariff *entity.Tariff) error {
	return dbFromContext(ctx, r.db).Save(tariff).Error
}

func (r *tariffRepository) Delete(ctx context.Context, id uint) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Tariff{}, id).Error
}

func (r *tariffRepository) Close(ctx context.Context, id uint, at time.Time) error {
	return dbFromContext(ctx, r.db).
		Model(&entity.Tariff{ID: id}).
		Update("ValidUntil", at).Error
}

func (r *tariffRepository) List(ctx context.Context, params *domainRepo.TariffFilterParams) ([]entity.Tariff, int64, error) {
	var tariffs []entity.Tariff
	var total int64

	query := dbFromContext(ctx, r.db).Model(&entity.Tariff{})
	if params.ServiceType != nil {
		query = query.Scopes(serviceTypeIs(*params.ServiceType))
	}
	if params.ActiveAt != nil {
		query = query.Scopes(ActiveAt("DateFin", *params.ActiveAt))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Scopes(orderNewestFirst, Paginate(params.Pagination)).
		Find(&tariffs).Error
	return tariffs, total, err
}

func (r *tariffRepository) ListActive(ctx context.Context, serviceType enum.ServiceType, at time.Time) ([]entity.Tariff, error) {
	var tariffs []entity.Tariff
	err := dbFromContext(ctx, r.db).
		Scopes(serviceTypeIs(serviceType), ActiveAt("DateFin", at), orderNewestFirst).
		Find(&tariffs).Error
	return tariffs, err
}

func (r *tariffRepository) ListAll(ctx context.Context) ([]entity.Tariff, error) {
	var tariffs []entity.Tariff
	err := dbFromContext(ctx, r.db).
		Order(clause.OrderByColumn{Column: col("TypePrestation")}).
		Scopes(orderNewestFirst).
		Find(&tariffs).Error
	return tariffs, err
}

// serviceTypeIs matches the service type trimmed and case-insensitively
func serviceTypeIs(st enum.ServiceType) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("UPPER(TRIM(?)) = ?", col("TypePrestation"), strings.ToUpper(strings.TrimSpace(string(st))))
	}
}
