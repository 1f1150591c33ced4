package repository

import (
	"context"
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/sangkips/devis-eau-api/pkg/pagination"
)

// TariffRepository defines the interface for tariff data operations
type TariffRepository interface {
	Create(ctx context.Context, tariff *entity.Tariff) error
	GetByID(ctx context.Context, id uint) (*entity.Tariff, error)
	Update(ctx context.Context, tariff *entity.Tariff) error
	Delete(ctx context.Context, id uint) error
	// Close ends the validity of a tariff at the given instant.
	Close(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context, params *TariffFilterParams) ([]entity.Tariff, int64, error)
	// ListActive returns the tariffs of a service type still in force at the
	// given instant, newest first.
	ListActive(ctx context.Context, serviceType enum.ServiceType, at time.Time) ([]entity.Tariff, error)
	ListAll(ctx context.Context) ([]entity.Tariff, error)
}

// TariffFilterParams contains filtering parameters for tariff queries
type TariffFilterParams struct {
	Pagination  *pagination.PaginationParams
	ServiceType *enum.ServiceType
	ActiveAt    *time.Time
}
