package repository

import (
	"context"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/sangkips/devis-eau-api/pkg/pagination"
)

// QuoteRepository defines the interface for devis data operations
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id uint) (*entity.Quote, error)
	// GetWithLines loads the quote with its client and lines.
	GetWithLines(ctx context.Context, id uint) (*entity.Quote, error)
	Update(ctx context.Context, quote *entity.Quote) error
	UpdateStatus(ctx context.Context, id uint, status enum.QuoteStatus) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params *QuoteFilterParams) ([]entity.Quote, int64, error)
	CountByClient(ctx context.Context, clientID uint) (int64, error)
}

// QuoteFilterParams contains filtering parameters for quote queries
type QuoteFilterParams struct {
	Pagination  *pagination.PaginationParams
	Search      string
	Status      *enum.QuoteStatus
	ClientID    *uint
	DossierType *enum.DossierType
}

// QuoteLineRepository defines the interface for quote line data operations
type QuoteLineRepository interface {
	CreateBatch(ctx context.Context, lines []entity.QuoteLine) error
	DeleteByQuoteID(ctx context.Context, quoteID uint) error
}

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uint) (*entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	Delete(ctx context.Context, id uint) error
}
