package repository

import (
	"context"
	"errors"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	domainRepo "github.com/sangkips/devis-eau-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type quoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new devis repository
func NewQuoteRepository(db *gorm.DB) domainRepo.QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	return dbFromContext(ctx, r.db).Omit(clause.Associations).Create(quote).Error
}

func (r *quoteRepository) GetByID(ctx context.Context, id uint) (*entity.Quote, error) {
	var quote entity.Quote
	err := dbFromContext(ctx, r.db).
		Preload("Client").
		First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &quote, err
}

func (r *quoteRepository) GetWithLines(ctx context.Context, id uint) (*entity.Quote, error) {
	var quote entity.Quote
	err := dbFromContext(ctx, r.db).
		Preload("Client").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: col("LigneID")})
		}).
		First(&quote, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &quote, err
}

func (r *quoteRepository) Update(ctx context.Context, quote *entity.Quote) error {
	return dbFromContext(ctx, r.db).Omit(clause.Associations).Save(quote).Error
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id uint, status enum.QuoteStatus) error {
	return dbFromContext(ctx, r.db).
		Model(&entity.Quote{ID: id}).
		Update("Status", status).Error
}

func (r *quoteRepository) Delete(ctx context.Context, id uint) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Quote{}, id).Error
}

func (r *quoteRepository) List(ctx context.Context, params *domainRepo.QuoteFilterParams) ([]entity.Quote, int64, error) {
	var quotes []entity.Quote
	var total int64

	query := dbFromContext(ctx, r.db).Model(&entity.Quote{})

	if params.Search != "" {
		query = query.Scopes(Search(params.Search, "NumeroDevis", "Observations"))
	}
	if params.Status != nil {
		query = query.Where(&entity.Quote{Status: *params.Status})
	}
	if params.ClientID != nil {
		query = query.Where(&entity.Quote{ClientID: *params.ClientID})
	}
	if params.DossierType != nil {
		query = query.Where(&entity.Quote{DossierType: *params.DossierType})
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Client").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: col("LigneID")})
		}).
		Order(clause.OrderByColumn{Column: col("DateDevis"), Desc: true}).
		Order(clause.OrderByColumn{Column: col("DevisID"), Desc: true}).
		Scopes(Paginate(params.Pagination)).
		Find(&quotes).Error
	return quotes, total, err
}

func (r *quoteRepository) CountByClient(ctx context.Context, clientID uint) (int64, error) {
	var count int64
	err := dbFromContext(ctx, r.db).
		Model(&entity.Quote{}).
		Where(&entity.Quote{ClientID: clientID}).
		Count(&count).Error
	return count, err
}

type quoteLineRepository struct {
	db *gorm.DB
}

// NewQuoteLineRepository creates a new quote line repository
func NewQuoteLineRepository(db *gorm.DB) domainRepo.QuoteLineRepository {
	return &quoteLineRepository{db: db}
}

func (r *quoteLineRepository) CreateBatch(ctx context.Context, lines []entity.QuoteLine) error {
	if len(lines) == 0 {
		return nil
	}
	return dbFromContext(ctx, r.db).Create(&lines).Error
}

func (r *quoteLineRepository) DeleteByQuoteID(ctx context.Context, quoteID uint) error {
	return dbFromContext(ctx, r.db).
		Where(&entity.QuoteLine{QuoteID: quoteID}).
		Delete(&entity.QuoteLine{}).Error
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) domainRepo.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	return dbFromContext(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, id uint) (*entity.Sale, error) {
	var sale entity.Sale
	err := dbFromContext(ctx, r.db).First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sale, err
}

func (r *saleRepository) Update(ctx context.Context, sale *entity.Sale) error {
	return dbFromContext(ctx, r.db).Save(sale).Error
}

func (r *saleRepository) Delete(ctx context.Context, id uint) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Sale{}, id).Error
}
