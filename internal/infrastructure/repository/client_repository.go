package repository

import (
	"context"
	"errors"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	domainRepo "github.com/sangkips/devis-eau-api/internal/domain/repository"
	"github.com/sangkips/devis-eau-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return dbFromContext(ctx, r.db).Create(client).Error
}

func (r *clientRepository) GetByID(ctx context.Context, id uint) (*entity.Client, error) {
	var client entity.Client
	err := dbFromContext(ctx, r.db).First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	return dbFromContext(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uint) error {
	return dbFromContext(ctx, r.db).Delete(&entity.Client{}, id).Error
}

func (r *clientRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := dbFromContext(ctx, r.db).Model(&entity.Client{}).
		Scopes(Search(search, "Nom", "Email", "Telephone", "MatriculeFiscal"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order(clause.OrderByColumn{Column: col("Nom")}).
		Scopes(Paginate(params)).
		Find(&clients).Error
	return clients, total, err
}
