package service

import (
	"context"
	"strings"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/repository"
	"github.com/sangkips/devis-eau-api/pkg/apperror"
	"github.com/sangkips/devis-eau-api/pkg/pagination"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo repository.ClientRepository
	quoteRepo  repository.QuoteRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository, quoteRepo repository.QuoteRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		quoteRepo:  quoteRepo,
	}
}

// ClientInput represents the input for creating or updating a client
type ClientInput struct {
	Name    string
	Address *string
	Phone   *string
	Email   *string
	TaxID   *string
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *ClientInput) (*entity.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name", "is required")
	}
	client := &entity.Client{
		Name:    name,
		Address: input.Address,
		Phone:   input.Phone,
		Email:   input.Email,
		TaxID:   input.TaxID,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uint) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients retrieves clients with pagination
func (s *ClientService) ListClients(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Client], error) {
	clients, total, err := s.clientRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(clients, p), nil
}

// UpdateClient updates a client
func (s *ClientService) UpdateClient(ctx context.Context, id uint, input *ClientInput) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		client.Name = name
	}
	if input.Address != nil {
		client.Address = input.Address
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.Email != nil {
		client.Email = input.Email
	}
	if input.TaxID != nil {
		client.TaxID = input.TaxID
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient deletes a client that has no quotes
func (s *ClientService) DeleteClient(ctx context.Context, id uint) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}
	count, err := s.quoteRepo.CountByClient(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.NewConflictErrorWithDetails("Client has quotes and cannot be deleted",
			map[string]interface{}{"quote_count": count})
	}
	return s.clientRepo.Delete(ctx, id)
}
