package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/sangkips/devis-eau-api/internal/domain/pricing"
	"github.com/sangkips/devis-eau-api/internal/domain/repository"
	"github.com/sangkips/devis-eau-api/internal/observability/metrics"
	"github.com/sangkips/devis-eau-api/pkg/apperror"
	"github.com/sangkips/devis-eau-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TariffService handles tariff catalog operations. Writes are serialized per
// service type inside this process and run the duplicate check and the write
// in one transaction; two API processes writing the same type concurrently
// are not serialized.
type TariffService struct {
	tariffRepo repository.TariffRepository
	transactor repository.Transactor
	guard      *pricing.Guard
	resolver   *pricing.Resolver
	metrics    *metrics.Recorder
	log        *zap.Logger
	locks      *keyedLock
	now        func() time.Time
}

// NewTariffService creates a new tariff service
func NewTariffService(
	tariffRepo repository.TariffRepository,
	transactor repository.Transactor,
	resolver *pricing.Resolver,
	recorder *metrics.Recorder,
	log *zap.Logger,
) *TariffService {
	s := &TariffService{
		tariffRepo: tariffRepo,
		transactor: transactor,
		resolver:   resolver,
		metrics:    recorder,
		log:        log.Named("tariff.service"),
		locks:      newKeyedLock(),
		now:        time.Now,
	}
	s.guard = pricing.NewGuard(tariffRepo, func() time.Time { return s.now() })
	return s
}

// TariffInput represents the input for creating or editing a tariff
type TariffInput struct {
	ServiceType      string
	UnitPriceExclTax decimal.Decimal
	TaxRate          decimal.Decimal
	ReferenceVolume  *int
	ValidFrom        *time.Time
	ValidUntil       *time.Time
	Description      *string
}

func (in *TariffInput) draft(now time.Time) pricing.TariffDraft {
	validFrom := now
	if in.ValidFrom != nil {
		validFrom = *in.ValidFrom
	}
	return pricing.TariffDraft{
		ServiceType:      enum.ServiceType(in.ServiceType),
		UnitPriceExclTax: in.UnitPriceExclTax,
		TaxRate:          in.TaxRate,
		ReferenceVolume:  in.ReferenceVolume,
		ValidFrom:        validFrom,
		ValidUntil:       in.ValidUntil,
		Description:      in.Description,
	}.Normalized()
}

// CreateTariff adds a tariff to the catalog. A tariff colliding with an
// active one of the same service type (and reference volume for TRANSPORT)
// is rejected with a 409 naming the existing tariff.
func (s *TariffService) CreateTariff(ctx context.Context, input *TariffInput) (*entity.Tariff, error) {
	draft := input.draft(s.now())
	if err := draft.Validate(); err != nil {
		return nil, mapPricingError(err)
	}

	release, err := s.locks.Acquire(ctx, draft.ServiceType.String())
	if err != nil {
		return nil, err
	}
	defer release()

	var tariff entity.Tariff
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.guard.Check(ctx, draft, nil); err != nil {
			return err
		}
		draft.Apply(&tariff)
		return s.tariffRepo.Create(ctx, &tariff)
	})
	if err != nil {
		s.recordConflict(err)
		return nil, mapPricingError(err)
	}

	s.log.Info("tariff created",
		zap.Uint("tariff_id", tariff.ID),
		zap.String("service_type", tariff.ServiceType.String()),
		zap.String("unit_price_ht", tariff.UnitPriceExclTax.String()),
	)
	return &tariff, nil
}

// UpdateTariff edits a tariff. The duplicate check ignores the tariff itself.
func (s *TariffService) UpdateTariff(ctx context.Context, id uint, input *TariffInput) (*entity.Tariff, error) {
	existing, err := s.tariffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperror.NewNotFoundError("Tariff")
	}

	if input.ValidFrom == nil {
		input.ValidFrom = &existing.ValidFrom
	}
	draft := input.draft(s.now())
	if err := draft.Validate(); err != nil {
		return nil, mapPricingError(err)
	}

	release, err := s.locks.Acquire(ctx, existing.ServiceType.String(), draft.ServiceType.String())
	if err != nil {
		return nil, err
	}
	defer release()

	var tariff *entity.Tariff
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.tariffRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NewNotFoundError("Tariff")
		}
		if err := s.guard.Check(ctx, draft, &id); err != nil {
			return err
		}
		draft.Apply(current)
		tariff = current
		return s.tariffRepo.Update(ctx, current)
	})
	if err != nil {
		s.recordConflict(err)
		return nil, mapPricingError(err)
	}

	s.log.Info("tariff updated", zap.Uint("tariff_id", id), zap.String("service_type", tariff.ServiceType.String()))
	return tariff, nil
}

// CloseTariff ends a tariff's validity now, keeping it in the history
func (s *TariffService) CloseTariff(ctx context.Context, id uint) (*entity.Tariff, error) {
	now := s.now()
	var tariff *entity.Tariff
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.tariffRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NewNotFoundError("Tariff")
		}
		if !current.IsActiveAt(now) {
			return apperror.NewUnprocessableError("Tariff is already closed")
		}
		if err := s.tariffRepo.Close(ctx, id, now); err != nil {
			return err
		}
		current.ValidUntil = &now
		tariff = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tariff closed", zap.Uint("tariff_id", id), zap.Time("valid_until", now))
	return tariff, nil
}

// DeleteTariff removes a tariff from the catalog
func (s *TariffService) DeleteTariff(ctx context.Context, id uint) error {
	tariff, err := s.tariffRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tariff == nil {
		return apperror.NewNotFoundError("Tariff")
	}
	if err := s.tariffRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("tariff deleted", zap.Uint("tariff_id", id))
	return nil
}

// GetTariff retrieves a tariff by ID
func (s *TariffService) GetTariff(ctx context.Context, id uint) (*entity.Tariff, error) {
	tariff, err := s.tariffRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tariff == nil {
		return nil, apperror.NewNotFoundError("Tariff")
	}
	return tariff, nil
}

// ListTariffsInput represents the tariff list filters
type ListTariffsInput struct {
	Pagination  *pagination.PaginationParams
	ServiceType string
	ActiveOnly  bool
}

// ListTariffs returns the catalog, newest first
func (s *TariffService) ListTariffs(ctx context.Context, input *ListTariffsInput) (*pagination.PaginatedResult[entity.Tariff], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	params := &repository.TariffFilterParams{Pagination: input.Pagination}
	if input.ServiceType != "" {
		st, ok := enum.ParseServiceType(input.ServiceType)
		if !ok {
			return nil, validationError("service_type", "must be one of CITERNAGE, TRANSPORT, VOL, ESSAI")
		}
		params.ServiceType = &st
	}
	if input.ActiveOnly {
		now := s.now()
		params.ActiveAt = &now
	}

	tariffs, total, err := s.tariffRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(tariffs, p), nil
}

// ResolveTariff returns the price a dossier type is quoted at on the given
// date (now when nil).
func (s *TariffService) ResolveTariff(ctx context.Context, dossierType string, date *time.Time) (*pricing.ServiceTariff, error) {
	dt, ok := enum.ParseDossierType(dossierType)
	if !ok {
		return nil, validationError("dossier_type", "must be one of CITERNAGE, PROCES_VOL, ESSAI_RESEAU")
	}
	asOf := s.now()
	if date != nil {
		asOf = *date
	}
	st, err := s.resolver.ResolveServiceTariff(ctx, dt, asOf)
	if err != nil {
		if errors.Is(err, pricing.ErrTariffNotFound) {
			if code, ok := dt.ServiceType(); ok {
				s.metrics.RecordTariffNotFound(code.String())
			}
		}
		return nil, mapPricingError(err)
	}
	return st, nil
}

// ResolveTransport returns the transport price per tank for a volume
func (s *TariffService) ResolveTransport(ctx context.Context, volume, defaultPrice decimal.Decimal) (pricing.TransportPrice, error) {
	if volume.LessThan(pricing.MinVolumePerTank) || volume.GreaterThan(pricing.MaxVolumePerTank) {
		return pricing.TransportPrice{}, validationError("volume", "must be between 1 and 500")
	}
	if defaultPrice.IsNegative() {
		return pricing.TransportPrice{}, validationError("default_price", "must not be negative")
	}
	return s.resolver.ResolveTransportTariff(ctx, volume, defaultPrice, s.now())
}

// CatalogConflict is a group of active tariffs breaking the uniqueness rule
type CatalogConflict struct {
	ServiceType     enum.ServiceType
	ReferenceVolume *int
	TariffIDs       []uint
}

func (c CatalogConflict) String() string {
	ids := make([]string, len(c.TariffIDs))
	for i, id := range c.TariffIDs {
		ids[i] = fmt.Sprint(id)
	}
	key := c.ServiceType.String()
	if c.ReferenceVolume != nil {
		key = fmt.Sprintf("%s/%d", key, *c.ReferenceVolume)
	}
	return key + ": " + strings.Join(ids, ", ")
}

// CheckCatalog scans the whole catalog for active tariffs that share a
// service type (and reference volume for TRANSPORT). Rows written before the
// duplicate check existed can still collide.
func (s *TariffService) CheckCatalog(ctx context.Context) ([]CatalogConflict, error) {
	tariffs, err := s.tariffRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	active := pricing.ActiveAt(tariffs, s.now())
	pricing.SortByRecency(active)

	type groupKey struct {
		serviceType enum.ServiceType
		ref         string
	}
	groups := make(map[groupKey]*CatalogConflict)
	var order []groupKey
	for _, t := range active {
		st, _ := enum.ParseServiceType(t.ServiceType.String())
		key := groupKey{serviceType: st}
		if st == enum.ServiceTypeTransport && t.ReferenceVolume != nil {
			key.ref = fmt.Sprint(*t.ReferenceVolume)
		}
		g, ok := groups[key]
		if !ok {
			g = &CatalogConflict{ServiceType: st}
			if key.ref != "" {
				ref := *t.ReferenceVolume
				g.ReferenceVolume = &ref
			}
			groups[key] = g
			order = append(order, key)
		}
		g.TariffIDs = append(g.TariffIDs, t.ID)
	}

	var conflicts []CatalogConflict
	for _, key := range order {
		if g := groups[key]; len(g.TariffIDs) > 1 {
			conflicts = append(conflicts, *g)
		}
	}
	return conflicts, nil
}

func (s *TariffService) recordConflict(err error) {
	var dup *pricing.DuplicateTariffError
	if errors.As(err, &dup) {
		s.metrics.RecordTariffConflict(dup.ServiceType.String())
		s.log.Warn("duplicate tariff rejected",
			zap.Uint("existing_tariff_id", dup.ExistingID),
			zap.String("service_type", dup.ServiceType.String()),
		)
	}
}
