package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/sangkips/devis-eau-api/internal/domain/pricing"
	"github.com/sangkips/devis-eau-api/internal/domain/repository"
	"github.com/sangkips/devis-eau-api/internal/observability/metrics"
	"github.com/sangkips/devis-eau-api/pkg/apperror"
	"github.com/sangkips/devis-eau-api/pkg/pagination"
	"github.com/sangkips/devis-eau-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteService handles devis pricing and persistence. Every write prices the
// quote and stores the sale, the devis and its lines in one transaction.
type QuoteService struct {
	quoteRepo  repository.QuoteRepository
	lineRepo   repository.QuoteLineRepository
	saleRepo   repository.SaleRepository
	clientRepo repository.ClientRepository
	transactor repository.Transactor
	resolver   *pricing.Resolver
	metrics    *metrics.Recorder
	log        *zap.Logger
	now        func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	lineRepo repository.QuoteLineRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
	transactor repository.Transactor,
	resolver *pricing.Resolver,
	recorder *metrics.Recorder,
	log *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:  quoteRepo,
		lineRepo:   lineRepo,
		saleRepo:   saleRepo,
		clientRepo: clientRepo,
		transactor: transactor,
		resolver:   resolver,
		metrics:    recorder,
		log:        log.Named("quote.service"),
		now:        time.Now,
	}
}

// QuoteLineInput represents one tank row
type QuoteLineInput struct {
	TankCount        int
	VolumePerTank    decimal.Decimal
	IncludeTransport bool
}

// PriceQuoteInput is what pricing a quote needs
type PriceQuoteInput struct {
	DossierType string
	// Date is the quote date tariffs are resolved at; now when nil.
	Date  *time.Time
	Lines []QuoteLineInput
	// TransportPrice is the manual per-tank transport price used when no
	// transport tariff matches a tank volume.
	TransportPrice *decimal.Decimal
	// TransportTaxRate is used when no TRANSPORT tariff is active. It may be
	// typed as a percentage.
	TransportTaxRate *decimal.Decimal
}

// PricedQuote is the outcome of pricing a quote
type PricedQuote struct {
	DossierType enum.DossierType
	Date        time.Time
	Water       *pricing.ServiceTariff
	Totals      pricing.Totals
}

// PreviewQuote prices a quote without storing anything
func (s *QuoteService) PreviewQuote(ctx context.Context, input *PriceQuoteInput) (*PricedQuote, error) {
	priced, err := s.price(ctx, input)
	if err != nil {
		return nil, mapPricingError(err)
	}
	return priced, nil
}

func (s *QuoteService) price(ctx context.Context, input *PriceQuoteInput) (*PricedQuote, error) {
	start := time.Now()

	var verrs pricing.ValidationErrors
	dossierType, ok := enum.ParseDossierType(input.DossierType)
	if !ok {
		verrs.Add("dossier_type", "must be one of CITERNAGE, PROCES_VOL, ESSAI_RESEAU")
	}
	if input.TransportPrice != nil && input.TransportPrice.IsNegative() {
		verrs.Add("transport_price", "must not be negative")
	}
	var manualTransportRate *decimal.Decimal
	if input.TransportTaxRate != nil {
		r := pricing.RoundRate(pricing.NormalizeTaxRate(*input.TransportTaxRate))
		if r.IsNegative() || r.GreaterThan(pricing.MaxTaxRate) {
			verrs.Add("transport_tax_rate", "must be between 0 and "+pricing.MaxTaxRate.String())
		}
		manualTransportRate = &r
	}

	lines := make([]pricing.Line, len(input.Lines))
	needTransport := dossierType.RequiresTransport()
	for i, l := range input.Lines {
		lines[i] = pricing.Line{
			TankCount:        l.TankCount,
			VolumePerTank:    l.VolumePerTank,
			IncludeTransport: l.IncludeTransport,
		}
		needTransport = needTransport || l.IncludeTransport
	}
	if err := pricing.ValidateLines(lines); err != nil {
		var lineErrs pricing.ValidationErrors
		if errors.As(err, &lineErrs) {
			verrs = append(verrs, lineErrs...)
		}
	}
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	asOf := s.now()
	date := asOf
	if input.Date != nil {
		asOf = *input.Date
		date = *input.Date
	}

	water, err := s.resolver.ResolveServiceTariff(ctx, dossierType, asOf)
	if err != nil {
		if errors.Is(err, pricing.ErrTariffNotFound) {
			if code, ok := dossierType.ServiceType(); ok {
				s.metrics.RecordTariffNotFound(code.String())
			}
		}
		return nil, err
	}

	transportRate := water.TaxRate
	var pricer pricing.TransportPricer
	if needTransport {
		brackets, err := s.resolver.LoadTransportBrackets(ctx, asOf)
		if err != nil {
			return nil, err
		}
		defaultPrice := decimal.Zero
		if input.TransportPrice != nil {
			defaultPrice = *input.TransportPrice
		}
		pricer = func(volume decimal.Decimal) pricing.TransportPrice {
			return brackets.Price(volume, defaultPrice)
		}

		transport, err := s.resolver.ResolveByServiceType(ctx, enum.ServiceTypeTransport, asOf)
		switch {
		case err == nil:
			transportRate = transport.TaxRate
		case errors.Is(err, pricing.ErrTariffNotFound):
			if manualTransportRate != nil {
				transportRate = *manualTransportRate
			}
		default:
			return nil, err
		}
	}

	totals := pricing.ComputeTotals(lines, water.UnitPriceExclTax, water.TaxRate, transportRate, pricer)
	s.metrics.RecordPricing(len(lines), time.Since(start))

	return &PricedQuote{
		DossierType: dossierType,
		Date:        date,
		Water:       water,
		Totals:      totals,
	}, nil
}

// CreateQuoteInput represents the input for creating a quote
type CreateQuoteInput struct {
	UserID   uuid.UUID
	ClientID uint
	Status   string
	Notes    *string
	PriceQuoteInput
}

// CreateQuote prices and stores a new quote with its sale record
func (s *QuoteService) CreateQuote(ctx context.Context, input *CreateQuoteInput) (*entity.Quote, error) {
	status, ok := enum.ParseQuoteStatus(input.Status)
	if !ok {
		return nil, validationError("status", "must be one of EN ATTENTE, ACCEPTE, REFUSE")
	}
	if len(input.Lines) == 0 {
		return nil, validationError("lines", "at least one tank line is required")
	}

	var quoteID uint
	var dossierType enum.DossierType
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureClient(ctx, input.ClientID); err != nil {
			return err
		}
		priced, err := s.price(ctx, &input.PriceQuoteInput)
		if err != nil {
			return err
		}
		dossierType = priced.DossierType
		saleType, _ := priced.DossierType.SaleType()

		sale := &entity.Sale{
			ClientID:  input.ClientID,
			UserID:    input.UserID,
			Type:      saleType,
			Date:      priced.Date,
			AmountTTC: priced.Totals.TotalTTC,
		}
		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		quote := &entity.Quote{
			ClientID:    input.ClientID,
			SaleID:      sale.ID,
			UserID:      input.UserID,
			DossierType: priced.DossierType,
			Date:        priced.Date,
			Status:      status,
			Notes:       input.Notes,
			QuoteTotals: priced.Totals.Snapshot(),
		}
		if err := s.quoteRepo.Create(ctx, quote); err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		quote.Reference = utils.QuoteReference(quote.Date, quote.ID)
		if err := s.quoteRepo.Update(ctx, quote); err != nil {
			return fmt.Errorf("set quote reference: %w", err)
		}

		if err := s.lineRepo.CreateBatch(ctx, priced.Totals.QuoteLines(quote.ID, sale.ID)); err != nil {
			return fmt.Errorf("create quote lines: %w", err)
		}
		quoteID = quote.ID
		return nil
	})
	if err != nil {
		return nil, mapPricingError(err)
	}

	s.metrics.RecordQuoteWrite("create", dossierType.String())
	s.log.Info("quote created", zap.Uint("quote_id", quoteID), zap.Uint("client_id", input.ClientID))
	return s.GetQuote(ctx, quoteID)
}

// UpdateQuoteInput represents the input for editing a quote
type UpdateQuoteInput struct {
	ID       uint
	ClientID uint
	Status   *string
	Notes    *string
	PriceQuoteInput
}

// UpdateQuote re-prices a quote. Its lines are deleted and recreated.
func (s *QuoteService) UpdateQuote(ctx context.Context, input *UpdateQuoteInput) (*entity.Quote, error) {
	if len(input.Lines) == 0 {
		return nil, validationError("lines", "at least one tank line is required")
	}

	var dossierType enum.DossierType
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		quote, err := s.quoteRepo.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if quote == nil {
			return apperror.NewNotFoundError("Quote")
		}
		if input.Status != nil {
			status, ok := enum.ParseQuoteStatus(*input.Status)
			if !ok {
				return validationError("status", "must be one of EN ATTENTE, ACCEPTE, REFUSE")
			}
			quote.Status = status
		}
		if input.ClientID != 0 && input.ClientID != quote.ClientID {
			if err := s.ensureClient(ctx, input.ClientID); err != nil {
				return err
			}
			quote.ClientID = input.ClientID
		}

		priced, err := s.price(ctx, &input.PriceQuoteInput)
		if err != nil {
			return err
		}
		dossierType = priced.DossierType
		saleType, _ := priced.DossierType.SaleType()

		if err := s.lineRepo.DeleteByQuoteID(ctx, quote.ID); err != nil {
			return fmt.Errorf("delete quote lines: %w", err)
		}

		sale, err := s.saleRepo.GetByID(ctx, quote.SaleID)
		if err != nil {
			return err
		}
		if sale == nil {
			sale = &entity.Sale{UserID: quote.UserID}
		}
		sale.ClientID = quote.ClientID
		sale.Type = saleType
		sale.Date = priced.Date
		sale.AmountTTC = priced.Totals.TotalTTC
		if sale.ID == 0 {
			err = s.saleRepo.Create(ctx, sale)
		} else {
			err = s.saleRepo.Update(ctx, sale)
		}
		if err != nil {
			return fmt.Errorf("save sale: %w", err)
		}

		quote.SaleID = sale.ID
		quote.DossierType = priced.DossierType
		quote.Date = priced.Date
		quote.Notes = input.Notes
		quote.QuoteTotals = priced.Totals.Snapshot()
		quote.Client = nil
		if err := s.quoteRepo.Update(ctx, quote); err != nil {
			return fmt.Errorf("update quote: %w", err)
		}

		return s.lineRepo.CreateBatch(ctx, priced.Totals.QuoteLines(quote.ID, sale.ID))
	})
	if err != nil {
		return nil, mapPricingError(err)
	}

	s.metrics.RecordQuoteWrite("update", dossierType.String())
	s.log.Info("quote updated", zap.Uint("quote_id", input.ID))
	return s.GetQuote(ctx, input.ID)
}

// UpdateQuoteStatus changes the status of a quote
func (s *QuoteService) UpdateQuoteStatus(ctx context.Context, id uint, status string) (*entity.Quote, error) {
	st, ok := enum.ParseQuoteStatus(status)
	if !ok || status == "" {
		return nil, validationError("status", "must be one of EN ATTENTE, ACCEPTE, REFUSE")
	}
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}
	if err := s.quoteRepo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	s.log.Info("quote status changed", zap.Uint("quote_id", id), zap.String("status", st.String()))
	return s.GetQuote(ctx, id)
}

// DeleteQuote removes a quote, its lines and its sale record
func (s *QuoteService) DeleteQuote(ctx context.Context, id uint) error {
	var dossierType enum.DossierType
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		quote, err := s.quoteRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return apperror.NewNotFoundError("Quote")
		}
		dossierType = quote.DossierType
		if err := s.lineRepo.DeleteByQuoteID(ctx, id); err != nil {
			return err
		}
		if err := s.quoteRepo.Delete(ctx, id); err != nil {
			return err
		}
		if quote.SaleID != 0 {
			return s.saleRepo.Delete(ctx, quote.SaleID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordQuoteWrite("delete", dossierType.String())
	s.log.Info("quote deleted", zap.Uint("quote_id", id))
	return nil
}

// GetQuote retrieves a quote with its lines. Totals are recomputed from the
// prices frozen on the lines rather than trusted from the stored snapshot.
func (s *QuoteService) GetQuote(ctx context.Context, id uint) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}
	recomputeTotals(quote)
	return quote, nil
}

// ListQuotesInput represents the quote list filters
type ListQuotesInput struct {
	Pagination  *pagination.PaginationParams
	Search      string
	Status      string
	ClientID    string
	DossierType string
}

// ListQuotes returns quotes, most recent first
func (s *QuoteService) ListQuotes(ctx context.Context, input *ListQuotesInput) (*pagination.PaginatedResult[entity.Quote], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	params := &repository.QuoteFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
	}
	if input.Status != "" {
		st, ok := enum.ParseQuoteStatus(input.Status)
		if !ok {
			return nil, validationError("status", "must be one of EN ATTENTE, ACCEPTE, REFUSE")
		}
		params.Status = &st
	}
	if input.ClientID != "" {
		id, err := strconv.ParseUint(input.ClientID, 10, 64)
		if err != nil {
			return nil, validationError("client_id", "must be a positive integer")
		}
		clientID := uint(id)
		params.ClientID = &clientID
	}
	if input.DossierType != "" {
		dt, ok := enum.ParseDossierType(input.DossierType)
		if !ok {
			return nil, validationError("dossier_type", "must be one of CITERNAGE, PROCES_VOL, ESSAI_RESEAU")
		}
		params.DossierType = &dt
	}

	quotes, total, err := s.quoteRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		recomputeTotals(&quotes[i])
	}
	p := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(quotes, p), nil
}

func (s *QuoteService) ensureClient(ctx context.Context, clientID uint) error {
	if clientID == 0 {
		return validationError("client_id", "is required")
	}
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}
	return nil
}

// recomputeTotals derives a loaded quote's totals from its lines. All lines
// of a quote share the water price and the tax rates they were saved with.
func recomputeTotals(quote *entity.Quote) {
	if len(quote.Lines) == 0 {
		quote.QuoteTotals = pricing.ComputeTotals(nil, decimal.Zero, decimal.Zero, decimal.Zero, nil).Snapshot()
		return
	}
	first := quote.Lines[0]
	totals := pricing.ComputeTotals(
		pricing.LinesFromRows(quote.Lines),
		first.UnitPriceM3,
		first.WaterTaxRate,
		first.TransportTaxRate,
		nil,
	)
	quote.QuoteTotals = totals.Snapshot()
	for i := range quote.Lines {
		lt := totals.Lines[i]
		quote.Lines[i].LineVolume = lt.LineVolume
		quote.Lines[i].WaterHT = lt.WaterHT
		quote.Lines[i].TransportHT = lt.TransportHT
		quote.Lines[i].TransportTVA = lt.TransportTVA
	}
}
