package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceTariff is the price a service is quoted at
type ServiceTariff struct {
	TariffID         uint
	ServiceType      enum.ServiceType
	UnitPriceExclTax decimal.Decimal
	TaxRate          decimal.Decimal
}

// TransportSource tells where a transport unit price came from
type TransportSource string

const (
	TransportSourceBracket  TransportSource = "bracket"
	TransportSourceCeiling  TransportSource = "ceiling"
	TransportSourceCatchAll TransportSource = "catch_all"
	TransportSourceDefault  TransportSource = "default"
	TransportSourceSnapshot TransportSource = "snapshot"
)

// TransportPrice is the per-tank transport price picked for one volume
type TransportPrice struct {
	UnitPrice decimal.Decimal
	TariffID  *uint
	Source    TransportSource
}

// Resolver maps dossiers and volumes to tariffs
type Resolver struct {
	catalog    TariffCatalog
	log        *zap.Logger
	onFallback func()
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithLogger sets the logger transport fallbacks are reported to
func WithLogger(log *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithFallbackHook registers fn to run every time a transport price falls
// back to the caller's default.
func WithFallbackHook(fn func()) ResolverOption {
	return func(r *Resolver) {
		r.onFallback = fn
	}
}

// NewResolver creates a resolver reading from catalog
func NewResolver(catalog TariffCatalog, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog: catalog,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveServiceTariff returns the price and tax rate a dossier is quoted at
// on asOf. Unknown dossier types and service types without an active tariff
// both yield ErrTariffNotFound.
func (r *Resolver) ResolveServiceTariff(ctx context.Context, dossierType enum.DossierType, asOf time.Time) (*ServiceTariff, error) {
	serviceType, ok := dossierType.ServiceType()
	if !ok {
		return nil, fmt.Errorf("%w: unknown dossier type %q", ErrTariffNotFound, dossierType)
	}
	return r.ResolveByServiceType(ctx, serviceType, asOf)
}

// ResolveByServiceType returns the most recent active tariff of a service type
func (r *Resolver) ResolveByServiceType(ctx context.Context, serviceType enum.ServiceType, asOf time.Time) (*ServiceTariff, error) {
	tariffs, err := r.catalog.ListActive(ctx, serviceType, asOf)
	if err != nil {
		return nil, fmt.Errorf("list %s tariffs: %w", serviceType, err)
	}
	t, ok := MostRecent(tariffs, asOf)
	if !ok {
		return nil, fmt.Errorf("%w for service type %s", ErrTariffNotFound, serviceType)
	}
	return &ServiceTariff{
		TariffID:         t.ID,
		ServiceType:      serviceType,
		UnitPriceExclTax: RoundPrice(t.UnitPriceExclTax),
		TaxRate:          RoundRate(t.TaxRate),
	}, nil
}

// LoadTransportBrackets reads the active TRANSPORT tariffs once so every line
// of a quote is priced against the same set.
func (r *Resolver) LoadTransportBrackets(ctx context.Context, asOf time.Time) (*TransportBrackets, error) {
	tariffs, err := r.catalog.ListActive(ctx, enum.ServiceTypeTransport, asOf)
	if err != nil {
		return nil, fmt.Errorf("list transport tariffs: %w", err)
	}
	b := NewTransportBrackets(ActiveAt(tariffs, asOf))
	b.log = r.log
	b.onFallback = r.onFallback
	return b, nil
}

// ResolveTransportTariff prices the transport of one tank of the given volume
func (r *Resolver) ResolveTransportTariff(ctx context.Context, volume, defaultPrice decimal.Decimal, asOf time.Time) (TransportPrice, error) {
	b, err := r.LoadTransportBrackets(ctx, asOf)
	if err != nil {
		return TransportPrice{}, err
	}
	return b.Price(volume, defaultPrice), nil
}

// TransportBrackets is the set of active TRANSPORT tariffs, split into
// volume brackets sorted by reference volume and an optional catch-all.
type TransportBrackets struct {
	brackets   []entity.Tariff
	catchAll   *entity.Tariff
	log        *zap.Logger
	onFallback func()
}

// NewTransportBrackets partitions active TRANSPORT tariffs. When several share
// a reference volume (or several catch-alls exist) the most recent one wins.
func NewTransportBrackets(tariffs []entity.Tariff) *TransportBrackets {
	sorted := make([]entity.Tariff, len(tariffs))
	copy(sorted, tariffs)
	SortByRecency(sorted)

	b := &TransportBrackets{log: zap.NewNop()}
	seen := make(map[int]bool)
	for i := range sorted {
		t := sorted[i]
		if !t.HasBracket() {
			if b.catchAll == nil {
				b.catchAll = &t
			}
			continue
		}
		if seen[*t.ReferenceVolume] {
			continue
		}
		seen[*t.ReferenceVolume] = true
		b.brackets = append(b.brackets, t)
	}
	sort.SliceStable(b.brackets, func(i, j int) bool {
		return *b.brackets[i].ReferenceVolume < *b.brackets[j].ReferenceVolume
	})
	return b
}

// Brackets returns the bracketed tariffs, ascending by reference volume
func (b *TransportBrackets) Brackets() []entity.Tariff {
	return b.brackets
}

// Price picks the transport price for a tank of the given volume. Bracket i
// covers [previous reference + 1, own reference], the first starting at 1.
// Volumes above every bracket take the largest one. Otherwise the catch-all
// applies, and without one the caller's default price is used.
func (b *TransportBrackets) Price(volume, defaultPrice decimal.Decimal) TransportPrice {
	lower := decimal.NewFromInt(1)
	for i := range b.brackets {
		t := &b.brackets[i]
		upper := decimal.NewFromInt(int64(*t.ReferenceVolume))
		if volume.GreaterThanOrEqual(lower) && volume.LessThanOrEqual(upper) {
			return tariffPrice(t, TransportSourceBracket)
		}
		lower = upper.Add(decimal.NewFromInt(1))
	}

	if n := len(b.brackets); n > 0 {
		top := &b.brackets[n-1]
		if volume.GreaterThan(decimal.NewFromInt(int64(*top.ReferenceVolume))) {
			return tariffPrice(top, TransportSourceCeiling)
		}
	}

	if b.catchAll != nil {
		return tariffPrice(b.catchAll, TransportSourceCatchAll)
	}

	b.log.Warn("no transport tariff matches volume, using default price",
		zap.String("volume", volume.String()),
		zap.String("default_price", defaultPrice.String()),
		zap.Int("brackets", len(b.brackets)),
	)
	if b.onFallback != nil {
		b.onFallback()
	}
	return TransportPrice{
		UnitPrice: RoundPrice(defaultPrice),
		Source:    TransportSourceDefault,
	}
}

func tariffPrice(t *entity.Tariff, source TransportSource) TransportPrice {
	id := t.ID
	return TransportPrice{
		UnitPrice: RoundPrice(t.UnitPriceExclTax),
		TariffID:  &id,
		Source:    source,
	}
}
