package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/entity"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
)

// Guard keeps at most one active tariff per service type, and per reference
// volume for TRANSPORT. It only reads.
type Guard struct {
	catalog TariffCatalog
	now     func() time.Time
}

// NewGuard creates a duplicate tariff guard. now defaults to time.Now.
func NewGuard(catalog TariffCatalog, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{catalog: catalog, now: now}
}

// FindConflict returns the active tariff the candidate would collide with,
// ignoring excludeID (the tariff being edited). A candidate that is itself
// no longer active cannot collide.
func (g *Guard) FindConflict(ctx context.Context, candidate TariffDraft, excludeID *uint) (*entity.Tariff, error) {
	now := g.now()
	if !candidate.IsActiveAt(now) {
		return nil, nil
	}

	tariffs, err := g.catalog.ListActive(ctx, candidate.ServiceType, now)
	if err != nil {
		return nil, fmt.Errorf("list %s tariffs: %w", candidate.ServiceType, err)
	}
	SortByRecency(tariffs)

	isTransport := candidate.ServiceType.Equal(enum.ServiceTypeTransport)
	for i := range tariffs {
		t := &tariffs[i]
		if excludeID != nil && t.ID == *excludeID {
			continue
		}
		if !t.IsActiveAt(now) || !t.ServiceType.Equal(candidate.ServiceType) {
			continue
		}
		if isTransport && !sameReferenceVolume(t.ReferenceVolume, candidate.ReferenceVolume) {
			continue
		}
		return t, nil
	}
	return nil, nil
}

// Check is FindConflict returning a *DuplicateTariffError on collision
func (g *Guard) Check(ctx context.Context, candidate TariffDraft, excludeID *uint) error {
	existing, err := g.FindConflict(ctx, candidate, excludeID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	return &DuplicateTariffError{
		ExistingID:      existing.ID,
		ServiceType:     existing.ServiceType,
		ReferenceVolume: existing.ReferenceVolume,
	}
}

func sameReferenceVolume(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
