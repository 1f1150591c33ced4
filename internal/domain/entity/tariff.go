package entity

import (
	"time"

	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Tariff is a priced offering for one service type, valid over a time window.
// TRANSPORT tariffs may carry a reference volume: the upper bound (m³) of the
// bracket they price.
type Tariff struct {
	ID               uint             `gorm:"column:TarifID;primaryKey;autoIncrement" json:"id"`
	ServiceType      enum.ServiceType `gorm:"column:TypePrestation;size:20;not null;index" json:"service_type"`
	UnitPriceExclTax decimal.Decimal  `gorm:"column:PrixHT;type:decimal(17,2);not null" json:"unit_price_ht"`
	TaxRate          decimal.Decimal  `gorm:"column:TauxTVA;type:decimal(7,6);not null" json:"tax_rate"`
	ReferenceVolume  *int             `gorm:"column:VolumeReference" json:"reference_volume,omitempty"`
	ValidFrom        time.Time        `gorm:"column:DateDebut;not null;index" json:"valid_from"`
	ValidUntil       *time.Time       `gorm:"column:DateFin;index" json:"valid_until,omitempty"`
	Description      *string          `gorm:"column:Description;size:255" json:"description,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TableName returns the table name for the Tariff model
func (Tariff) TableName() string {
	return "Tarifs_Historique"
}

// IsActiveAt reports whether the tariff is still in force at the given
// instant: no end date, or an end date strictly after it.
func (t *Tariff) IsActiveAt(at time.Time) bool {
	return t.ValidUntil == nil || t.ValidUntil.After(at)
}

// HasBracket reports whether the tariff is a bracketed TRANSPORT tariff
func (t *Tariff) HasBracket() bool {
	return t.ReferenceVolume != nil
}
