package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// QuoteTotals is the monetary breakdown of a devis. It is always derived from
// the lines and their prices; the stored copy is only a snapshot.
type QuoteTotals struct {
	VolumeTotal       decimal.Decimal `gorm:"column:VolumeTotal;type:decimal(18,3)" json:"volume_total"`
	TotalEauHT        decimal.Decimal `gorm:"column:TotalEauHT;type:decimal(28,8)" json:"total_eau_ht"`
	TotalEauTVA       decimal.Decimal `gorm:"column:TotalEauTVA;type:decimal(28,8)" json:"total_eau_tva"`
	TotalEauTTC       decimal.Decimal `gorm:"column:TotalEauTTC;type:decimal(28,8)" json:"total_eau_ttc"`
	TotalTransportHT  decimal.Decimal `gorm:"column:TotalTransportHT;type:decimal(28,8)" json:"total_transport_ht"`
	TotalTransportTVA decimal.Decimal `gorm:"column:TotalTransportTVA;type:decimal(28,8)" json:"total_transport_tva"`
	TotalTransportTTC decimal.Decimal `gorm:"column:TotalTransportTTC;type:decimal(28,8)" json:"total_transport_ttc"`
	TotalHT           decimal.Decimal `gorm:"column:TotalHT;type:decimal(28,8)" json:"total_ht"`
	TotalTVA          decimal.Decimal `gorm:"column:TotalTVA;type:decimal(28,8)" json:"total_tva"`
	TotalTTC          decimal.Decimal `gorm:"column:TotalTTC;type:decimal(28,8)" json:"total_ttc"`
}

// Quote (devis) is a priced proposal made to a client before the sale is confirmed
type Quote struct {
	ID          uint             `gorm:"column:DevisID;primaryKey;autoIncrement" json:"id"`
	Reference   string           `gorm:"column:NumeroDevis;size:30;index" json:"reference"`
	ClientID    uint             `gorm:"column:ClientID;not null;index" json:"client_id"`
	SaleID      uint             `gorm:"column:VenteID;index" json:"sale_id"`
	UserID      uuid.UUID        `gorm:"column:UtilisateurID;size:36;index" json:"user_id"`
	DossierType enum.DossierType `gorm:"column:TypeDossier;size:20;not null;index" json:"dossier_type"`
	Date        time.Time        `gorm:"column:DateDevis;not null" json:"date"`
	Status      enum.QuoteStatus `gorm:"column:Statut;size:20;not null;default:'EN ATTENTE'" json:"status"`
	Notes       *string          `gorm:"column:Observations;size:1000" json:"notes,omitempty"`
	QuoteTotals `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Client *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Sale   *Sale       `gorm:"foreignKey:SaleID" json:"-"`
	Lines  []QuoteLine `gorm:"foreignKey:QuoteID" json:"lines"`
}

// TableName returns the table name for the Quote model
func (Quote) TableName() string {
	return "Devis"
}

// QuoteLine is one tank row of a devis, with the prices it was computed
// with frozen alongside the quantities.
type QuoteLine struct {
	ID                 uint            `gorm:"column:LigneID;primaryKey;autoIncrement" json:"id"`
	QuoteID            uint            `gorm:"column:DevisID;not null;index" json:"quote_id"`
	SaleID             uint            `gorm:"column:VenteID;index" json:"sale_id"`
	TankCount          int             `gorm:"column:NombreCiternes;not null" json:"tank_count"`
	VolumePerTank      decimal.Decimal `gorm:"column:VolumeParCiterne;type:decimal(10,3);not null" json:"volume_per_tank"`
	IncludeTransport   bool            `gorm:"column:AvecTransport;not null;default:false" json:"include_transport"`
	UnitPriceM3        decimal.Decimal `gorm:"column:PrixUnitaireM3_HT;type:decimal(17,2);not null" json:"unit_price_m3_ht"`
	WaterTaxRate       decimal.Decimal `gorm:"column:TauxTVA_Eau;type:decimal(7,6);not null" json:"water_tax_rate"`
	TransportUnitPrice decimal.Decimal `gorm:"column:PrixTransportUnitaire_HT;type:decimal(17,2)" json:"transport_unit_price_ht"`
	TransportTaxRate   decimal.Decimal `gorm:"column:TauxTVA_Transport;type:decimal(7,6)" json:"transport_tax_rate"`
	TransportTariffID  *uint           `gorm:"column:TarifTransportID" json:"transport_tariff_id,omitempty"`
	LineVolume         decimal.Decimal `gorm:"column:VolumeLigne;type:decimal(18,3)" json:"line_volume"`
	WaterHT            decimal.Decimal `gorm:"column:MontantEauHT;type:decimal(28,8)" json:"water_ht"`
	TransportHT        decimal.Decimal `gorm:"column:MontantTransportHT;type:decimal(28,8)" json:"transport_ht"`
	TransportTVA       decimal.Decimal `gorm:"column:MontantTransportTVA;type:decimal(28,8)" json:"transport_tva"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TableName returns the table name for the QuoteLine model
func (QuoteLine) TableName() string {
	return "LignesVentes"
}
