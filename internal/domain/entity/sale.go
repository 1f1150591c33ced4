package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/devis-eau-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Sale (vente) is the commercial record a devis is attached to
type Sale struct {
	ID        uint            `gorm:"column:VenteID;primaryKey;autoIncrement" json:"id"`
	ClientID  uint            `gorm:"column:ClientID;not null;index" json:"client_id"`
	UserID    uuid.UUID       `gorm:"column:UtilisateurID;size:36;index" json:"user_id"`
	Type      enum.SaleType   `gorm:"column:TypeVente;size:10;not null" json:"type"`
	Date      time.Time       `gorm:"column:DateVente;not null" json:"date"`
	AmountTTC decimal.Decimal `gorm:"column:MontantTTC;type:decimal(28,8)" json:"amount_ttc"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "Ventes"
}
