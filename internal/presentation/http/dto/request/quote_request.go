package request

import "github.com/shopspring/decimal"

// QuoteLineRequest is one tank row of a quote
type QuoteLineRequest struct {
	TankCount        int             `json:"tank_count"`
	VolumePerTank    decimal.Decimal `json:"volume_per_tank"`
	IncludeTransport bool            `json:"include_transport"`
}

// PriceQuoteRequest carries what pricing a quote needs
type PriceQuoteRequest struct {
	DossierType      string             `json:"dossier_type" binding:"required"`
	Date             string             `json:"date"`
	Lines            []QuoteLineRequest `json:"lines"`
	TransportPrice   *decimal.Decimal   `json:"transport_price"`
	TransportTaxRate *decimal.Decimal   `json:"transport_tax_rate"`
}

// QuoteRequest represents a quote creation or update request
type QuoteRequest struct {
	ClientID uint    `json:"client_id" binding:"required"`
	Status   *string `json:"status"`
	Notes    *string `json:"notes" binding:"omitempty,max=1000"`
	PriceQuoteRequest
}

// QuoteStatusRequest represents a quote status change
type QuoteStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
