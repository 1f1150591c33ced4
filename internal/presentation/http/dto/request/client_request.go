package request

// CreateClientRequest represents a client creation request
type CreateClientRequest struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Email   *string `json:"email" binding:"omitempty,email"`
	TaxID   *string `json:"tax_id" binding:"omitempty,max=50"`
}

// UpdateClientRequest represents a client update request. Omitted fields
// are left unchanged.
type UpdateClientRequest struct {
	Name    string  `json:"name" binding:"omitempty,max=255"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Email   *string `json:"email" binding:"omitempty,email"`
	TaxID   *string `json:"tax_id" binding:"omitempty,max=50"`
}
