package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/devis-eau-api/internal/application/service"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/dto/request"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/dto/response"
	"github.com/sangkips/devis-eau-api/pkg/apperror"
)

// QuoteHandler handles devis HTTP requests
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Preview prices a quote without storing it
// @Summary Preview Quote
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.PriceQuoteRequest true "Dossier and tank lines"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /quotes/preview [post]
func (h *QuoteHandler) Preview(c *gin.Context) {
	var req request.PriceQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	input, ok := priceInput(c, &req)
	if !ok {
		return
	}

	priced, err := h.quoteService.PreviewQuote(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote priced successfully",
		response.NewQuotePreviewResponse(priced.DossierType, priced.Date, priced.Water, priced.Totals))
}

// List handles listing quotes
// @Summary List Quotes
// @Tags quotes
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Quote number or notes"
// @Param status query string false "EN ATTENTE, ACCEPTE or REFUSE"
// @Param client_id query int false "Client filter"
// @Param dossier_type query string false "Dossier type filter"
// @Success 200 {object} response.APIResponse
// @Router /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	result, err := h.quoteService.ListQuotes(c.Request.Context(), &service.ListQuotesInput{
		Pagination:  paginationFromQuery(c),
		Search:      c.Query("search"),
		Status:      c.Query("status"),
		ClientID:    c.Query("client_id"),
		DossierType: c.Query("dossier_type"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Quotes retrieved successfully", result)
}

// Get handles getting a single quote
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid quote ID")
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote retrieved successfully", quote)
}

// Create handles creating a quote
// @Summary Create Quote
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.QuoteRequest true "Quote data"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	priced, ok := priceInput(c, &req.PriceQuoteRequest)
	if !ok {
		return
	}

	input := &service.CreateQuoteInput{
		UserID:          *userID,
		ClientID:        req.ClientID,
		Notes:           req.Notes,
		PriceQuoteInput: *priced,
	}
	if req.Status != nil {
		input.Status = *req.Status
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote created successfully", quote)
}

// Update handles re-pricing a quote
func (h *QuoteHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid quote ID")
		return
	}

	var req request.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	priced, ok := priceInput(c, &req.PriceQuoteRequest)
	if !ok {
		return
	}

	quote, err := h.quoteService.UpdateQuote(c.Request.Context(), &service.UpdateQuoteInput{
		ID:              id,
		ClientID:        req.ClientID,
		Status:          req.Status,
		Notes:           req.Notes,
		PriceQuoteInput: *priced,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote updated successfully", quote)
}

// UpdateStatus changes a quote's status
func (h *QuoteHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid quote ID")
		return
	}

	var req request.QuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quote, err := h.quoteService.UpdateQuoteStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote status updated successfully", quote)
}

// Delete removes a quote with its lines and sale
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid quote ID")
		return
	}

	if err := h.quoteService.DeleteQuote(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func priceInput(c *gin.Context, req *request.PriceQuoteRequest) (*service.PriceQuoteInput, bool) {
	date, err := parseDate(req.Date)
	if err != nil {
		response.ValidationError(c, []apperror.FieldError{{Field: "date", Message: "must be YYYY-MM-DD"}})
		return nil, false
	}

	lines := make([]service.QuoteLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.QuoteLineInput{
			TankCount:        l.TankCount,
			VolumePerTank:    l.VolumePerTank,
			IncludeTransport: l.IncludeTransport,
		}
	}
	return &service.PriceQuoteInput{
		DossierType:      req.DossierType,
		Date:             date,
		Lines:            lines,
		TransportPrice:   req.TransportPrice,
		TransportTaxRate: req.TransportTaxRate,
	}, true
}
