package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/devis-eau-api/internal/application/service"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/dto/request"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/dto/response"
	"github.com/sangkips/devis-eau-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// TariffHandler handles tariff catalog HTTP requests
type TariffHandler struct {
	tariffService *service.TariffService
}

// NewTariffHandler creates a new tariff handler
func NewTariffHandler(tariffService *service.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

// List handles listing tariffs
// @Summary List Tariffs
// @Tags tariffs
// @Security BearerAuth
// @Produce json
// @Param service_type query string false "CITERNAGE, TRANSPORT, VOL or ESSAI"
// @Param active_only query bool false "Only tariffs active now"
// @Success 200 {object} response.APIResponse
// @Router /tariffs [get]
func (h *TariffHandler) List(c *gin.Context) {
	result, err := h.tariffService.ListTariffs(c.Request.Context(), &service.ListTariffsInput{
		Pagination:  paginationFromQuery(c),
		ServiceType: c.Query("service_type"),
		ActiveOnly:  queryBool(c, "active_only"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Tariffs retrieved successfully", result)
}

// Get handles getting a single tariff
func (h *TariffHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid tariff ID")
		return
	}

	tariff, err := h.tariffService.GetTariff(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tariff retrieved successfully", tariff)
}

// Create handles adding a tariff
// @Summary Create Tariff
// @Description Add a tariff; 409 when an active tariff already covers the service type
// @Tags tariffs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.TariffRequest true "Tariff data"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /tariffs [post]
func (h *TariffHandler) Create(c *gin.Context) {
	input, ok := bindTariff(c)
	if !ok {
		return
	}

	tariff, err := h.tariffService.CreateTariff(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Tariff created successfully", tariff)
}

// Update handles editing a tariff
func (h *TariffHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid tariff ID")
		return
	}
	input, ok := bindTariff(c)
	if !ok {
		return
	}

	tariff, err := h.tariffService.UpdateTariff(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tariff updated successfully", tariff)
}

// Close ends a tariff's validity now
func (h *TariffHandler) Close(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid tariff ID")
		return
	}

	tariff, err := h.tariffService.CloseTariff(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tariff closed successfully", tariff)
}

// Delete removes a tariff
func (h *TariffHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid tariff ID")
		return
	}

	if err := h.tariffService.DeleteTariff(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Resolve returns the price a dossier type is quoted at
// @Summary Resolve Tariff
// @Tags tariffs
// @Security BearerAuth
// @Produce json
// @Param dossier_type query string true "CITERNAGE, PROCES_VOL or ESSAI_RESEAU"
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /tariffs/resolve [get]
func (h *TariffHandler) Resolve(c *gin.Context) {
	date, err := parseDate(c.Query("date"))
	if err != nil {
		response.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	tariff, err := h.tariffService.ResolveTariff(c.Request.Context(), c.Query("dossier_type"), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tariff resolved successfully", response.NewServiceTariffResponse(tariff))
}

// Transport returns the per-tank transport price for a volume
func (h *TariffHandler) Transport(c *gin.Context) {
	volume, err := decimal.NewFromString(c.Query("volume"))
	if err != nil {
		response.BadRequest(c, "Invalid volume")
		return
	}
	defaultPrice := decimal.Zero
	if raw := c.Query("default_price"); raw != "" {
		if defaultPrice, err = decimal.NewFromString(raw); err != nil {
			response.BadRequest(c, "Invalid default price")
			return
		}
	}

	price, err := h.tariffService.ResolveTransport(c.Request.Context(), volume, defaultPrice)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transport price resolved successfully", response.NewTransportPriceResponse(volume, price))
}

func bindTariff(c *gin.Context) (*service.TariffInput, bool) {
	var req request.TariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return nil, false
	}

	var fieldErrors []apperror.FieldError
	validFrom, err := parseDate(req.ValidFrom)
	if err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "valid_from", Message: "must be YYYY-MM-DD"})
	}
	validUntil, err := parseDate(req.ValidUntil)
	if err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "valid_until", Message: "must be YYYY-MM-DD"})
	}
	if len(fieldErrors) > 0 {
		response.ValidationError(c, fieldErrors)
		return nil, false
	}

	return &service.TariffInput{
		ServiceType:      req.ServiceType,
		UnitPriceExclTax: *req.UnitPriceExclTax,
		TaxRate:          *req.TaxRate,
		ReferenceVolume:  req.ReferenceVolume,
		ValidFrom:        validFrom,
		ValidUntil:       validUntil,
		Description:      req.Description,
	}, true
}
