package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/devis-eau-api/internal/application/service"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/dto/request"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/dto/response"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles listing clients
// @Summary List Clients
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Success 200 {object} response.APIResponse
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	result, err := h.clientService.ListClients(c.Request.Context(), paginationFromQuery(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Clients retrieved successfully", result)
}

// Get handles getting a single client
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

// Create handles creating a client
func (h *ClientHandler) Create(c *gin.Context) {
	var req request.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &service.ClientInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		TaxID:   req.TaxID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// Update handles updating a client
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	var req request.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), id, &service.ClientInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		TaxID:   req.TaxID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client updated successfully", client)
}

// Delete handles deleting a client. Clients with quotes are kept.
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
