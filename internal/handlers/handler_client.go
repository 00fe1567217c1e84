package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/taxdesk/vat_recon_app/internal/core/ports/services"
	"github.com/taxdesk/vat_recon_app/internal/dto"
	"github.com/taxdesk/vat_recon_app/internal/middleware"
)

// clientHandler handles HTTP requests against the client registry. The
// registry is read-only here; client lifecycle belongs to the console
// backend.
type clientHandler struct {
	clientService portssvc.ClientSvcFacade
}

func newClientHandler(cs portssvc.ClientSvcFacade) *clientHandler {
	return &clientHandler{clientService: cs}
}

// registerClientRoutes registers routes related to registry clients.
func registerClientRoutes(rg *gin.RouterGroup, clientService portssvc.ClientSvcFacade) {
	h := newClientHandler(clientService)

	clients := rg.Group("/clients")
	{
		clients.GET("", h.listClients)
		clients.GET("/:clientID", h.getClient)
	}
}

// listClients godoc
// @Summary List active clients
// @Tags clients
// @Produce  json
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   offset query int false "Page offset"
// @Success 200 {object} dto.ListClientsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /clients [get]
func (h *clientHandler) listClients(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListClientsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListClients", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	clients, err := h.clientService.ListClients(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list clients", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list clients"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListClientsResponse(clients))
}

// getClient godoc
// @Summary Get a client by ID
// @Tags clients
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Success 200 {object} dto.ClientResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Client not found"
// @Security BearerAuth
// @Router /clients/{clientID} [get]
func (h *clientHandler) getClient(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")

	client, err := h.clientService.GetClientByID(c.Request.Context(), clientID)
	if err != nil {
		respondPeriodError(c, logger.With(slog.String("client_id", clientID)), err, "Failed to retrieve client")
		return
	}

	c.JSON(http.StatusOK, dto.ToClientResponse(client))
}
