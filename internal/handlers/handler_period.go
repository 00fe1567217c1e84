package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taxdesk/vat_recon_app/internal/apperrors"
	"github.com/taxdesk/vat_recon_app/internal/core/domain"
	portssvc "github.com/taxdesk/vat_recon_app/internal/core/ports/services"
	"github.com/taxdesk/vat_recon_app/internal/dto"
	"github.com/taxdesk/vat_recon_app/internal/middleware"
)

// periodHandler handles HTTP requests related to VAT period results.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
	clientService portssvc.ClientSvcFacade
}

// newPeriodHandler creates a new periodHandler.
func newPeriodHandler(ps portssvc.PeriodSvcFacade, cs portssvc.ClientSvcFacade) *periodHandler {
	return &periodHandler{
		periodService: ps,
		clientService: cs,
	}
}

// registerPeriodRoutes registers routes related to VAT period results.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade, clientService portssvc.ClientSvcFacade) {
	h := newPeriodHandler(periodService, clientService)

	clientPeriods := rg.Group("/clients/:clientID/vat-periods")
	{
		clientPeriods.POST("/calculate", h.calculatePeriod)
		clientPeriods.GET("", h.listPeriodResults)
	}

	periods := rg.Group("/vat-periods")
	{
		periods.GET("/:periodResultID", h.getPeriodResult)
		periods.PUT("/:periodResultID/credit", h.setCredit)
		periods.POST("/:periodResultID/lock", h.lockPeriod)
		periods.POST("/:periodResultID/unlock", h.unlockPeriod)
	}
}

// respondPeriodError translates service errors into HTTP responses. The
// fallback message is returned on unexpected errors so internals never leak.
func respondPeriodError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrLocked),
		errors.Is(err, apperrors.ErrAlreadyLocked),
		errors.Is(err, apperrors.ErrLaterPeriodLocked):
		logger.Warn("Lock state conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAggregatorUnavailable):
		logger.Warn("VAT aggregator unavailable", slog.String("error", err.Error()))
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "VAT aggregator unavailable, try again later"})
	default:
		logger.Error("Unexpected service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// enrich attaches registry data to a period response. Lookup failures are
// logged and ignored so the period payload still goes out.
func (h *periodHandler) enrich(c *gin.Context, result *domain.VATPeriodResult) dto.PeriodResultResponse {
	client, err := h.clientService.GetClientByID(c.Request.Context(), result.ClientID)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to enrich period response with client data",
			slog.String("client_id", result.ClientID), slog.String("error", err.Error()))
		client = nil
	}
	return dto.ToPeriodResultResponse(result, client)
}

// calculatePeriod godoc
// @Summary Calculate a VAT period
// @Description Loads or creates the period result for the client and period, optionally refreshes totals from the VAT aggregator, and recomputes the net position
// @Tags vat-periods
// @Accept  json
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   period body dto.CalculatePeriodRequest true "Period to calculate"
// @Success 200 {object} dto.PeriodResultResponse "Existing period recalculated"
// @Success 201 {object} dto.PeriodResultResponse "Period created"
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Client not found"
// @Failure 409 {object} map[string]string "Period is locked"
// @Failure 503 {object} map[string]string "VAT aggregator unavailable"
// @Security BearerAuth
// @Router /clients/{clientID}/vat-periods/calculate [post]
func (h *periodHandler) calculatePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")

	var req dto.CalculatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CalculatePeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	key := domain.PeriodKey{
		ClientID:   clientID,
		PeriodType: domain.PeriodType(req.PeriodType),
		Year:       req.Year,
		Period:     req.Period,
	}

	logger = logger.With(slog.String("period_key", key.String()))
	logger.Info("Received request to calculate period", slog.Bool("recalculate", req.Recalculate))

	result, err := h.periodService.Calculate(c.Request.Context(), key, req.Recalculate, userID)
	if err != nil {
		respondPeriodError(c, logger, err, "Failed to calculate period")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	logger.Info("Period calculated", slog.String("period_result_id", result.PeriodResultID), slog.Bool("created", result.Created))
	c.JSON(status, h.enrich(c, result))
}

// listPeriodResults godoc
// @Summary List a client's VAT period results
// @Description Retrieves a client's period results ordered by start date, optionally restricted to a year
// @Tags vat-periods
// @Produce  json
// @Param   clientID path string true "Client ID"
// @Param   year query int false "Restrict to a fiscal year"
// @Success 200 {object} dto.ListPeriodResultsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Client not found"
// @Security BearerAuth
// @Router /clients/{clientID}/vat-periods [get]
func (h *periodHandler) listPeriodResults(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	clientID := c.Param("clientID")

	var params dto.ListPeriodResultsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListPeriodResults", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("client_id", clientID))

	client, err := h.clientService.GetClientByID(c.Request.Context(), clientID)
	if err != nil {
		respondPeriodError(c, logger, err, "Failed to list period results")
		return
	}

	results, err := h.periodService.ListPeriodResults(c.Request.Context(), clientID, params.Year)
	if err != nil {
		respondPeriodError(c, logger, err, "Failed to list period results")
		return
	}

	c.JSON(http.StatusOK, dto.ToListPeriodResultsResponse(results, client))
}

// getPeriodResult godoc
// @Summary Get a VAT period result by ID
// @Tags vat-periods
// @Produce  json
// @Param   periodResultID path string true "Period result ID"
// @Success 200 {object} dto.PeriodResultResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period result not found"
// @Security BearerAuth
// @Router /vat-periods/{periodResultID} [get]
func (h *periodHandler) getPeriodResult(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	periodResultID := c.Param("periodResultID")

	result, err := h.periodService.GetPeriodResult(c.Request.Context(), periodResultID)
	if err != nil {
		respondPeriodError(c, logger.With(slog.String("period_result_id", periodResultID)), err, "Failed to retrieve period result")
		return
	}

	c.JSON(http.StatusOK, h.enrich(c, result))
}

// setCredit godoc
// @Summary Manually override the carried-forward credit
// @Description Sets previous_credit by hand and recomputes the period. Refused once a prior locked period exists unless force is set
// @Tags vat-periods
// @Accept  json
// @Produce  json
// @Param   periodResultID path string true "Period result ID"
// @Param   credit body dto.SetCreditRequest true "Credit override"
// @Success 200 {object} dto.PeriodResultResponse
// @Failure 400 {object} map[string]string "Negative credit or override refused"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period result not found"
// @Failure 409 {object} map[string]string "Period is locked"
// @Security BearerAuth
// @Router /vat-periods/{periodResultID}/credit [put]
func (h *periodHandler) setCredit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	periodResultID := c.Param("periodResultID")

	var req dto.SetCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetCredit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("period_result_id", periodResultID))
	logger.Info("Received request to override credit", slog.String("previous_credit", req.PreviousCredit.String()), slog.Bool("force", req.Force))

	result, err := h.periodService.SetCredit(c.Request.Context(), periodResultID, req.PreviousCredit, req.Force, userID)
	if err != nil {
		respondPeriodError(c, logger, err, "Failed to set credit")
		return
	}

	logger.Info("Credit overridden", slog.String("final_result", result.FinalResult.String()))
	c.JSON(http.StatusOK, h.enrich(c, result))
}

// lockPeriod godoc
// @Summary Lock a VAT period result
// @Description Freezes the period against further mutation so its credit can be carried forward
// @Tags vat-periods
// @Produce  json
// @Param   periodResultID path string true "Period result ID"
// @Success 200 {object} dto.PeriodResultResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period result not found"
// @Failure 409 {object} map[string]string "Period is already locked"
// @Security BearerAuth
// @Router /vat-periods/{periodResultID}/lock [post]
func (h *periodHandler) lockPeriod(c *gin.Context) {
	h.transition(c, "lock", h.periodService.Lock)
}

// unlockPeriod godoc
// @Summary Unlock a VAT period result
// @Description Thaws the period. Refused while a later locked period exists for the same client
// @Tags vat-periods
// @Produce  json
// @Param   periodResultID path string true "Period result ID"
// @Success 200 {object} dto.PeriodResultResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period result not found"
// @Failure 409 {object} map[string]string "A later period is locked"
// @Security BearerAuth
// @Router /vat-periods/{periodResultID}/unlock [post]
func (h *periodHandler) unlockPeriod(c *gin.Context) {
	h.transition(c, "unlock", h.periodService.Unlock)
}

// transition runs a lock-state change. Lock and unlock share everything but
// the service call.
func (h *periodHandler) transition(c *gin.Context, action string, fn func(ctx context.Context, periodResultID string, userID string) (*domain.VATPeriodResult, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	periodResultID := c.Param("periodResultID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("period_result_id", periodResultID), slog.String("action", action))
	logger.Info("Received lock state change request")

	result, err := fn(c.Request.Context(), periodResultID, userID)
	if err != nil {
		respondPeriodError(c, logger, err, "Failed to "+action+" period")
		return
	}

	logger.Info("Lock state changed", slog.Bool("is_locked", result.IsLocked))
	c.JSON(http.StatusOK, h.enrich(c, result))
}
