package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/shahamitr/parichay-sub004/docs"
	"github.com/shahamitr/parichay-sub004/internal/dto"
	"github.com/shahamitr/parichay-sub004/internal/service"
)

type Handler struct {
	eventService     service.EventServicer
	analyticsService service.AnalyticsServicer
	router           *gin.Engine
	log              *zap.Logger
}

func NewHandler(eventService service.EventServicer, analyticsService service.AnalyticsServicer, log *zap.Logger) *Handler {
	h := &Handler{
		eventService:     eventService,
		analyticsService: analyticsService,
		router:           gin.Default(),
		log:              log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/events", h.trackEvent)
	h.router.POST("/events/bulk", h.trackEventsBulk)
	h.router.GET("/brands/:brand_id/summary", h.getSummary)
	h.router.GET("/brands/:brand_id/realtime", h.getRealtime)
	h.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// trackEvent handles POST /events
// @Summary Track a single event
// @Description Track a visitor interaction with a branch microsite
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.TrackEventRequest true "Event data"
// @Success 202 {object} dto.TrackEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [post]
func (h *Handler) trackEvent(c *gin.Context) {
	var req dto.TrackEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid event request",
			zap.Error(err),
			zap.String("event_type", req.EventType))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventID, sessionID, err := h.eventService.ProcessEvent(&req)
	if err != nil {
		h.log.Error("Failed to process event",
			zap.Error(err),
			zap.String("event_type", req.EventType),
			zap.String("brand_id", req.BrandID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, dto.TrackEventResponse{
		EventID:   eventID,
		SessionID: sessionID,
		Status:    "accepted",
	})
}

// trackEventsBulk handles POST /events/bulk
// @Summary Track multiple events
// @Description Track multiple visitor interactions in bulk
// @Tags events
// @Accept json
// @Produce json
// @Param events body dto.TrackEventsBulkRequest true "Bulk events data"
// @Success 202 {object} dto.TrackBulkEventsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events/bulk [post]
func (h *Handler) trackEventsBulk(c *gin.Context) {
	var bulkRequest dto.TrackEventsBulkRequest

	if err := c.ShouldBindJSON(&bulkRequest); err != nil {
		h.log.Warn("Invalid bulk event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	eventIDs, errors, err := h.eventService.ProcessBulkEvents(bulkRequest.Events)
	if err != nil {
		h.log.Error("Failed to process bulk events",
			zap.Error(err),
			zap.Int("event_count", len(bulkRequest.Events)))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, dto.TrackBulkEventsResponse{
		Accepted: len(eventIDs),
		Rejected: len(errors),
		EventIDs: eventIDs,
		Errors:   errors,
	})
}

// getSummary handles GET /brands/:brand_id/summary
// @Summary Get analytics summary
// @Description Compute the analytics summary for a brand, optionally scoped to a branch and date range
// @Tags analytics
// @Produce json
// @Param brand_id path string true "Brand ID"
// @Param branch_id query string false "Branch ID"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date, inclusive (YYYY-MM-DD)"
// @Success 200 {object} analytics.Summary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /brands/{brand_id}/summary [get]
func (h *Handler) getSummary(c *gin.Context) {
	brandID := c.Param("brand_id")

	var req dto.GetSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid summary request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	summary, err := h.analyticsService.GetSummary(c.Request.Context(), brandID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
			})
			return
		}
		h.log.Error("Failed to compute summary",
			zap.Error(err),
			zap.String("brand_id", brandID),
			zap.String("branch_id", req.BranchID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// getRealtime handles GET /brands/:brand_id/realtime
// @Summary Get realtime snapshot
// @Description Active visitors and recent events over the last 30 minutes
// @Tags analytics
// @Produce json
// @Param brand_id path string true "Brand ID"
// @Param branch_id query string false "Branch ID"
// @Success 200 {object} analytics.RealtimeSnapshot
// @Failure 500 {object} dto.ErrorResponse
// @Router /brands/{brand_id}/realtime [get]
func (h *Handler) getRealtime(c *gin.Context) {
	brandID := c.Param("brand_id")

	var req dto.GetRealtimeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	snapshot, err := h.analyticsService.GetRealtime(c.Request.Context(), brandID, req.BranchID)
	if err != nil {
		h.log.Error("Failed to compute realtime snapshot",
			zap.Error(err),
			zap.String("brand_id", brandID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
