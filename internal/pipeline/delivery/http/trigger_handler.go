package http

import (
	"net/http"
	"time"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/internal/pipeline/service"
	"golang-forex-pulse/pkg/logger"
	"golang-forex-pulse/pkg/utils"

	"github.com/labstack/echo/v4"
)

// TriggerHandler exposes the pipeline cycles to external schedulers.
type TriggerHandler struct {
	orchestrator service.OrchestratorService
	apiKey       string
	cycleTimeout time.Duration
	logger       *logger.Logger
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(orchestrator service.OrchestratorService, apiKey string, cycleTimeout time.Duration, logger *logger.Logger) *TriggerHandler {
	return &TriggerHandler{
		orchestrator: orchestrator,
		apiKey:       apiKey,
		cycleTimeout: cycleTimeout,
		logger:       logger,
	}
}

// RegisterRoutes registers the trigger routes to the Echo group.
func (h *TriggerHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)

	auth := TriggerAuth(h.apiKey, h.logger)
	g.POST("/:job", h.Trigger, auth)
	g.GET("/:job", h.Trigger, auth)
}

// Trigger godoc
// @Summary Run a pipeline cycle
// @Description Runs one cycle synchronously and returns its summary
// @Tags cron
// @Produce  json
// @Param   job  path   string true  "Cycle name" Enums(calendar-update, calendar-high-impact, news-update, score-recompute)
// @Param   X-API-Key header string false "Trigger key"
// @Param   api_key   query  string false "Trigger key"
// @Success 200 {object} dto.TriggerResponse
// @Failure 400 {object} dto.TriggerResponse
// @Failure 401 {object} dto.TriggerResponse
// @Failure 500 {object} dto.TriggerResponse
// @Router /cron/{job} [post]
func (h *TriggerHandler) Trigger(c echo.Context) error {
	job := c.Param("job")
	cycleType, ok := entity.ParseCycleType(job)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.TriggerResponse{
			Success:       false,
			Job:           job,
			Error:         "unknown job: " + job,
			AvailableJobs: h.availableJobs(),
			Timestamp:     utils.FormatISOTimestamp(utils.TimeNowUTC()),
		})
	}

	report, err := service.RunWithTimeout(c.Request().Context(), h.orchestrator, cycleType, entity.TriggerHTTP, h.cycleTimeout)
	if err != nil {
		h.logger.Error("Triggered cycle failed", logger.StringField("job", job), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.TriggerResponse{
			Success:   false,
			Job:       job,
			Error:     err.Error(),
			Timestamp: utils.FormatISOTimestamp(utils.TimeNowUTC()),
		})
	}

	return c.JSON(http.StatusOK, dto.TriggerResponse{
		Success:            true,
		Job:                job,
		RunID:              report.RunID,
		Message:            report.Message,
		Result:             report.Result,
		HighImpactDetected: report.HighImpactDetected,
		Timestamp:          utils.FormatISOTimestamp(report.CompletedAt),
	})
}

// Health godoc
// @Summary Trigger endpoint health
// @Tags cron
// @Produce  json
// @Success 200 {object} dto.TriggerResponse
// @Router /cron/health [get]
func (h *TriggerHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.TriggerResponse{
		Success:       true,
		Message:       "Cron system healthy",
		AvailableJobs: h.availableJobs(),
		Timestamp:     utils.FormatISOTimestamp(utils.TimeNowUTC()),
	})
}

func (h *TriggerHandler) availableJobs() []string {
	types := h.orchestrator.CycleTypes()
	jobs := make([]string, len(types))
	for i, t := range types {
		jobs[i] = string(t)
	}
	return jobs
}
