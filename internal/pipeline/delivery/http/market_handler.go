package http

import (
	"net/http"
	"strconv"

	"golang-forex-pulse/internal/entity"
	"golang-forex-pulse/internal/pipeline/dto"
	"golang-forex-pulse/internal/pipeline/service"
	"golang-forex-pulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler handles read requests for scores, news and cycle history.
type MarketHandler struct {
	marketService service.MarketDataService
	logger        *logger.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketService service.MarketDataService, logger *logger.Logger) *MarketHandler {
	return &MarketHandler{marketService: marketService, logger: logger}
}

// RegisterRoutes registers the read routes to the Echo group.
func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/scores", h.ListScores)
	g.GET("/scores/:currency", h.GetScore)
	g.GET("/news", h.LatestNews)
	g.GET("/runs", h.RecentRuns)
}

// ListScores godoc
// @Summary List currency scores
// @Tags scores
// @Produce  json
// @Success 200 {array} entity.CurrencyScore
// @Failure 500 {object} dto.ErrorResponse
// @Router /scores [get]
func (h *MarketHandler) ListScores(c echo.Context) error {
	scores, err := h.marketService.ListScores(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to list scores", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get scores"})
	}
	return c.JSON(http.StatusOK, scores)
}

// GetScore godoc
// @Summary Get one currency score
// @Tags scores
// @Produce  json
// @Param   currency  path    string true    "Currency code, e.g. USD"
// @Success 200 {object} entity.CurrencyScore
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /scores/{currency} [get]
func (h *MarketHandler) GetScore(c echo.Context) error {
	score, err := h.marketService.GetScore(c.Request().Context(), c.Param("currency"))
	if err != nil {
		h.logger.Error("Failed to get score", logger.ErrorField(err), logger.StringField("currency", c.Param("currency")))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get score"})
	}
	if score == nil {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Currency not found"})
	}
	return c.JSON(http.StatusOK, score)
}

// LatestNews godoc
// @Summary Latest market news
// @Tags news
// @Produce  json
// @Param   limit   query  int    false "Maximum articles (default 50)"
// @Param   impact  query  string false "Impact filter" Enums(low, medium, high)
// @Success 200 {array} entity.MarketNews
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /news [get]
func (h *MarketHandler) LatestNews(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
	}

	var impact entity.ImpactLevel
	if raw := c.QueryParam("impact"); raw != "" {
		impact = entity.ParseImpact(raw)
		if string(impact) != raw {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid impact"})
		}
	}

	news, err := h.marketService.LatestNews(c.Request().Context(), limit, impact)
	if err != nil {
		h.logger.Error("Failed to get news", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get news"})
	}
	return c.JSON(http.StatusOK, news)
}

// RecentRuns godoc
// @Summary Recent cycle runs
// @Tags runs
// @Produce  json
// @Param   limit       query  int    false "Maximum runs (default 50)"
// @Param   cycle_type  query  string false "Cycle filter"
// @Success 200 {array} entity.CycleRun
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs [get]
func (h *MarketHandler) RecentRuns(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
	}

	var cycleType entity.CycleType
	if raw := c.QueryParam("cycle_type"); raw != "" {
		parsed, ok := entity.ParseCycleType(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid cycle_type"})
		}
		cycleType = parsed
	}

	runs, err := h.marketService.RecentRuns(c.Request().Context(), limit, cycleType)
	if err != nil {
		h.logger.Error("Failed to get cycle runs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get cycle runs"})
	}
	return c.JSON(http.StatusOK, runs)
}

func queryLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
